package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	pricingdomain "github.com/fieldside/rightsdesk/internal/pricing/domain"
)

type pricingServiceStub struct {
	effective *pricingdomain.EffectivePricing
	row       *pricingdomain.EventPricing
	getErr    error
}

func (s *pricingServiceStub) Get(ctx context.Context, eventID string) (*pricingdomain.EventPricing, error) {
	return s.row, s.getErr
}

func (s *pricingServiceStub) List(ctx context.Context) ([]pricingdomain.EventPricing, error) {
	return nil, nil
}

func (s *pricingServiceStub) Effective(ctx context.Context, eventID string) (*pricingdomain.EffectivePricing, error) {
	return s.effective, nil
}

func (s *pricingServiceStub) SetOverride(ctx context.Context, req pricingdomain.SetOverrideRequest) (*pricingdomain.EventPricing, error) {
	return nil, nil
}

func (s *pricingServiceStub) RevertToComputed(ctx context.Context, eventID string) (*pricingdomain.EventPricing, error) {
	return nil, nil
}

func (s *pricingServiceStub) Recompute(ctx context.Context, eventID string) (*pricingdomain.EventPricing, error) {
	return nil, nil
}

func (s *pricingServiceStub) ListHistory(ctx context.Context, limit int) ([]pricingdomain.PricingHistoryEntry, error) {
	return nil, nil
}

func TestGetEffectivePricingWithoutStoredRow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	stub := &pricingServiceStub{
		effective: &pricingdomain.EffectivePricing{
			Tier:       pricetierdomain.TierBronze,
			PriceCents: 99,
		},
		getErr: pricingdomain.ErrNotFound,
	}
	s := &Server{pricingSvc: stub}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/pricing/123", nil)
	c.Params = gin.Params{{Key: "eventId", Value: "123"}}

	s.GetEffectivePricing(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Price   float64         `json:"price"`
			Pricing json.RawMessage `json:"pricing"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0.99, body.Data.Price)
	assert.Equal(t, "null", string(body.Data.Pricing))
}
