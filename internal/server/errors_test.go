package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldside/rightsdesk/internal/authorization"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	pricingdomain "github.com/fieldside/rightsdesk/internal/pricing/domain"
	rightsdomain "github.com/fieldside/rightsdesk/internal/rights/domain"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

func TestMapErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation territory", territorydomain.ErrUnknownTerritory, http.StatusBadRequest, "validation_error"},
		{"validation replay window", rightsdomain.ErrInvalidReplayWindow, http.StatusBadRequest, "validation_error"},
		{"validation price band", pricingdomain.ErrPriceOutOfBand, http.StatusBadRequest, "validation_error"},
		{"validation tier band", pricetierdomain.ErrInvalidBand, http.StatusBadRequest, "validation_error"},
		{"forbidden", authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"transition conflict", rightsdomain.ErrInvalidTransition, http.StatusConflict, "conflict"},
		{"broadcaster transition conflict", broadcasterdomain.ErrInvalidTransition, http.StatusConflict, "conflict"},
		{"not found", eventdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"pricing not found", pricingdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"rate limited", pricingdomain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"recompute in flight", pricingdomain.ErrRecomputeInFlight, http.StatusTooManyRequests, "rate_limited"},
		{"signal unavailable", pricingdomain.ErrSignalUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, payload.Type)
		})
	}
}

func TestMapErrorValidationPayload(t *testing.T) {
	status, payload := mapError(newValidationError("manualPrice", "price_out_of_band", "price outside tier band"))
	assert.Equal(t, http.StatusBadRequest, status)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "manualPrice", payload.Errors[0].Field)
		assert.Equal(t, "price_out_of_band", payload.Errors[0].Code)
	}
}

func TestMoneyConversion(t *testing.T) {
	assert.Equal(t, int64(199), dollarsToCents(1.99))
	assert.Equal(t, int64(100), dollarsToCents(0.999999))
	assert.Equal(t, 2.49, centsToDollars(249))
}
