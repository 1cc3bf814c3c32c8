package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
)

func (s *Server) ListPriceTiers(c *gin.Context) {
	resp, err := s.priceTierSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// upsertPriceTierRequest takes band prices in decimal dollars.
type upsertPriceTierRequest struct {
	MinPrice  float64 `json:"minPrice"`
	BasePrice float64 `json:"basePrice"`
	MaxPrice  float64 `json:"maxPrice"`
}

func (s *Server) UpsertPriceTier(c *gin.Context) {
	var req upsertPriceTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tier := pricetierdomain.Tier(strings.ToLower(strings.TrimSpace(c.Param("tier"))))
	resp, err := s.priceTierSvc.Upsert(c.Request.Context(), pricetierdomain.UpsertRequest{
		Tier:           tier,
		MinPriceCents:  dollarsToCents(req.MinPrice),
		BasePriceCents: dollarsToCents(req.BasePrice),
		MaxPriceCents:  dollarsToCents(req.MaxPrice),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "price_tier.update", auditdomain.TargetPriceTier, string(resp.Tier), map[string]any{
		"min_price_cents":  resp.MinPriceCents,
		"base_price_cents": resp.BasePriceCents,
		"max_price_cents":  resp.MaxPriceCents,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
