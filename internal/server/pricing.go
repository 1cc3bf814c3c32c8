package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	pricingdomain "github.com/fieldside/rightsdesk/internal/pricing/domain"
)

func (s *Server) ListEventPricing(c *gin.Context) {
	resp, err := s.pricingSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEffectivePricing(c *gin.Context) {
	eventID := strings.TrimSpace(c.Param("eventId"))

	effective, err := s.pricingSvc.Effective(c.Request.Context(), eventID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// No stored row yet still yields effective platform defaults; the
	// pricing field is null until an override or recompute creates one.
	row, err := s.pricingSvc.Get(c.Request.Context(), eventID)
	if err != nil && !errors.Is(err, pricingdomain.ErrNotFound) {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"effective": effective,
		"price":     centsToDollars(effective.PriceCents),
		"pricing":   row,
	}})
}

// setPricingOverrideRequest takes prices in decimal dollars; the service
// works in integer cents.
type setPricingOverrideRequest struct {
	IsManualOverride bool     `json:"isManualOverride"`
	ManualTier       *string  `json:"manualTier"`
	ManualPrice      *float64 `json:"manualPrice"`
}

func (s *Server) SetPricingOverride(c *gin.Context) {
	var req setPricingOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var manualTier *pricetierdomain.Tier
	if req.ManualTier != nil {
		tier := pricetierdomain.Tier(strings.ToLower(strings.TrimSpace(*req.ManualTier)))
		manualTier = &tier
	}
	var manualPriceCents *int64
	if req.ManualPrice != nil {
		cents := dollarsToCents(*req.ManualPrice)
		manualPriceCents = &cents
	}

	resp, err := s.pricingSvc.SetOverride(c.Request.Context(), pricingdomain.SetOverrideRequest{
		EventID:          strings.TrimSpace(c.Param("eventId")),
		IsManualOverride: req.IsManualOverride,
		ManualTier:       manualTier,
		ManualPriceCents: manualPriceCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "pricing.override", auditdomain.TargetPricing, resp.EventID.String(), map[string]any{
		"is_manual_override": resp.IsManualOverride,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevertPricing(c *gin.Context) {
	resp, err := s.pricingSvc.RevertToComputed(c.Request.Context(), strings.TrimSpace(c.Param("eventId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "pricing.revert", auditdomain.TargetPricing, resp.EventID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecomputePricing(c *gin.Context) {
	resp, err := s.pricingSvc.Recompute(c.Request.Context(), strings.TrimSpace(c.Param("eventId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "pricing.recompute", auditdomain.TargetPricing, resp.EventID.String(), map[string]any{
		"computed_tier": string(resp.ComputedTier),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPricingHistory(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}

	resp, err := s.pricingSvc.ListHistory(c.Request.Context(), n)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
