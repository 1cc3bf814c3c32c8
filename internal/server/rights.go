package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	rightsdomain "github.com/fieldside/rightsdesk/internal/rights/domain"
)

type createRightsRequest struct {
	EventID            string   `json:"eventId"`
	BroadcasterID      string   `json:"broadcasterId"`
	PackageID          *string  `json:"packageId"`
	RightsLive         bool     `json:"rightsLive"`
	RightsReplay       bool     `json:"rightsReplay"`
	RightsHighlights   bool     `json:"rightsHighlights"`
	ReplayWindowHours  *int     `json:"replayWindowHours"`
	TerritoriesAllowed []string `json:"territoriesAllowed"`
	TerritoriesBlocked []string `json:"territoriesBlocked"`
	Exclusivity        string   `json:"exclusivity"`
	Platform           string   `json:"platform"`
}

func (s *Server) CreateRights(c *gin.Context) {
	var req createRightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rightsSvc.Create(c.Request.Context(), rightsdomain.CreateRequest{
		EventID:            strings.TrimSpace(req.EventID),
		BroadcasterID:      strings.TrimSpace(req.BroadcasterID),
		PackageID:          req.PackageID,
		RightsLive:         req.RightsLive,
		RightsReplay:       req.RightsReplay,
		RightsHighlights:   req.RightsHighlights,
		ReplayWindowHours:  req.ReplayWindowHours,
		TerritoriesAllowed: req.TerritoriesAllowed,
		TerritoriesBlocked: req.TerritoriesBlocked,
		Exclusivity:        rightsdomain.Exclusivity(strings.ToLower(strings.TrimSpace(req.Exclusivity))),
		Platform:           rightsdomain.Platform(strings.ToLower(strings.TrimSpace(req.Platform))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "rights.create", auditdomain.TargetRights, resp.ID.String(), map[string]any{
		"event_id":       resp.EventID.String(),
		"broadcaster_id": resp.BroadcasterID.String(),
		"exclusivity":    string(resp.Exclusivity),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRights(c *gin.Context) {
	var query rightsdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rightsSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRightsByID(c *gin.Context) {
	resp, err := s.rightsSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActivateRights(c *gin.Context) {
	resp, err := s.rightsSvc.Activate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "rights.activate", auditdomain.TargetRights, resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExpireRights(c *gin.Context) {
	resp, err := s.rightsSvc.Expire(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "rights.expire", auditdomain.TargetRights, resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevokeRights(c *gin.Context) {
	resp, err := s.rightsSvc.Revoke(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "rights.revoke", auditdomain.TargetRights, resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// FindRightsConflicts runs a what-if exclusivity check. Nothing is
// persisted; an empty result means the proposed grant is clear.
func (s *Server) FindRightsConflicts(c *gin.Context) {
	var query struct {
		EventIDs             string `form:"eventIds"`
		Territories          string `form:"territories"`
		Exclusivity          string `form:"exclusivity"`
		ExcludeBroadcasterID string `form:"excludeBroadcasterId"`
		ExcludeRightID       string `form:"excludeRightId"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rightsSvc.FindConflicts(c.Request.Context(), rightsdomain.FindConflictsRequest{
		EventIDs:             parseCSV(query.EventIDs),
		Territories:          parseCSV(query.Territories),
		Exclusivity:          rightsdomain.Exclusivity(strings.ToLower(strings.TrimSpace(query.Exclusivity))),
		ExcludeBroadcasterID: strings.TrimSpace(query.ExcludeBroadcasterID),
		ExcludeRightID:       strings.TrimSpace(query.ExcludeRightID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if resp == nil {
		resp = []rightsdomain.Conflict{}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
