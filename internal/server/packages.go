package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
)

type createRightsPackageRequest struct {
	BroadcasterID      string    `json:"broadcasterId"`
	Name               string    `json:"name"`
	ScopeType          string    `json:"scopeType"`
	SportID            *string   `json:"sportId"`
	LeagueID           *string   `json:"leagueId"`
	Season             *string   `json:"season"`
	StartAt            time.Time `json:"startAt"`
	EndAt              time.Time `json:"endAt"`
	IsExclusiveDefault bool      `json:"isExclusiveDefault"`
	TerritoriesDefault []string  `json:"territoriesDefault"`
}

func (s *Server) CreateRightsPackage(c *gin.Context) {
	var req createRightsPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.packageSvc.Create(c.Request.Context(), packagedomain.CreateRequest{
		BroadcasterID:      strings.TrimSpace(req.BroadcasterID),
		Name:               strings.TrimSpace(req.Name),
		ScopeType:          packagedomain.ScopeType(strings.ToLower(strings.TrimSpace(req.ScopeType))),
		SportID:            req.SportID,
		LeagueID:           req.LeagueID,
		Season:             req.Season,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
		IsExclusiveDefault: req.IsExclusiveDefault,
		TerritoriesDefault: req.TerritoriesDefault,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "rights_package.create", auditdomain.TargetPackage, resp.ID.String(), map[string]any{
		"broadcaster_id": resp.BroadcasterID.String(),
		"scope_type":     string(resp.ScopeType),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRightsPackages(c *gin.Context) {
	var query packagedomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.packageSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRightsPackageByID(c *gin.Context) {
	resp, err := s.packageSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActivateRightsPackage(c *gin.Context) {
	resp, err := s.packageSvc.Activate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "rights_package.activate", auditdomain.TargetPackage, resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExpireRightsPackage(c *gin.Context) {
	resp, err := s.packageSvc.Expire(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "rights_package.expire", auditdomain.TargetPackage, resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
