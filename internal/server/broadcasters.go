package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
)

type createBroadcasterRequest struct {
	Name      string  `json:"name"`
	LegalName *string `json:"legalName"`
}

func (s *Server) CreateBroadcaster(c *gin.Context) {
	var req createBroadcasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.broadcasterSvc.Create(c.Request.Context(), broadcasterdomain.CreateRequest{
		Name:      strings.TrimSpace(req.Name),
		LegalName: req.LegalName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "broadcaster.create", auditdomain.TargetBroadcaster, resp.ID.String(), map[string]any{
		"name": resp.Name,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBroadcasters(c *gin.Context) {
	var query broadcasterdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.broadcasterSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBroadcasterByID(c *gin.Context) {
	resp, err := s.broadcasterSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBroadcasterRequest struct {
	Name      *string `json:"name"`
	LegalName *string `json:"legalName"`
}

func (s *Server) UpdateBroadcaster(c *gin.Context) {
	var req updateBroadcasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.broadcasterSvc.Update(c.Request.Context(), broadcasterdomain.UpdateRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		Name:      req.Name,
		LegalName: req.LegalName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "broadcaster.update", auditdomain.TargetBroadcaster, resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transitionBroadcasterRequest struct {
	Status string `json:"status"`
}

func (s *Server) TransitionBroadcaster(c *gin.Context) {
	var req transitionBroadcasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	to := broadcasterdomain.BroadcasterStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	resp, err := s.broadcasterSvc.Transition(c.Request.Context(), strings.TrimSpace(c.Param("id")), to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "broadcaster.transition", auditdomain.TargetBroadcaster, resp.ID.String(), map[string]any{
		"status": string(resp.Status),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
