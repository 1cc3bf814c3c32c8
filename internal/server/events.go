package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
)

type createEventRequest struct {
	Title    string    `json:"title"`
	SportID  string    `json:"sportId"`
	LeagueID *string   `json:"leagueId"`
	Season   *string   `json:"season"`
	StartAt  time.Time `json:"startAt"`
}

func (s *Server) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eventSvc.Create(c.Request.Context(), eventdomain.CreateRequest{
		Title:    strings.TrimSpace(req.Title),
		SportID:  strings.TrimSpace(req.SportID),
		LeagueID: req.LeagueID,
		Season:   req.Season,
		StartAt:  req.StartAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "event.create", auditdomain.TargetEvent, resp.ID.String(), map[string]any{
		"title": resp.Title,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEvents(c *gin.Context) {
	var query eventdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eventSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEventByID(c *gin.Context) {
	resp, err := s.eventSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
