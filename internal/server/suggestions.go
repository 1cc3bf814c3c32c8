package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	suggestiondomain "github.com/fieldside/rightsdesk/internal/suggestion/domain"
)

func (s *Server) SuggestBroadcasters(c *gin.Context) {
	var query struct {
		SportID   string `form:"sportId"`
		LeagueID  string `form:"leagueId"`
		EventDate string `form:"eventDate"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	eventDate, err := parseOptionalTime(query.EventDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("eventDate", "invalid_event_date", "invalid eventDate"))
		return
	}
	if eventDate == nil {
		AbortWithError(c, newValidationError("eventDate", "missing_event_date", "eventDate is required"))
		return
	}

	resp, err := s.suggestionSvc.SuggestBroadcasters(c.Request.Context(), suggestiondomain.SuggestRequest{
		SportID:   strings.TrimSpace(query.SportID),
		LeagueID:  strings.TrimSpace(query.LeagueID),
		EventDate: *eventDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if resp == nil {
		resp = []suggestiondomain.Suggestion{}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
