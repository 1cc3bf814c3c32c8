package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/fieldside/rightsdesk/internal/actorcontext"
)

// ActorContext reads the gateway-authenticated actor headers into the
// request context. Requests without a valid actor are rejected before any
// handler runs.
func (s *Server) ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := strings.TrimSpace(c.GetHeader("X-Actor-Id"))
		if rawID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errorPayload{
				Type:    "unauthorized",
				Message: "missing actor identity",
			}))
			return
		}

		actorID, err := snowflake.ParseString(rawID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errorPayload{
				Type:    "unauthorized",
				Message: "invalid actor identity",
			}))
			return
		}

		role := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Actor-Role")))
		switch role {
		case actorcontext.RoleViewer, actorcontext.RoleAdmin, actorcontext.RoleOwner:
		default:
			role = actorcontext.RoleViewer
		}

		actor := actorcontext.Actor{
			ID:    actorID,
			Email: strings.TrimSpace(c.GetHeader("X-Actor-Email")),
			Role:  role,
		}

		ctx := actorcontext.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authorize gates a route on the actor's role having permission for the
// given object and action.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authzSvc.Authorize(c.Request.Context(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
