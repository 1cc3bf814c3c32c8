package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListTerritories(c *gin.Context) {
	region := strings.TrimSpace(c.Query("region"))

	resp, err := s.territorySvc.List(c.Request.Context(), region)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTerritoryRegions(c *gin.Context) {
	resp, err := s.territorySvc.Regions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
