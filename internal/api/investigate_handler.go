package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vigialabs/vigia/internal/ingest"
)

// investigateRequest is the POST /api/v1/investigate request body.
type investigateRequest struct {
	Target string `json:"target" binding:"required"`
}

// handleInvestigate handles POST /api/v1/investigate.
func (s *Server) handleInvestigate(c *gin.Context) {
	if s.investigator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "investigation pipeline not configured"})
		return
	}

	var body investigateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.investigator.Investigate(c.Request.Context(), body.Target)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyTarget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("investigation failed", "target", body.Target, "error", err)
		resp := gin.H{"error": err.Error()}
		if report != nil {
			resp["report"] = report
			resp["rendered"] = report.Render()
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":   report,
		"rendered": report.Render(),
	})
}
