package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"vugru/internal/models"
)

// handleStreamProjects serves the live project list over SSE. The client
// receives its complete current result set immediately and again after every
// project change, mirroring the store subscription contract.
func (s *Server) handleStreamProjects(c *gin.Context) {
	claims := identity(c)

	updates := make(chan []models.Project, 8)
	unsubscribe, err := s.bus.Subscribe(c.Request.Context(), claims.Subject, claims.UserRole(), func(projects []models.Project) {
		select {
		case updates <- projects:
		case <-c.Request.Context().Done():
		}
	})
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case projects := <-updates:
			c.SSEvent("projects", gin.H{"projects": projects})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
