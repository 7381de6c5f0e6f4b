package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vugru/internal/models"
)

// exportPayload is the downloadable snapshot of everything the caller can
// see: their profile and their projects.
type exportPayload struct {
	Projects   []models.Project `json:"projects"`
	User       models.User      `json:"user"`
	ExportDate time.Time        `json:"exportDate"`
}

// handleExport returns the caller's data as a JSON attachment.
func (s *Server) handleExport(c *gin.Context) {
	claims := identity(c)

	user, err := s.store.GetUser(c.Request.Context(), claims.Subject)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	projects, err := s.store.ListProjectsFor(c.Request.Context(), claims.Subject, claims.UserRole())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="vugru-project-export.json"`)
	c.IndentedJSON(http.StatusOK, exportPayload{
		Projects:   projects,
		User:       user,
		ExportDate: time.Now().UTC(),
	})
}
