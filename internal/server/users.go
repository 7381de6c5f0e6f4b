package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vugru/internal/models"
)

// handleListVideographers backs the videographer picker on the quote request
// form. No pagination; the full list is returned.
func (s *Server) handleListVideographers(c *gin.Context) {
	videographers, err := s.store.ListUsersByRole(c.Request.Context(), models.RoleVideographer)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"videographers": videographers})
}
