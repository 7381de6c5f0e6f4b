package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vugru/internal/lifecycle"
	"vugru/internal/models"
)

type commentRequest struct {
	Text string `json:"text"`
}

// handleAddComment appends a comment authored by the caller. Whitespace-only
// text issues no write at all and returns the project unchanged. Status is
// never affected by a comment.
func (s *Server) handleAddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	claims := identity(c)
	author := models.User{ID: claims.Subject, Name: claims.Name}
	comment, ok := lifecycle.NewComment(req.Text, author, time.Now().UTC())
	if !ok {
		respondSuccess(c, http.StatusOK, gin.H{"project": project})
		return
	}

	updated, err := s.store.AddComment(c.Request.Context(), project.ID, comment)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	s.bus.NotifyChanged(updated.ID)
	respondSuccess(c, http.StatusCreated, gin.H{"project": updated})
}
