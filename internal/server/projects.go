package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vugru/internal/models"
	"vugru/internal/timeline"
)

// Placeholder values used when a request leaves budget or location open.
const (
	defaultBudget   = "To be discussed"
	defaultLocation = "To be confirmed"
)

type projectRequest struct {
	ProjectName    string   `json:"projectName"`
	Description    string   `json:"description"`
	Date           string   `json:"date"`
	Deliverables   []string `json:"deliverables"`
	Budget         string   `json:"budget"`
	Location       string   `json:"location"`
	VideographerID string   `json:"videographerId"`
}

// handleListProjects returns the caller's projects, filtered by role.
func (s *Server) handleListProjects(c *gin.Context) {
	claims := identity(c)
	projects, err := s.store.ListProjectsFor(c.Request.Context(), claims.Subject, claims.UserRole())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"projects": projects})
}

// handleCreateProject lets a client submit a new quote request. The project
// starts out pending and is assigned to the chosen videographer.
func (s *Server) handleCreateProject(c *gin.Context) {
	if !s.requireRole(c, models.RoleClient) {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.ProjectName) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("project name is required"))
		return
	}
	if req.VideographerID == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("videographer is required"))
		return
	}
	if len(req.Deliverables) == 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("at least one deliverable is required"))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	claims := identity(c)
	client, err := s.store.GetUser(c.Request.Context(), claims.Subject)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	budget := req.Budget
	if strings.TrimSpace(budget) == "" {
		budget = defaultBudget
	}
	location := req.Location
	if strings.TrimSpace(location) == "" {
		location = defaultLocation
	}

	project, err := s.store.CreateProject(c.Request.Context(), models.Project{
		ClientID:       client.ID,
		ClientName:     client.Name,
		ClientEmail:    client.Email,
		ProjectName:    req.ProjectName,
		Description:    req.Description,
		Status:         models.StatusPending,
		Date:           date,
		Deliverables:   req.Deliverables,
		Budget:         budget,
		Location:       location,
		VideographerID: req.VideographerID,
	})
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	s.bus.NotifyChanged(project.ID)
	respondSuccess(c, http.StatusCreated, gin.H{"project": project})
}

// handleGetProject fetches a single project with its comments.
func (s *Server) handleGetProject(c *gin.Context) {
	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": project})
}

// handleProjectTimeline returns the derived timeline, oldest first by
// default, newest first with ?order=desc.
func (s *Server) handleProjectTimeline(c *gin.Context) {
	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	entries := timeline.History(project)
	if c.Query("order") == "desc" {
		entries = timeline.Summary(project)
	}
	respondSuccess(c, http.StatusOK, gin.H{"timeline": entries})
}

// handleDeleteProject permanently removes a project and its comments. Only
// the owning client may delete.
func (s *Server) handleDeleteProject(c *gin.Context) {
	if !s.requireRole(c, models.RoleClient) {
		return
	}

	id := c.Param("id")
	project, err := s.store.GetProject(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if project.ClientID != identity(c).Subject {
		s.respondError(c, http.StatusForbidden, fmt.Errorf("only the owning client can delete a project"))
		return
	}

	if err := s.store.DeleteProject(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}

	s.bus.NotifyChanged(id)
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// parseDate accepts the ISO forms the frontend sends for the target
// completion date.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("completion date is required")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if date, err := time.Parse(layout, raw); err == nil {
			return date.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid completion date %q", raw)
}
