package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vugru/internal/lifecycle"
	"vugru/internal/models"
)

type quoteResponseRequest struct {
	Type              string   `json:"type"`
	Message           string   `json:"message"`
	QuotedPrice       string   `json:"quotedPrice"`
	EstimatedDuration string   `json:"estimatedDuration"`
	IncludedServices  []string `json:"includedServices"`
}

type quoteDecisionRequest struct {
	Accepted *bool `json:"accepted"`
}

// handleQuoteResponse applies a videographer's response to a pending or
// awaiting_info project: send a quote, decline, or request more information.
// Accepting without a price and duration is rejected here, before the
// lifecycle logic ever sees it.
func (s *Server) handleQuoteResponse(c *gin.Context) {
	if !s.requireRole(c, models.RoleVideographer) {
		return
	}

	var req quoteResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	kind := lifecycle.ResponseKind(req.Type)
	if _, ok := lifecycle.ValidResponseKinds[kind]; !ok {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid response type %q", req.Type))
		return
	}
	if kind == lifecycle.KindAccept && (req.QuotedPrice == "" || req.EstimatedDuration == "") {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("a quote requires both a price and an estimated duration"))
		return
	}

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if project.Status != models.StatusPending && project.Status != models.StatusAwaitingInfo {
		s.respondError(c, http.StatusConflict, fmt.Errorf("project is not awaiting a response (status %s)", project.Status))
		return
	}

	update := lifecycle.RespondToRequest(project, lifecycle.Response{
		Kind:              kind,
		Message:           req.Message,
		QuotedPrice:       req.QuotedPrice,
		EstimatedDuration: req.EstimatedDuration,
		IncludedServices:  req.IncludedServices,
	}, time.Now().UTC())

	updated, err := s.store.ApplyUpdate(c.Request.Context(), project.ID, update)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	s.bus.NotifyChanged(updated.ID)
	respondSuccess(c, http.StatusOK, gin.H{"project": updated})
}

// handleQuoteDecision applies a client's accept/decline of a sent quote.
func (s *Server) handleQuoteDecision(c *gin.Context) {
	if !s.requireRole(c, models.RoleClient) {
		return
	}

	var req quoteDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Accepted == nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("accepted is required"))
		return
	}

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if project.Status != models.StatusQuoted {
		s.respondError(c, http.StatusConflict, fmt.Errorf("project has no open quote (status %s)", project.Status))
		return
	}

	updated, err := s.store.ApplyUpdate(c.Request.Context(), project.ID, lifecycle.DecideQuote(*req.Accepted, time.Now().UTC()))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	s.bus.NotifyChanged(updated.ID)
	respondSuccess(c, http.StatusOK, gin.H{"project": updated})
}
