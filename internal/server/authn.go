package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vugru/internal/auth"
	"vugru/internal/models"
	"vugru/internal/storage/sqlite"
)

type registerRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	UserType     string   `json:"userType"`
	Company      string   `json:"company"`
	Specialties  []string `json:"specialties"`
	PortfolioURL string   `json:"portfolioUrl"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates a user record and issues a session token.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	role := models.Role(req.UserType)
	if _, ok := models.ValidRoles[role]; !ok {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid user type %q", req.UserType))
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("name and email are required"))
		return
	}
	if len(req.Password) < 6 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("password must be at least 6 characters"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Role:         role,
		Company:      req.Company,
		Specialties:  req.Specialties,
		PortfolioURL: req.PortfolioURL,
	}, hash)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

// handleLogin verifies credentials and issues a session token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, hash, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sqlite.ErrUserNotFound) {
			s.respondError(c, http.StatusUnauthorized, fmt.Errorf("invalid credentials"))
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := auth.CheckPassword(hash, req.Password); err != nil {
		s.respondError(c, http.StatusUnauthorized, fmt.Errorf("invalid credentials"))
		return
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user, "token": token})
}

// handleMe returns the caller's user record. A missing record is "no data",
// not a server failure.
func (s *Server) handleMe(c *gin.Context) {
	user, err := s.store.GetUser(c.Request.Context(), identity(c).Subject)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}
