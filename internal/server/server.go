package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vugru/internal/auth"
	"vugru/internal/models"
	"vugru/internal/storage/sqlite"
	"vugru/internal/watch"
)

const identityKey = "identity"

// Server provides the HTTP surface of the quoting portal.
type Server struct {
	engine    *gin.Engine
	store     *sqlite.Store
	bus       *watch.Bus
	tokens    *auth.Tokens
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, bus *watch.Bus, tokens *auth.Tokens, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:    router,
		store:     store,
		bus:       bus,
		tokens:    tokens,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)

		authed := api.Group("", s.requireAuth)
		{
			authed.GET("/me", s.handleMe)
			authed.GET("/videographers", s.handleListVideographers)
			authed.GET("/export", s.handleExport)

			projects := authed.Group("/projects")
			{
				projects.GET("", s.handleListProjects)
				projects.POST("", s.handleCreateProject)
				projects.GET("/stream", s.handleStreamProjects)
				projects.GET(":id", s.handleGetProject)
				projects.GET(":id/timeline", s.handleProjectTimeline)
				projects.POST(":id/response", s.handleQuoteResponse)
				projects.POST(":id/decision", s.handleQuoteDecision)
				projects.POST(":id/comments", s.handleAddComment)
				projects.DELETE(":id", s.handleDeleteProject)
			}
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireAuth validates the bearer token and stores the claims for handlers.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set(identityKey, claims)
	c.Next()
}

// identity returns the claims stored by requireAuth.
func identity(c *gin.Context) auth.Claims {
	claims, _ := c.MustGet(identityKey).(auth.Claims)
	return claims
}

// requireRole aborts unless the caller claims the given role. This is UI-level
// gating; the lifecycle logic itself never checks identity.
func (s *Server) requireRole(c *gin.Context, role models.Role) bool {
	if identity(c).UserRole() != role {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not allowed for this role"})
		return false
	}
	return true
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondStoreError maps missing records to 404 and everything else to a
// generic failure.
func (s *Server) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, sqlite.ErrProjectNotFound) || errors.Is(err, sqlite.ErrUserNotFound) {
		s.respondError(c, http.StatusNotFound, err)
		return
	}
	s.respondError(c, http.StatusInternalServerError, err)
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
