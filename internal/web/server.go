// Package web serves the portfolio page and the HTMX fragment endpoints
// that drive each visitor's gallery, contact form and scroll reveal.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/admin"
	"github.com/kathitsondhi/portfolio/internal/api"
	"github.com/kathitsondhi/portfolio/internal/content"
	"github.com/kathitsondhi/portfolio/internal/logging"
	"github.com/kathitsondhi/portfolio/internal/reveal"
	"github.com/kathitsondhi/portfolio/internal/session"
)

// Pinger checks backing storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options holds the server's collaborators. API, Admin, Auth, Tracker,
// Metrics and DB are optional.
type Options struct {
	Site          *content.Site
	Sessions      *session.Manager
	SessionTTL    time.Duration
	Reveal        reveal.Config
	Recorder      Recorder
	Metrics       http.Handler
	API           *api.Handler
	Admin         *admin.Handler
	Auth          *admin.Auth
	Tracker       *admin.Tracker
	DB            Pinger
	CORSOrigins   []string
	SecureCookies bool
	Logger        zerolog.Logger
}

// Server is the portfolio HTTP server.
type Server struct {
	site          *content.Site
	sessions      *session.Manager
	sessionTTL    time.Duration
	reveal        reveal.Config
	recorder      Recorder
	db            Pinger
	secureCookies bool
	logger        zerolog.Logger
	engine        *gin.Engine
}

// New builds the server and registers all routes.
func New(opts Options) (*Server, error) {
	if opts.Site == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("site content and session manager are required")
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		site:          opts.Site,
		sessions:      opts.Sessions,
		sessionTTL:    opts.SessionTTL,
		reveal:        opts.Reveal,
		recorder:      opts.Recorder,
		db:            opts.DB,
		secureCookies: opts.SecureCookies,
		logger:        opts.Logger.With().Str("component", "web").Logger(),
	}

	var reqRecorder logging.RequestRecorder
	if rr, ok := opts.Recorder.(logging.RequestRecorder); ok {
		reqRecorder = rr
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(opts.Logger, reqRecorder))
	r.Use(api.CORS(opts.CORSOrigins))
	if opts.Tracker != nil {
		r.Use(opts.Tracker.Middleware())
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(staticFiles()))

	r.GET("/health", s.health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	if opts.API != nil {
		adminAPI := func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
		}
		if opts.Auth != nil {
			adminAPI = opts.Auth.RequireAdminAPI()
		}
		opts.API.Register(r.Group("/api"), adminAPI)
	}
	if opts.Admin != nil {
		opts.Admin.Register(r)
	}

	r.GET("/", s.viewSession(), s.index)
	page := r.Group("/")
	page.Use(s.sessionMiddleware())
	page.POST("/projects/:id/toggle", s.toggleProject)
	page.POST("/contact/fields/:field", s.updateField)
	page.POST("/contact", s.submitContact)
	page.POST("/sections/:id/reveal", s.revealSection)

	s.engine = r
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			s.logger.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
