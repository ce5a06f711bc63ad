package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/store"
)

// Store is the persistence the dashboard reads and maintains.
type Store interface {
	Stats(ctx context.Context, now time.Time) (*store.VisitorStats, error)
	RecentVisitors(ctx context.Context, limit int) ([]store.Visit, error)
	ListContactMessages(ctx context.Context, limit int) ([]store.ContactMessage, error)
	UpdateContactStatus(ctx context.Context, id, status string) error
	DeleteVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const (
	visitorsPageSize = 200
	messagesPageSize = 100
)

// Handler serves the admin pages.
type Handler struct {
	auth      *Auth
	store     Store
	retention time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewHandler creates the admin handler. Visits older than retention are
// removed by Cleanup.
func NewHandler(auth *Auth, s Store, retention time.Duration, logger zerolog.Logger) *Handler {
	return &Handler{
		auth:      auth,
		store:     s,
		retention: retention,
		logger:    logger.With().Str("component", "admin").Logger(),
		now:       time.Now,
	}
}

// Register mounts the privacy page and the admin routes.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/privacy", h.privacy)

	r.GET("/admin/login", h.loginPage)
	r.POST("/admin/login", h.login)
	r.GET("/admin/logout", h.logout)

	g := r.Group("/admin")
	g.Use(h.auth.RequireAdmin())
	g.GET("/dashboard", h.dashboard)
	g.GET("/api/stats", h.statsJSON)
	g.GET("/visitors", h.visitors)
	g.GET("/messages", h.messages)
	g.POST("/messages/:id/read", h.markRead)
	g.POST("/privacy/delete-visitor-data", h.cleanup)
	g.GET("/export/stats", h.export)
}

// Cleanup deletes visits older than the retention horizon.
func (h *Handler) Cleanup(ctx context.Context) (int64, error) {
	cutoff := h.now().Add(-h.retention)
	n, err := h.store.DeleteVisitsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		h.logger.Info().Int64("deleted", n).Dur("retention", h.retention).Msg("privacy cleanup removed old visitor records")
	}
	return n, nil
}

func (h *Handler) privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"retention": retentionLabel(h.retention),
	})
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
}

func (h *Handler) login(c *gin.Context) {
	if h.auth.CheckCredentials(c.PostForm("username"), c.PostForm("password")) {
		h.auth.setCookie(c)
		h.logger.Info().Str("client", h.auth.HashIP(c.ClientIP())).Msg("admin login successful")
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}
	h.logger.Warn().Str("client", h.auth.HashIP(c.ClientIP())).Msg("failed admin login attempt")
	c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
		"title": "Admin Login",
		"error": "Invalid credentials",
	})
}

func (h *Handler) logout(c *gin.Context) {
	clearCookie(c)
	h.logger.Info().Str("client", h.auth.HashIP(c.ClientIP())).Msg("admin logout")
	c.Redirect(http.StatusFound, "/admin/login")
}

func (h *Handler) renderError(c *gin.Context, msg string, err error) {
	h.logger.Error().Err(err).Msg(msg)
	c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"title": "Error", "error": msg})
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.store.Stats(ctx, h.now())
	if err != nil {
		h.renderError(c, "Failed to load statistics", err)
		return
	}
	messages, err := h.store.ListContactMessages(ctx, 10)
	if err != nil {
		h.renderError(c, "Failed to load messages", err)
		return
	}
	c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
		"title":    "Dashboard",
		"stats":    stats,
		"messages": messages,
	})
}

func (h *Handler) statsJSON(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), h.now())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) visitors(c *gin.Context) {
	visits, err := h.store.RecentVisitors(c.Request.Context(), visitorsPageSize)
	if err != nil {
		h.renderError(c, "Failed to load visitors", err)
		return
	}
	c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"title": "Visitors", "visitors": visits})
}

func (h *Handler) messages(c *gin.Context) {
	messages, err := h.store.ListContactMessages(c.Request.Context(), messagesPageSize)
	if err != nil {
		h.renderError(c, "Failed to load messages", err)
		return
	}
	c.HTML(http.StatusOK, "admin-messages.html", gin.H{"title": "Messages", "messages": messages})
}

func (h *Handler) markRead(c *gin.Context) {
	id := c.Param("id")
	err := h.store.UpdateContactStatus(c.Request.Context(), id, store.StatusRead)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	case err != nil:
		h.logger.Error().Err(err).Str("message_id", id).Msg("failed to mark message read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

func (h *Handler) cleanup(c *gin.Context) {
	n, err := h.Cleanup(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("privacy cleanup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup completed", "deleted": n})
}

func (h *Handler) export(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), h.now())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to export statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
	h.logger.Info().Str("client", h.auth.HashIP(c.ClientIP())).Msg("admin stats exported")
	c.JSON(http.StatusOK, stats)
}

func retentionLabel(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch {
	case days >= 365 && days%365 == 0:
		if days == 365 {
			return "12 months"
		}
		return strconv.Itoa(days/365) + " years"
	case days == 1:
		return "1 day"
	default:
		return strconv.Itoa(days) + " days"
	}
}
