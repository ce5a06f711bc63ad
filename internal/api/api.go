// Package api serves the JSON contact backend under /api.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/contact"
	"github.com/kathitsondhi/portfolio/internal/store"
)

const (
	contactAccepted = "Message sent successfully! I'll get back to you soon."
	listLimit       = 1000
)

// Store is the persistence the backend needs.
type Store interface {
	SaveContactMessage(ctx context.Context, m *store.ContactMessage) error
	ListContactMessages(ctx context.Context, limit int) ([]store.ContactMessage, error)
	SaveStatusCheck(ctx context.Context, c *store.StatusCheck) error
	ListStatusChecks(ctx context.Context, limit int) ([]store.StatusCheck, error)
}

// Alerter notifies the owner about a stored message without blocking.
type Alerter interface {
	Go(m store.ContactMessage)
}

// Recorder observes stored messages.
type Recorder interface {
	RecordMessageStored()
}

// Handler serves the backend routes.
type Handler struct {
	store    Store
	alerter  Alerter
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewHandler creates a backend handler. alerter and recorder may be nil.
func NewHandler(s Store, alerter Alerter, recorder Recorder, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    s,
		alerter:  alerter,
		recorder: recorder,
		logger:   logger.With().Str("component", "api").Logger(),
		now:      time.Now,
	}
}

// Register mounts the routes on r. adminAuth guards the message listing.
func (h *Handler) Register(r gin.IRouter, adminAuth gin.HandlerFunc) {
	r.GET("/", h.root)
	r.POST("/status", h.createStatusCheck)
	r.GET("/status", h.listStatusChecks)
	r.POST("/contact", h.createContactMessage)
	r.GET("/contact", adminAuth, h.listContactMessages)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
}

type statusCheckRequest struct {
	ClientName string `json:"client_name" binding:"required"`
}

func (h *Handler) createStatusCheck(c *gin.Context) {
	var req statusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetail(err)})
		return
	}
	check := store.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: req.ClientName,
		Timestamp:  h.now().UTC(),
	}
	if err := h.store.SaveStatusCheck(c.Request.Context(), &check); err != nil {
		h.logger.Error().Err(err).Msg("failed to save status check")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save status check"})
		return
	}
	c.JSON(http.StatusOK, check)
}

func (h *Handler) listStatusChecks(c *gin.Context) {
	checks, err := h.store.ListStatusChecks(c.Request.Context(), listLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list status checks")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch status checks"})
		return
	}
	c.JSON(http.StatusOK, checks)
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,min=10"`
}

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (h *Handler) createContactMessage(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetail(err)})
		return
	}

	msg := store.ContactMessage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: h.now().UTC(),
		Status:    store.StatusNew,
	}
	if err := h.store.SaveContactMessage(c.Request.Context(), &msg); err != nil {
		h.logger.Error().Err(err).Msg("failed to save contact message")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": contact.GenericFailure})
		return
	}

	h.logger.Info().Str("message_id", msg.ID).Msg("contact message stored")
	if h.recorder != nil {
		h.recorder.RecordMessageStored()
	}
	if h.alerter != nil {
		h.alerter.Go(msg)
	}

	c.JSON(http.StatusOK, contactResponse{Success: true, Message: contactAccepted, ID: msg.ID})
}

func (h *Handler) listContactMessages(c *gin.Context) {
	messages, err := h.store.ListContactMessages(c.Request.Context(), listLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list contact messages")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// validationDetail turns a binding error into a message fit for a toast.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}

func fieldLabel(structField string) string {
	switch structField {
	case "ClientName":
		return "Client name"
	default:
		return structField
	}
}
