package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/contact"
	"github.com/kathitsondhi/portfolio/internal/content"
	"github.com/kathitsondhi/portfolio/internal/gallery"
	"github.com/kathitsondhi/portfolio/internal/notify"
	"github.com/kathitsondhi/portfolio/internal/reveal"
	"github.com/kathitsondhi/portfolio/internal/session"
)

const (
	sessionCookie = "portfolio_session"
	sessionKey    = "session"
)

// Recorder observes visitor interactions.
type Recorder interface {
	contact.Recorder
	RecordToggle(expanded bool)
	RecordReveal(section string)
	RecordPageView()
	RecordSessions(n int)
}

// SessionConfig describes how new visitor sessions are built.
type SessionConfig struct {
	Sender   contact.Sender
	Reveal   reveal.Config
	Recorder Recorder
	Logger   zerolog.Logger
}

// NewSessionFactory returns a session.Factory wiring a gallery, contact form,
// reveal observer and toast queue for each visitor.
func NewSessionFactory(cfg SessionConfig) session.Factory {
	logSink := notify.NewLogSink(cfg.Logger)
	return func(id string) *session.Session {
		logger := cfg.Logger.With().Str("session_id", id).Logger()
		toasts := notify.NewQueue()

		formOpts := []contact.Option{contact.WithLogger(logger)}
		if cfg.Recorder != nil {
			formOpts = append(formOpts, contact.WithRecorder(cfg.Recorder))
		}

		observer := reveal.NewObserver(cfg.Reveal, func(section string) {
			logger.Debug().Str("section", section).Msg("section revealed")
			if cfg.Recorder != nil {
				cfg.Recorder.RecordReveal(section)
			}
		})
		observer.Observe(content.Sections...)

		return &session.Session{
			ID:      id,
			Gallery: gallery.NewController(),
			Form:    contact.NewForm(cfg.Sender, notify.Fanout{toasts, logSink}, formOpts...),
			Reveal:  observer,
			Toasts:  toasts,
		}
	}
}

// viewSession attaches the visitor's stored session, or a blank unstored
// one when the request carries no live session cookie. It never issues a
// cookie, so crawlers and one-off page views do not occupy the store.
func (s *Server) viewSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		sess, ok := s.sessions.Get(id)
		if !ok {
			sess = s.sessions.Blank()
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// sessionMiddleware attaches the visitor's session, creating it and issuing
// a cookie for new visitors.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	maxAge := int(s.sessionTTL / time.Second)
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		sess, created := s.sessions.Acquire(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sess.ID, maxAge, "/", "", s.secureCookies, true)
		}
		if s.recorder != nil {
			s.recorder.RecordSessions(s.sessions.Len())
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
