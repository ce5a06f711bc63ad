package admin

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/store"
)

// VisitRecorder persists visits.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, v *store.Visit) error
}

var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/admin/",
	"/api/",
	"/favicon",
	"/privacy",
	"/metrics",
	"/health",
}

// Tracker records page views with hashed client addresses.
type Tracker struct {
	auth     *Auth
	recorder VisitRecorder
	logger   zerolog.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewTracker creates a visitor tracker.
func NewTracker(auth *Auth, recorder VisitRecorder, logger zerolog.Logger) *Tracker {
	return &Tracker{
		auth:     auth,
		recorder: recorder,
		logger:   logger.With().Str("component", "tracker").Logger(),
		now:      time.Now,
	}
}

// Middleware records GET page views in the background. Static assets,
// admin pages, fragment endpoints and requests carrying DNT: 1 are skipped.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || skipTracking(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		v := store.Visit{
			HashedIP:  t.auth.HashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: t.now().UTC(),
		}
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := t.recorder.RecordVisit(ctx, &v); err != nil {
				t.logger.Error().Err(err).Msg("failed to record visitor")
			}
		}()
		c.Next()
	}
}

// Wait blocks until pending visit writes finish.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func skipTracking(path string) bool {
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
