package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/admin"
	"github.com/kathitsondhi/portfolio/internal/alert"
	"github.com/kathitsondhi/portfolio/internal/api"
	"github.com/kathitsondhi/portfolio/internal/config"
	"github.com/kathitsondhi/portfolio/internal/contact"
	"github.com/kathitsondhi/portfolio/internal/content"
	"github.com/kathitsondhi/portfolio/internal/logging"
	"github.com/kathitsondhi/portfolio/internal/metrics"
	"github.com/kathitsondhi/portfolio/internal/reveal"
	"github.com/kathitsondhi/portfolio/internal/session"
	"github.com/kathitsondhi/portfolio/internal/store"
	"github.com/kathitsondhi/portfolio/internal/web"
)

const (
	sweepInterval   = time.Minute
	cleanupInterval = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Environment, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	site, err := content.Load(cfg.ContentPath)
	if err != nil {
		return err
	}
	logger.Info().Int("projects", len(site.Projects)).Msg("content loaded")
	for _, p := range site.Projects {
		if !p.Type.Known() {
			logger.Warn().Int("project_id", p.ID).Str("type", string(p.Type)).Msg("unrecognized project type, using default style")
		}
	}

	m := metrics.New()
	dispatcher := alert.NewDispatcher(logger, m, notifiers(cfg, logger)...)
	if dispatcher.Enabled() {
		logger.Info().Strs("channels", dispatcher.Channels()).Msg("owner alerts enabled")
	} else {
		logger.Warn().Msg("no alert channels configured, new messages are only stored")
	}

	user, pass, defaulted := cfg.AdminCredentials()
	if defaulted {
		logger.Warn().Msg("using default admin credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	}
	auth, err := admin.NewAuth(user, pass)
	if err != nil {
		return err
	}
	adminHandler := admin.NewHandler(auth, db, cfg.VisitorRetention, logger)
	logger.Info().Msg("admin access available at /admin/login")

	revealCfg := reveal.Config{Threshold: cfg.RevealThreshold, RootMargin: cfg.RevealRootMargin}
	sender := contact.NewHTTPSender(cfg.ContactEndpoint(), cfg.BackendTimeout)
	logger.Info().Str("endpoint", sender.Endpoint()).Msg("contact form backend")

	sessions := session.NewManager(cfg.SessionCapacity, cfg.SessionTTL, web.NewSessionFactory(web.SessionConfig{
		Sender:   sender,
		Reveal:   revealCfg,
		Recorder: m,
		Logger:   logger,
	}), logger)
	defer sessions.Close()

	srv, err := web.New(web.Options{
		Site:          site,
		Sessions:      sessions,
		SessionTTL:    cfg.SessionTTL,
		Reveal:        revealCfg,
		Recorder:      m,
		Metrics:       m.Handler(),
		API:           api.NewHandler(db, dispatcher, m, logger),
		Admin:         adminHandler,
		Auth:          auth,
		Tracker:       admin.NewTracker(auth, db, logger),
		DB:            db,
		CORSOrigins:   cfg.CORSOriginList(),
		SecureCookies: !cfg.IsDevelopment(),
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go maintain(ctx, sessions, adminHandler, m, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Port).Str("environment", cfg.Environment).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if !dispatcher.WaitContext(shutdownCtx) {
		logger.Warn().Msg("pending owner alerts abandoned at shutdown")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func notifiers(cfg *config.Config, logger zerolog.Logger) []alert.Notifier {
	var out []alert.Notifier
	if cfg.SMTPEnabled() {
		n, err := alert.NewSMTPNotifier(alert.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			To:   cfg.ToEmail,
		})
		if err != nil {
			logger.Error().Err(err).Msg("email alerts disabled")
		} else {
			out = append(out, n)
		}
	}
	if cfg.TwilioEnabled() {
		n, err := alert.NewTwilioNotifier(alert.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFromNumber,
			To:         cfg.AlertSMSTo,
		})
		if err != nil {
			logger.Error().Err(err).Msg("SMS alerts disabled")
		} else {
			out = append(out, n)
		}
	}
	return out
}

// maintain expires idle sessions and prunes old visitor records until ctx
// is done.
func maintain(ctx context.Context, sessions *session.Manager, adm *admin.Handler, m *metrics.Metrics, logger zerolog.Logger) {
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()
	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	prune := func() {
		if _, err := adm.Cleanup(ctx); err != nil {
			logger.Error().Err(err).Msg("visitor cleanup failed")
		}
	}
	prune()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug().Int("expired", n).Msg("expired visitor sessions")
			}
			m.RecordSessions(sessions.Len())
		case <-cleanup.C:
			prune()
		}
	}
}
