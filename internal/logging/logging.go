// Package logging configures zerolog and provides the gin request logger.
package logging

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger. Development mode writes human-readable
// output to stderr; otherwise JSON goes to stdout.
func New(environment, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()

	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	log.Logger = logger
	return logger
}

// RequestRecorder observes completed requests.
type RequestRecorder interface {
	RecordRequest(route, status string, d time.Duration)
}

// Middleware logs each request when it completes.
func Middleware(logger zerolog.Logger, recorder RequestRecorder) gin.HandlerFunc {
	logger = logger.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		ev := logger.Info()
		switch {
		case status >= 500:
			ev = logger.Error()
		case status >= 400:
			ev = logger.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("duration", duration).
			Msg("request completed")

		if recorder != nil {
			recorder.RecordRequest(route, strconv.Itoa(status), duration)
		}
	}
}
