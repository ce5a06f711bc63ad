package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Port        int    `envconfig:"PORT" default:"8080"`

	// Contact backend the form controller posts to. Empty means this server.
	BackendURL     string        `envconfig:"BACKEND_URL"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	// Storage
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:"portfolio.db"`

	// Optional YAML file replacing the embedded site content
	ContentPath string `envconfig:"CONTENT_PATH"`

	// Owner email alerts
	SMTPHost string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USER"`
	SMTPPass string `envconfig:"SMTP_PASS"`
	ToEmail  string `envconfig:"TO_EMAIL"`

	// Owner SMS alerts
	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER"`
	AlertSMSTo       string `envconfig:"ALERT_SMS_TO"`

	// Admin
	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// Scroll reveal
	RevealThreshold  float64 `envconfig:"REVEAL_THRESHOLD" default:"0.1"`
	RevealRootMargin string  `envconfig:"REVEAL_ROOT_MARGIN" default:"0px 0px -100px 0px"`

	// Visitor sessions
	SessionCapacity int           `envconfig:"SESSION_CAPACITY" default:"10000"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"2h"`

	VisitorRetention time.Duration `envconfig:"VISITOR_RETENTION" default:"8760h"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	return LoadWithPrefix("")
}

// LoadWithPrefix reads configuration with an optional env var prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q, expected sqlite or postgres", c.DatabaseDriver)
	}
	if c.RevealThreshold <= 0 || c.RevealThreshold > 1 {
		return fmt.Errorf("REVEAL_THRESHOLD must be in (0, 1], got %v", c.RevealThreshold)
	}
	if c.SessionCapacity < 1 {
		return fmt.Errorf("SESSION_CAPACITY must be positive, got %d", c.SessionCapacity)
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ContactEndpoint returns the URL the contact form posts to.
func (c *Config) ContactEndpoint() string {
	base := c.BackendURL
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	return strings.TrimRight(base, "/") + "/api/contact"
}

// SMTPEnabled returns true if SMTP credentials are configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

// TwilioEnabled returns true if Twilio credentials and both numbers are configured.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		c.TwilioFromNumber != "" && c.AlertSMSTo != ""
}

// CORSOriginList returns the parsed list of allowed origins.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, o := range parts {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// AdminCredentials returns the admin username and password, falling back to
// development defaults. The boolean reports whether a default was used.
func (c *Config) AdminCredentials() (user, pass string, defaulted bool) {
	user, pass = c.AdminUsername, c.AdminPassword
	if user == "" {
		user = "admin"
		defaulted = true
	}
	if pass == "" {
		pass = "admin123"
		defaulted = true
	}
	return user, pass, defaulted
}
