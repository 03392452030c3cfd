package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Mail providers
const (
	MailProviderResend = "resend"
	MailProviderSMTP   = "smtp"
	MailProviderLog    = "log"
)

// Rate limit backends
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment     string        `env:"ENV" envDefault:"development"`
	Port            string        `env:"API_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"65536"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" envSeparator:","`

	// Logging Configuration
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`
	LogRequests bool   `env:"LOG_REQUESTS" envDefault:"false"`

	// Rate Limiting Configuration
	RateLimitWindow        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
	RateLimitMax           int           `env:"RATE_LIMIT_MAX" envDefault:"5"`
	RateLimitSweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"10m"`
	RateLimitBackend       string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RedisURL               string        `env:"REDIS_URL"`
	RedisKeyPrefix         string        `env:"REDIS_KEY_PREFIX" envDefault:"portfolio:ratelimit"`

	// Global throttle applied to every route
	GlobalRPS   float64 `env:"GLOBAL_RPS" envDefault:"10"`
	GlobalBurst int     `env:"GLOBAL_BURST" envDefault:"20"`

	// reCAPTCHA Configuration
	RecaptchaEnabled   bool          `env:"RECAPTCHA_ENABLED" envDefault:"true"`
	RecaptchaSecret    string        `env:"RECAPTCHA_SECRET_KEY"`
	RecaptchaVerifyURL string        `env:"RECAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
	RecaptchaMinScore  float64       `env:"RECAPTCHA_MIN_SCORE" envDefault:"0.5"`
	RecaptchaTimeout   time.Duration `env:"RECAPTCHA_TIMEOUT" envDefault:"10s"`

	// Mail Configuration
	MailProvider     string        `env:"MAIL_PROVIDER" envDefault:"resend"`
	MailTimeout      time.Duration `env:"MAIL_TIMEOUT" envDefault:"15s"`
	ContactFromEmail string        `env:"CONTACT_FROM_EMAIL"`
	ContactFromName  string        `env:"CONTACT_FROM_NAME" envDefault:"Portfolio Contact"`
	ContactToEmail   string        `env:"CONTACT_TO_EMAIL"`
	ResendAPIKey     string        `env:"RESEND_API_KEY"`
	ResendBaseURL    string        `env:"RESEND_BASE_URL" envDefault:"https://api.resend.com"`
	SMTPHost         string        `env:"SMTP_HOST"`
	SMTPPort         int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername     string        `env:"SMTP_USERNAME"`
	SMTPPassword     string        `env:"SMTP_PASSWORD"`
	SMTPTLS          string        `env:"SMTP_TLS" envDefault:"starttls"`

	// Optional Telegram copy of every delivered notification
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`
	TelegramAPIURL   string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`

	// CSRF double-submit check on unsafe methods
	CSRFEnabled bool `env:"CSRF_ENABLED" envDefault:"false"`

	// Telemetry Configuration
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"portfolio-api"`
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	envLocations := []string{
		"internal/config/env/.env.development",
		".env",
	}

	// If ENV is set, try to load that specific file first
	if envName := os.Getenv("ENV"); envName != "" {
		envLocations = append([]string{fmt.Sprintf("internal/config/env/.env.%s", envName)}, envLocations...)
	}

	for _, loc := range envLocations {
		// godotenv.Load never overwrites variables that are already set
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	return Parse()
}

// Parse builds the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.MailProvider = strings.ToLower(strings.TrimSpace(cfg.MailProvider))
	cfg.RateLimitBackend = strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks structural settings. Provider credentials are only
// presence-checked where they are used so a missing secret degrades one stage
// instead of refusing to boot.
func (c *Config) Validate() error {
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	if c.RecaptchaMinScore < 0 || c.RecaptchaMinScore > 1 {
		return fmt.Errorf("RECAPTCHA_MIN_SCORE must be between 0 and 1")
	}

	switch c.RateLimitBackend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}

	switch c.MailProvider {
	case MailProviderResend, MailProviderSMTP, MailProviderLog:
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}

	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Redacted returns a copy safe to print, with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	out.RecaptchaSecret = mask(c.RecaptchaSecret)
	out.ResendAPIKey = mask(c.ResendAPIKey)
	out.SMTPPassword = mask(c.SMTPPassword)
	out.TelegramBotToken = mask(c.TelegramBotToken)
	out.RedisURL = mask(c.RedisURL)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "[MASKED]"
}
