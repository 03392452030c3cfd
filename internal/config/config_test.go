package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	unsetEnv(t, "ENV", "MAIL_PROVIDER", "RATE_LIMIT_BACKEND", "RATE_LIMIT_WINDOW", "RATE_LIMIT_MAX",
		"RECAPTCHA_MIN_SCORE", "RECAPTCHA_TIMEOUT", "LOG_FILE")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 0.5, cfg.RecaptchaMinScore)
	assert.Equal(t, 10*time.Second, cfg.RecaptchaTimeout)
	assert.Equal(t, MailProviderResend, cfg.MailProvider)
	assert.Equal(t, RateLimitBackendMemory, cfg.RateLimitBackend)
	assert.False(t, cfg.IsProduction())
}

func TestParse_Overrides(t *testing.T) {
	unsetEnv(t, "LOG_FILE", "RATE_LIMIT_BACKEND")
	t.Setenv("ENV", "Production")
	t.Setenv("RATE_LIMIT_WINDOW", "30m")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("MAIL_PROVIDER", "SMTP")
	t.Setenv("ALLOWED_ORIGINS", "https://a.dev,https://b.dev")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 3, cfg.RateLimitMax)
	assert.Equal(t, MailProviderSMTP, cfg.MailProvider)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RateLimitWindow:   time.Hour,
			RateLimitMax:      5,
			RecaptchaMinScore: 0.5,
			RateLimitBackend:  RateLimitBackendMemory,
			MailProvider:      MailProviderLog,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero window", func(c *Config) { c.RateLimitWindow = 0 }, true},
		{"zero max", func(c *Config) { c.RateLimitMax = 0 }, true},
		{"score above one", func(c *Config) { c.RecaptchaMinScore = 1.5 }, true},
		{"redis without url", func(c *Config) { c.RateLimitBackend = RateLimitBackendRedis }, true},
		{"redis with url", func(c *Config) {
			c.RateLimitBackend = RateLimitBackendRedis
			c.RedisURL = "redis://localhost:6379/0"
		}, false},
		{"unknown backend", func(c *Config) { c.RateLimitBackend = "memcached" }, true},
		{"unknown provider", func(c *Config) { c.MailProvider = "carrier-pigeon" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{RecaptchaSecret: "s3cret", ResendAPIKey: "re_123", TelegramBotToken: "123:abc", ContactToEmail: "me@example.com"}

	out := cfg.Redacted()

	assert.Equal(t, "[MASKED]", out.RecaptchaSecret)
	assert.Equal(t, "[MASKED]", out.ResendAPIKey)
	assert.Equal(t, "[MASKED]", out.TelegramBotToken)
	assert.Equal(t, "", out.SMTPPassword)
	assert.Equal(t, "me@example.com", out.ContactToEmail)
	assert.Equal(t, "s3cret", cfg.RecaptchaSecret)
}

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}
