package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/osa911/portfolio/internal/api/validation"
)

// Sentinel errors for the contact pipeline
var (
	ErrBotCheckFailed = errors.New("bot check failed")
	ErrConfiguration  = errors.New("configuration error")
	ErrMalformedBody  = errors.New("malformed request body")
)

// RateLimitError is returned when the caller used up its window.
type RateLimitError struct {
	Limit     int
	ResetTime time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit of %d exceeded until %s", e.Limit, e.ResetTime.Format(time.RFC3339))
}

// RetryAfter returns the wait until the window resets, at least one second.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	d := e.ResetTime.Sub(now)
	if d < time.Second {
		return time.Second
	}
	return d
}

// ValidationError carries every failing field of a submission.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

// ProviderError wraps a failure of an external dependency.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// configError wraps detail under ErrConfiguration.
func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
