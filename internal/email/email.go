package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/osa911/portfolio/internal/config"
	"github.com/osa911/portfolio/internal/logging"
)

// ErrNotConfigured is returned when a provider lacks credentials or addresses.
var ErrNotConfigured = errors.New("email provider not configured")

// Message is the canonical outbound email handed to a provider.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// SendResult carries the provider assigned id, empty when the provider does
// not return one.
type SendResult struct {
	ID string
}

// Mailer is the contract every email provider implements.
type Mailer interface {
	Send(ctx context.Context, msg *Message) (*SendResult, error)
}

// APIError is a failure reported by an HTTP email provider.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("email provider returned %d %s: %s", e.StatusCode, e.Name, e.Message)
}

// NewMailer builds the provider selected by MAIL_PROVIDER.
func NewMailer(cfg *config.Config, logger *logging.Logger) (Mailer, error) {
	switch cfg.MailProvider {
	case config.MailProviderResend:
		return NewResendMailer(cfg.ResendAPIKey, WithBaseURL(cfg.ResendBaseURL)), nil
	case config.MailProviderSMTP:
		return NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			TLSMode:  cfg.SMTPTLS,
		}), nil
	case config.MailProviderLog:
		if cfg.IsProduction() {
			logger.Warn("MAIL_PROVIDER=log in production: contact messages will only be logged")
		}
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
