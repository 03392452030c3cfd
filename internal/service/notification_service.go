package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/osa911/portfolio/internal/api/validation"
	"github.com/osa911/portfolio/internal/email"
	"github.com/osa911/portfolio/internal/logging"
)

// ContactETA is the reply window promised to visitors.
const ContactETA = "24-48 hours"

const timestampLayout = "Monday, January 2, 2006 at 15:04 MST"

// NotificationConfig holds the static addresses used for every notification.
type NotificationConfig struct {
	From     string
	FromName string
	To       string
	Timeout  time.Duration
}

// DispatchResult is returned after a notification was handed to the provider.
type DispatchResult struct {
	MessageID string
	EmailID   string
	ETA       string
}

// NotificationMirror receives a copy of every delivered notification.
// Mirror failures are logged and never fail the submission.
type NotificationMirror interface {
	SendNotification(ctx context.Context, n email.Notification) error
}

const mirrorTimeout = 5 * time.Second

// NotificationService turns a submission into an email and sends it.
type NotificationService struct {
	mailer  email.Mailer
	mirrors []NotificationMirror
	cfg     NotificationConfig
	logger  *logging.Logger
	now     func() time.Time
	pending sync.WaitGroup
}

type NotificationOption func(*NotificationService)

// WithMirror adds a best-effort secondary channel such as Telegram.
func WithMirror(m NotificationMirror) NotificationOption {
	return func(s *NotificationService) {
		s.mirrors = append(s.mirrors, m)
	}
}

// NewNotificationService creates a dispatcher on top of mailer.
func NewNotificationService(mailer email.Mailer, cfg NotificationConfig, logger *logging.Logger, opts ...NotificationOption) *NotificationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	s := &NotificationService{
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch sends sub to the site owner. The submitter is only ever the
// Reply-To address.
func (s *NotificationService) Dispatch(ctx context.Context, sub validation.Submission) (*DispatchResult, error) {
	if s.cfg.From == "" || s.cfg.To == "" {
		return nil, configError("CONTACT_FROM_EMAIL and CONTACT_TO_EMAIL must both be set")
	}

	now := s.now()
	messageID := NewMessageID(now)
	notification := BuildNotification(messageID, FormatTimestamp(now), sub)

	htmlBody, err := notification.RenderHTML()
	if err != nil {
		return nil, fmt.Errorf("render html notification: %w", err)
	}
	textBody, err := notification.RenderText()
	if err != nil {
		return nil, fmt.Errorf("render text notification: %w", err)
	}

	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	msg := &email.Message{
		From:    from,
		To:      []string{s.cfg.To},
		ReplyTo: sub.Email(),
		Subject: fmt.Sprintf("New contact: %s from %s", sub.ReasonLabel(), sub.Name()),
		HTML:    htmlBody,
		Text:    textBody,
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	res, err := s.mailer.Send(sendCtx, msg)
	if err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			return nil, configError("%v", err)
		}
		return nil, &ProviderError{Provider: "email", Err: err}
	}

	result := &DispatchResult{MessageID: messageID, ETA: ContactETA}
	if res != nil {
		result.EmailID = res.ID
	}

	s.logger.Info("Contact notification %s sent (email id %q)", messageID, result.EmailID)

	s.mirror(ctx, notification)
	return result, nil
}

// mirror copies n to every mirror in the background. The request context is
// detached so the copy outlives the response.
func (s *NotificationService) mirror(ctx context.Context, n email.Notification) {
	if len(s.mirrors) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		for _, m := range s.mirrors {
			mctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
			if err := m.SendNotification(mctx, n); err != nil {
				s.logger.Warn("Mirroring notification %s failed: %v", n.MessageID, err)
			}
			cancel()
		}
	}()
}

// Wait blocks until every in-flight mirror copy has finished.
func (s *NotificationService) Wait() {
	s.pending.Wait()
}

// NewMessageID returns "contact_<unix millis>_<8 hex chars>".
func NewMessageID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("contact_%d_%s", now.UnixMilli(), suffix)
}

// FormatTimestamp renders now for humans, always in UTC.
func FormatTimestamp(now time.Time) string {
	return now.UTC().Format(timestampLayout)
}

// BuildNotification is the single place submission fields are mapped into
// notification content. Both the HTML and text bodies render from its result.
func BuildNotification(messageID, timestamp string, sub validation.Submission) email.Notification {
	return email.Notification{
		Title:     "New Contact Form Submission",
		MessageID: messageID,
		Timestamp: timestamp,
		Fields: []email.Field{
			{Label: "Name", Value: sub.Name()},
			{Label: "Email", Value: sub.Email()},
			{Label: "Reason", Value: sub.ReasonLabel()},
			{Label: "Message", Value: sub.Message(), Multiline: true},
		},
		Footer: "Sent from the portfolio contact form. Reply to this email to answer " + sub.Name() + ".",
	}
}
