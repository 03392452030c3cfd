package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/osa911/portfolio/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio/internal/api/validation"
	"github.com/osa911/portfolio/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []*email.Message
	id   string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg *email.Message) (*email.SendResult, error) {
	m.sent = append(m.sent, msg)
	if m.err != nil {
		return nil, m.err
	}
	return &email.SendResult{ID: m.id}, nil
}

func validRequest() contact.ContactRequest {
	return contact.ContactRequest{
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		Reason:         contact.ReasonCollaboration,
		Message:        "I would love to build an engine together.",
		RecaptchaToken: "token",
	}
}

func validSubmission(t *testing.T) validation.Submission {
	t.Helper()
	sub, err := validation.New().ValidateContact(validRequest())
	require.NoError(t, err)
	return sub
}

func newNotificationService(m email.Mailer) *NotificationService {
	return NewNotificationService(m, NotificationConfig{
		From:     "contact@example.dev",
		FromName: "Portfolio Contact",
		To:       "me@example.dev",
	}, testLogger())
}

func TestNotificationService_Dispatch(t *testing.T) {
	mailer := &fakeMailer{id: "em_123"}
	s := newNotificationService(mailer)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	res, err := s.Dispatch(context.Background(), validSubmission(t))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^contact_1792411200000_[0-9a-f]{8}$`), res.MessageID)
	assert.Equal(t, "em_123", res.EmailID)
	assert.Equal(t, ContactETA, res.ETA)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "Portfolio Contact <contact@example.dev>", msg.From)
	assert.Equal(t, []string{"me@example.dev"}, msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "New contact: Project Collaboration from Ada Lovelace", msg.Subject)

	for _, body := range []string{msg.HTML, msg.Text} {
		assert.Contains(t, body, res.MessageID)
		assert.Contains(t, body, "Monday, October 19, 2026 at 12:00 UTC")
		assert.Contains(t, body, "Ada Lovelace")
		assert.Contains(t, body, "ada@example.com")
		assert.Contains(t, body, "Project Collaboration")
		assert.Contains(t, body, "I would love to build an engine together.")
	}
}

func TestNotificationService_MissingAddresses(t *testing.T) {
	mailer := &fakeMailer{}
	s := NewNotificationService(mailer, NotificationConfig{From: "contact@example.dev"}, testLogger())

	_, err := s.Dispatch(context.Background(), validSubmission(t))
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Empty(t, mailer.sent)
}

func TestNotificationService_ProviderNotConfigured(t *testing.T) {
	s := newNotificationService(&fakeMailer{err: email.ErrNotConfigured})

	_, err := s.Dispatch(context.Background(), validSubmission(t))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNotificationService_ProviderFailure(t *testing.T) {
	providerErr := &email.APIError{StatusCode: 403, Name: "validation_error", Message: "domain not verified"}
	s := newNotificationService(&fakeMailer{err: providerErr})

	_, err := s.Dispatch(context.Background(), validSubmission(t))

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "email", pe.Provider)
	assert.ErrorIs(t, err, providerErr)
	assert.False(t, errors.Is(err, ErrConfiguration))
}

func TestNewMessageID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewMessageID(now)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
