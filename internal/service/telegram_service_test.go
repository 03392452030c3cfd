package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/osa911/portfolio/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramService_SendNotification(t *testing.T) {
	var got telegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := NewTelegramService("123:abc", "42", srv.URL+"/")
	n := BuildNotification("contact_1_abcdef12", "Monday, October 19, 2026 at 12:00 UTC", validSubmission(t))

	require.NoError(t, s.SendNotification(context.Background(), n))
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "<b>Name:</b> Ada Lovelace")
	assert.Contains(t, got.Text, "contact_1_abcdef12")
}

func TestTelegramService_Errors(t *testing.T) {
	assert.False(t, NewTelegramService("", "42", "").Enabled())
	assert.Error(t, NewTelegramService("", "", "").SendNotification(context.Background(), email.Notification{}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewTelegramService("123:abc", "42", srv.URL).SendNotification(context.Background(), email.Notification{})
	assert.EqualError(t, err, "telegram API returned status 401")

	err = NewTelegramService("123:secret", "42", "http://127.0.0.1:1").SendNotification(context.Background(), email.Notification{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestFormatTelegram_Escapes(t *testing.T) {
	out := formatTelegram(email.Notification{
		Title:  "New Contact Form Submission",
		Fields: []email.Field{{Label: "Message", Value: "<script>&", Multiline: true}},
	})
	assert.Contains(t, out, "&lt;script&gt;&amp;")
	assert.NotContains(t, out, "<script>")
}

type failingMirror struct {
	calls   int
	release chan struct{}
}

func (m *failingMirror) SendNotification(context.Context, email.Notification) error {
	if m.release != nil {
		<-m.release
	}
	m.calls++
	return errors.New("telegram down")
}

func TestNotificationService_MirrorFailureIsIgnored(t *testing.T) {
	mirror := &failingMirror{}
	s := NewNotificationService(&fakeMailer{id: "em_1"}, NotificationConfig{
		From: "contact@example.dev",
		To:   "me@example.dev",
	}, testLogger(), WithMirror(mirror))

	res, err := s.Dispatch(context.Background(), validSubmission(t))
	require.NoError(t, err)
	assert.Equal(t, "em_1", res.EmailID)

	s.Wait()
	assert.Equal(t, 1, mirror.calls)
}

func TestNotificationService_MirrorDoesNotBlockDispatch(t *testing.T) {
	mirror := &failingMirror{release: make(chan struct{})}
	s := NewNotificationService(&fakeMailer{id: "em_1"}, NotificationConfig{
		From: "contact@example.dev",
		To:   "me@example.dev",
	}, testLogger(), WithMirror(mirror))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Dispatch(ctx, validSubmission(t))
	require.NoError(t, err)
	cancel()

	close(mirror.release)
	s.Wait()
	assert.Equal(t, 1, mirror.calls)
}
