package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/osa911/portfolio/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "debug")
}

func recaptchaServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.Equal(t, "token", r.PostForm.Get("response"))
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRecaptchaService_ScoreThreshold(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		accept bool
	}{
		{"exactly threshold", `{"success":true,"score":0.5,"action":"contact"}`, true},
		{"just below threshold", `{"success":true,"score":0.499999}`, false},
		{"human", `{"success":true,"score":0.9}`, true},
		{"provider failure", `{"success":false,"score":0.9,"error-codes":["invalid-input-response"]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := recaptchaServer(t, http.StatusOK, tt.body)
			s := NewRecaptchaService(RecaptchaConfig{Secret: "secret", VerifyURL: srv.URL}, testLogger())

			res := s.Verify(context.Background(), "token", "203.0.113.7")
			assert.Equal(t, tt.accept, s.Accept(res))
			if !res.Success {
				assert.Zero(t, res.Score)
			}
		})
	}
}

func TestRecaptchaService_SendsRemoteIP(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		form = r.PostForm
		io.WriteString(w, `{"success":true,"score":0.7}`)
	}))
	defer srv.Close()

	s := NewRecaptchaService(RecaptchaConfig{Secret: "secret", VerifyURL: srv.URL}, testLogger())
	s.Verify(context.Background(), "token", "203.0.113.7")

	assert.Equal(t, "203.0.113.7", form.Get("remoteip"))
}

func TestRecaptchaService_FailsClosed(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := recaptchaServer(t, http.StatusInternalServerError, `{"success":true,"score":1}`)
		s := NewRecaptchaService(RecaptchaConfig{Secret: "secret", VerifyURL: srv.URL}, testLogger())
		assert.Equal(t, RecaptchaResult{}, s.Verify(context.Background(), "token", ""))
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := recaptchaServer(t, http.StatusOK, `not json`)
		s := NewRecaptchaService(RecaptchaConfig{Secret: "secret", VerifyURL: srv.URL}, testLogger())
		assert.Equal(t, RecaptchaResult{}, s.Verify(context.Background(), "token", ""))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		s := NewRecaptchaService(RecaptchaConfig{
			Secret:    "secret",
			VerifyURL: srv.URL,
			Timeout:   50 * time.Millisecond,
		}, testLogger())
		res := s.Verify(context.Background(), "token", "")
		assert.False(t, s.Accept(res))
		assert.Zero(t, res.Score)
	})

	t.Run("unreachable", func(t *testing.T) {
		s := NewRecaptchaService(RecaptchaConfig{Secret: "secret", VerifyURL: "http://127.0.0.1:1"}, testLogger())
		assert.False(t, s.Accept(s.Verify(context.Background(), "token", "")))
	})

	t.Run("missing token skips the call", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		s := NewRecaptchaService(RecaptchaConfig{Secret: "secret", VerifyURL: srv.URL}, testLogger())
		res := s.Verify(context.Background(), "  ", "")
		assert.False(t, res.Success)
		assert.False(t, called)
	})
}

func TestRecaptchaService_MissingSecret(t *testing.T) {
	dev := NewRecaptchaService(RecaptchaConfig{}, testLogger())
	res := dev.Verify(context.Background(), "", "")
	assert.True(t, res.Bypassed)
	assert.True(t, dev.Accept(res))
	assert.Equal(t, 1.0, res.Score)

	prod := NewRecaptchaService(RecaptchaConfig{Production: true}, testLogger())
	res = prod.Verify(context.Background(), "token", "")
	assert.False(t, prod.Accept(res))
	assert.Equal(t, RecaptchaResult{}, res)
}

func TestRecaptchaService_DefaultMinScore(t *testing.T) {
	s := NewRecaptchaService(RecaptchaConfig{Secret: "secret"}, testLogger())
	assert.Equal(t, DefaultRecaptchaMinScore, s.MinScore())
}
