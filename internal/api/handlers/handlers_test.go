package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/osa911/portfolio/internal/api/constants"
	"github.com/osa911/portfolio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		deps map[string]Pinger
		want int
	}{
		{"no dependencies", nil, http.StatusOK},
		{"redis up", map[string]Pinger{"redis": pingerFunc(func(context.Context) error { return nil })}, http.StatusOK},
		{"redis down", map[string]Pinger{"redis": pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") })}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.deps).Check)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.want, w.Code)
			assert.NotContains(t, w.Body.String(), "refused")
		})
	}
}

func TestCSRFHandler_Issue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/csrf", NewCSRFHandler(service.NewCSRFService(), true).Issue)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body CSRFTokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.CookieCSRF, cookies[0].Name)
	assert.Equal(t, body.Token, cookies[0].Value)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}
