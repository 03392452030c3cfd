package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	engine := gin.New()
	engine.RemoteIPHeaders = RemoteIPHeaders
	require.NoError(t, engine.SetTrustedProxies(trusted))
	return engine
}

func TestGetRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		trusted []string
		headers map[string]string
		want    string
	}{
		{"real ip header from proxy", []string{"192.0.2.10"}, map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"real ip wins", []string{"192.0.2.10"}, map[string]string{"X-Real-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}, "203.0.113.7"},
		{"forwarded for through proxy", []string{"192.0.2.10"}, map[string]string{"X-Forwarded-For": "198.51.100.1"}, "198.51.100.1"},
		{"ipv6", []string{"192.0.2.10"}, map[string]string{"X-Real-IP": "2001:db8::1"}, "2001:db8::1"},
		{"garbage falls back", []string{"192.0.2.10"}, map[string]string{"X-Real-IP": "not-an-ip", "X-Forwarded-For": "nope"}, "192.0.2.10"},
		{"no headers", []string{"192.0.2.10"}, nil, "192.0.2.10"},
		{"untrusted peer real ip ignored", nil, map[string]string{"X-Real-IP": "203.0.113.7"}, "192.0.2.10"},
		{"untrusted peer forwarded for ignored", nil, map[string]string{"X-Forwarded-For": "10.0.0.3"}, "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := gin.CreateTestContextOnly(httptest.NewRecorder(), newEngine(t, tt.trusted))
			req := httptest.NewRequest("POST", "/api/v1/contact", nil)
			req.RemoteAddr = "192.0.2.10:54321"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			c.Request = req

			assert.Equal(t, tt.want, GetRealIP(c))
		})
	}
}
