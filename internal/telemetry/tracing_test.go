package telemetry

import (
	"context"
	"io"
	"testing"

	"github.com/osa911/portfolio/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), Config{ServiceName: "portfolio-api"}, logging.NewWithWriter(io.Discard, "info"))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		insecure bool
	}{
		{"http://collector:4317", "collector:4317", true},
		{"https://otel.example.dev:4317", "otel.example.dev:4317", false},
		{"localhost:4317", "localhost:4317", true},
	}

	for _, tt := range tests {
		endpoint, insecure := splitEndpoint(tt.raw)
		if endpoint != tt.endpoint || insecure != tt.insecure {
			t.Errorf("splitEndpoint(%q) = %q, %v, want %q, %v", tt.raw, endpoint, insecure, tt.endpoint, tt.insecure)
		}
	}
}
