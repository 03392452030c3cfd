package tasks

import (
	"context"
	"time"

	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/metrics"
)

// Sweeper removes expired rate limit state.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// RateLimitSweep handles periodic cleaning of expired rate limit entries
type RateLimitSweep struct {
	sweeper  Sweeper
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewRateLimitSweep creates a new sweep task
func NewRateLimitSweep(sweeper Sweeper, interval time.Duration, m *metrics.Metrics, logger *logging.Logger) *RateLimitSweep {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &RateLimitSweep{
		sweeper:  sweeper,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

// Start begins the sweep task in the background. It stops when ctx is done.
func (s *RateLimitSweep) Start(ctx context.Context) {
	go s.Run(ctx)
}

// Run sweeps every interval until ctx is cancelled
func (s *RateLimitSweep) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Rate limit sweep stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *RateLimitSweep) sweep(ctx context.Context) {
	removed, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Warn("Rate limit sweep failed: %v", err)
		return
	}

	s.metrics.AddSwept(removed)
	if removed > 0 {
		s.logger.Debug("Rate limit sweep removed %d expired entries", removed)
	}
}
