package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeRateLimited   = "rate_limited"
	OutcomeInvalid       = "invalid"
	OutcomeBotRejected   = "bot_rejected"
	OutcomeConfigError   = "config_error"
	OutcomeProviderError = "provider_error"
	OutcomeError         = "error"
)

// Metrics groups the contact pipeline collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	submissions      *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	recaptchaScores  prometheus.Histogram
	sweptEntries     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_submissions_total",
			Help: "Contact form submissions by pipeline outcome",
		}, []string{"outcome"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfolio_contact_dispatch_duration_seconds",
			Help:    "Time spent handing notifications to the email provider",
			Buckets: prometheus.DefBuckets,
		}),
		recaptchaScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfolio_recaptcha_score",
			Help:    "Scores returned by reCAPTCHA verification",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		sweptEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_ratelimit_swept_entries_total",
			Help: "Expired rate limit entries removed by the sweep task",
		}),
	}

	reg.MustRegister(m.submissions, m.dispatchDuration, m.recaptchaScores, m.sweptEntries)
	return m
}

func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRecaptchaScore(score float64) {
	if m == nil {
		return
	}
	m.recaptchaScores.Observe(score)
}

func (m *Metrics) AddSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptEntries.Add(float64(n))
}
