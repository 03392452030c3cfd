package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osa911/portfolio/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio/internal/api/validation"
	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/metrics"
	"github.com/osa911/portfolio/internal/ratelimit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/osa911/portfolio/internal/service"

// RateLimiter counts submissions per identifier.
type RateLimiter interface {
	Check(ctx context.Context, identifier string) (ratelimit.Result, error)
}

// BotVerifier scores a client token.
type BotVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) RecaptchaResult
	Accept(r RecaptchaResult) bool
}

// Dispatcher delivers a validated submission.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub validation.Submission) (*DispatchResult, error)
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	Dispatch  *DispatchResult
	RateLimit ratelimit.Result
}

// ContactServiceOptions wires the pipeline stages.
type ContactServiceOptions struct {
	Limiter    RateLimiter
	Validator  *validation.Validator
	Bot        BotVerifier
	Dispatcher Dispatcher
	// BotCheck enables the reCAPTCHA stage.
	BotCheck bool
	Metrics  *metrics.Metrics
	Logger   *logging.Logger
}

// ContactService runs a submission through rate limit, validation, bot
// check and dispatch, stopping at the first stage that fails.
type ContactService struct {
	limiter    RateLimiter
	validator  *validation.Validator
	bot        BotVerifier
	dispatcher Dispatcher
	botCheck   bool
	metrics    *metrics.Metrics
	logger     *logging.Logger
	tracer     trace.Tracer
}

func NewContactService(opts ContactServiceOptions) *ContactService {
	v := opts.Validator
	if v == nil {
		v = validation.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &ContactService{
		limiter:    opts.Limiter,
		validator:  v,
		bot:        opts.Bot,
		dispatcher: opts.Dispatcher,
		botCheck:   opts.BotCheck && opts.Bot != nil,
		metrics:    opts.Metrics,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
}

// unknownIdentifier is the shared bucket for requests without a client address
const unknownIdentifier = "unknown"

// Submit processes one contact form submission from identifier. decode fills
// the raw request and runs after the rate check, so malformed bodies still
// count against the caller.
func (s *ContactService) Submit(ctx context.Context, identifier string, decode func(*contact.ContactRequest) error) (*SubmitResult, error) {
	if identifier == "" {
		identifier = unknownIdentifier
	}

	ctx, span := s.tracer.Start(ctx, "contact.submit", trace.WithAttributes(
		attribute.String("contact.identifier", identifier),
	))
	defer span.End()

	res, err := s.submit(ctx, identifier, decode)
	outcome := outcomeOf(err)
	s.metrics.ObserveOutcome(outcome)
	span.SetAttributes(attribute.String("contact.outcome", outcome))
	if err != nil && outcome == metrics.OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected error")
	}
	return res, err
}

func (s *ContactService) submit(ctx context.Context, identifier string, decode func(*contact.ContactRequest) error) (*SubmitResult, error) {
	rl, err := s.limiter.Check(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !rl.Allowed {
		s.logger.Warn("Rate limit exceeded for %s until %s", identifier, rl.ResetTime.Format(time.RFC3339))
		return nil, &RateLimitError{Limit: rl.Limit, ResetTime: rl.ResetTime}
	}

	var req contact.ContactRequest
	if err := decode(&req); err != nil {
		s.logger.Debug("Malformed contact body from %s: %v", identifier, err)
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	sub, err := s.validator.ValidateContact(req)
	if err != nil {
		var fields validation.FieldErrors
		if errors.As(err, &fields) {
			return nil, &ValidationError{Fields: fields}
		}
		return nil, err
	}

	if s.botCheck {
		remoteIP := identifier
		if identifier == unknownIdentifier {
			remoteIP = ""
		}
		result := s.bot.Verify(ctx, req.RecaptchaToken, remoteIP)
		if !result.Bypassed {
			s.metrics.ObserveRecaptchaScore(result.Score)
		}
		if !s.bot.Accept(result) {
			s.logger.Warn("Bot check rejected %s (success=%t score=%.2f codes=%v)",
				identifier, result.Success, result.Score, result.ErrorCodes)
			return nil, ErrBotCheckFailed
		}
	}

	start := time.Now()
	dispatch, err := s.dispatcher.Dispatch(ctx, sub)
	s.metrics.ObserveDispatch(time.Since(start))
	if err != nil {
		return nil, err
	}

	return &SubmitResult{Dispatch: dispatch, RateLimit: rl}, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}

	var rlErr *RateLimitError
	var valErr *ValidationError
	var provErr *ProviderError

	switch {
	case errors.As(err, &rlErr):
		return metrics.OutcomeRateLimited
	case errors.As(err, &valErr), errors.Is(err, ErrMalformedBody):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrBotCheckFailed):
		return metrics.OutcomeBotRejected
	case errors.Is(err, ErrConfiguration):
		return metrics.OutcomeConfigError
	case errors.As(err, &provErr):
		return metrics.OutcomeProviderError
	default:
		return metrics.OutcomeError
	}
}
