package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osa911/portfolio/internal/logging"
)

// DefaultRecaptchaMinScore is the lowest reCAPTCHA v3 score treated as human.
const DefaultRecaptchaMinScore = 0.5

const defaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaConfig configures the verifier.
type RecaptchaConfig struct {
	Secret    string
	VerifyURL string
	MinScore  float64
	Timeout   time.Duration
	// Production disables the empty-secret bypass.
	Production bool
}

// RecaptchaResult is the normalized outcome of a verification call.
type RecaptchaResult struct {
	Success    bool
	Score      float64
	Action     string
	Hostname   string
	ErrorCodes []string
	Bypassed   bool
}

// RecaptchaService handles reCAPTCHA verification
type RecaptchaService struct {
	cfg    RecaptchaConfig
	client *http.Client
	logger *logging.Logger
}

// NewRecaptchaService creates a new reCAPTCHA service
func NewRecaptchaService(cfg RecaptchaConfig, logger *logging.Logger) *RecaptchaService {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = defaultRecaptchaVerifyURL
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = DefaultRecaptchaMinScore
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	if cfg.Secret == "" {
		if cfg.Production {
			logger.Error("RECAPTCHA_SECRET_KEY is not set: every contact submission will be rejected")
		} else {
			logger.Warn("RECAPTCHA_SECRET_KEY is not set: bot check bypassed outside production")
		}
	}

	return &RecaptchaService{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// recaptchaResponse represents the response from Google's reCAPTCHA API
type recaptchaResponse struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

// Verify checks token with the verification service. It never returns an
// error: every failure path yields Success=false and Score=0.
func (s *RecaptchaService) Verify(ctx context.Context, token, remoteIP string) RecaptchaResult {
	if s.cfg.Secret == "" {
		if s.cfg.Production {
			return RecaptchaResult{}
		}
		return RecaptchaResult{Success: true, Score: 1.0, Bypassed: true}
	}

	if strings.TrimSpace(token) == "" {
		return RecaptchaResult{ErrorCodes: []string{"missing-input-response"}}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	data := url.Values{}
	data.Set("secret", s.cfg.Secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.VerifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		s.logger.Warn("reCAPTCHA request build failed: %v", err)
		return RecaptchaResult{}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("reCAPTCHA verification call failed: %v", err)
		return RecaptchaResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("reCAPTCHA verification returned status %d", resp.StatusCode)
		return RecaptchaResult{}
	}

	var result recaptchaResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&result); err != nil {
		s.logger.Warn("failed to parse reCAPTCHA response: %v", err)
		return RecaptchaResult{}
	}

	if !result.Success {
		return RecaptchaResult{
			Action:     result.Action,
			Hostname:   result.Hostname,
			ErrorCodes: result.ErrorCodes,
		}
	}

	return RecaptchaResult{
		Success:    true,
		Score:      result.Score,
		Action:     result.Action,
		Hostname:   result.Hostname,
		ErrorCodes: result.ErrorCodes,
	}
}

// Accept applies the score threshold.
func (s *RecaptchaService) Accept(r RecaptchaResult) bool {
	return r.Success && r.Score >= s.cfg.MinScore
}

// MinScore returns the configured threshold.
func (s *RecaptchaService) MinScore() float64 {
	return s.cfg.MinScore
}
