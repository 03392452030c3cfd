package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// CSRFService issues and checks double-submit tokens for the contact form.
type CSRFService interface {
	GenerateToken() (string, error)
	ValidateToken(cookie, header string) bool
}

type csrfService struct{}

func NewCSRFService() CSRFService {
	return &csrfService{}
}

// GenerateToken returns 32 random bytes, URL-safe base64 encoded.
func (s *csrfService) GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateToken reports whether the cookie and header tokens match.
func (s *csrfService) ValidateToken(cookie, header string) bool {
	if cookie == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}
