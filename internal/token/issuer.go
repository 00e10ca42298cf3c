package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"studio-service/internal/models"
)

// Issuer mints short-lived attendance tokens. A session has at most one live
// token; issuing again overwrites the previous one at the storage layer.
type Issuer struct {
	ttl time.Duration
	now func() time.Time
}

func NewIssuer(ttl time.Duration) *Issuer {
	return &Issuer{ttl: ttl, now: time.Now}
}

// NewIssuerWithClock is for tests that need a deterministic clock.
func NewIssuerWithClock(ttl time.Duration, now func() time.Time) *Issuer {
	return &Issuer{ttl: ttl, now: now}
}

func (i *Issuer) Issue(sessionID string) (*models.AttendanceToken, error) {
	const op = "token.Issuer.Issue"

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.AttendanceToken{
		SessionID: sessionID,
		Token:     base64.RawURLEncoding.EncodeToString(buf),
		ExpiresAt: i.now().Add(i.ttl),
	}, nil
}
