package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_Issue(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuerWithClock(6*time.Hour, func() time.Time { return now })

	tok, err := issuer.Issue("session-1")
	require.NoError(t, err)

	assert.Equal(t, "session-1", tok.SessionID)
	assert.NotEmpty(t, tok.Token)
	assert.Equal(t, now.Add(6*time.Hour), tok.ExpiresAt)
}

func TestIssuer_TokensAreUnique(t *testing.T) {
	issuer := NewIssuer(time.Hour)

	first, err := issuer.Issue("session-1")
	require.NoError(t, err)
	second, err := issuer.Issue("session-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestAttendanceToken_Validity(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuerWithClock(6*time.Hour, func() time.Time { return now })

	tok, err := issuer.Issue("session-1")
	require.NoError(t, err)

	assert.True(t, tok.Valid(now))
	assert.True(t, tok.Valid(now.Add(6*time.Hour-time.Minute)))
	assert.False(t, tok.Valid(now.Add(6*time.Hour)))
	assert.False(t, tok.Valid(now.Add(6*time.Hour+time.Minute)))
}
