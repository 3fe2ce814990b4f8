package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACService_IssueAndValidate(t *testing.T) {
	svc := NewHMACService("s3cret", time.Hour)

	tok, exp, err := svc.Issue("  Ada Lovelace ")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", c.Profile)
	assert.Equal(t, "ada lovelace", c.Key())
	assert.NotEmpty(t, c.ID)
}

func TestHMACService_GuestWhenEmpty(t *testing.T) {
	svc := NewHMACService("s3cret", 0)
	tok, _, err := svc.Issue("")
	require.NoError(t, err)

	c, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "Guest", c.Profile)
	assert.Equal(t, "guest", c.Key())
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("s3cret", time.Minute)
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	tok, _, err := svc.Issue("ada")
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_Invalid(t *testing.T) {
	svc := NewHMACService("s3cret", time.Hour)
	other := NewHMACService("other", time.Hour)

	tok, _, err := other.Issue("ada")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", tok},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestHMACService_NoSecret(t *testing.T) {
	_, _, err := NewHMACService("", time.Hour).Issue("ada")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
