package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-signing-secret")

func TestIssueAndValidateRoundTrip(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)

	token, err := ti.Issue("acc-1", "alice01", []string{"Author", "Reviewer"})
	require.NoError(t, err)

	claims, err := ti.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "alice01", claims.Username)
	assert.Equal(t, []string{"Author", "Reviewer"}, claims.Roles)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestValidateExpiredToken(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)

	issued := time.Now()
	ti.now = func() time.Time { return issued }
	token, err := ti.IssueWithTTL("acc-1", "alice01", nil, time.Minute)
	require.NoError(t, err)

	// Still valid just before expiry.
	ti.now = func() time.Time { return issued.Add(59 * time.Second) }
	_, err = ti.Validate(token)
	require.NoError(t, err)

	// Expired once the clock passes issuance+ttl.
	ti.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = ti.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue("acc-1", "alice01", nil)
	require.NoError(t, err)

	other := NewTokenIssuer([]byte("a-different-secret"), time.Hour)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestValidateMalformedToken(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := ti.Validate(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}

func TestExpiredAndMalformedAreDistinct(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)

	issued := time.Now()
	ti.now = func() time.Time { return issued }
	token, err := ti.IssueWithTTL("acc-1", "alice01", nil, time.Second)
	require.NoError(t, err)

	ti.now = func() time.Time { return issued.Add(time.Minute) }
	_, expiredErr := ti.Validate(token)
	_, malformedErr := ti.Validate("garbage")

	assert.ErrorIs(t, expiredErr, ErrTokenExpired)
	assert.ErrorIs(t, malformedErr, ErrTokenMalformed)
	assert.NotErrorIs(t, expiredErr, ErrTokenMalformed)
}

func TestDefaultTTLApplied(t *testing.T) {
	ti := NewTokenIssuer(testSecret, 0)
	assert.Equal(t, DefaultTokenTTL, ti.ttl)
}
