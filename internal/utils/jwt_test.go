package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "user-123", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	sub, err := VerifySubject(testSecret, tok.Token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	tok, err := NewRefreshToken(testSecret, "user-123", 7)
	require.NoError(t, err)

	_, err = VerifySubject(testSecret, tok.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The same token verifies fine against its own type.
	sub, err := VerifySubject(testSecret, tok.Token, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "user-123", -1)
	require.NoError(t, err)

	_, err = VerifySubject(testSecret, tok.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "user-123", 15)
	require.NoError(t, err)

	raw := tok.Token
	tampered := raw[:len(raw)-2] + "xx"
	_, err = VerifySubject(testSecret, tampered, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "user-123", 15)
	require.NoError(t, err)

	_, err = VerifySubject("another-secret", tok.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedTokensRejected(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d", "justonedot."} {
		_, err := VerifySubject(testSecret, raw, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestHashRefreshRawIsStable(t *testing.T) {
	a := HashRefreshRaw("some-token")
	b := HashRefreshRaw("some-token")
	c := HashRefreshRaw("other-token")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex sha256
}
