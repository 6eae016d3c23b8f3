package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "alice", "student", time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "student", claims.Role)

	id, err := UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "alice", "student", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "alice", "student", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenHashStable(t *testing.T) {
	raw, hash, err := NewRefreshToken()
	require.NoError(t, err)
	assert.Len(t, raw, 64)
	assert.Equal(t, hash, HashRefreshRaw(raw))

	raw2, hash2, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, hash, hash2)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
