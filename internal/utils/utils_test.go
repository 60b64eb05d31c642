package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, exp, err := GenerateToken(42, "jane@example.com", "secret", time.Hour)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), exp, 2)

	claims, err := VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.SubjectInt())
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestVerifyTokenFailures(t *testing.T) {
	token, _, err := GenerateToken(1, "a@example.com", "secret", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(token, "other-secret")
	assert.Error(t, err)

	_, err = VerifyToken(token, "")
	assert.Error(t, err)

	_, err = VerifyToken("not-a-token", "secret")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = VerifyToken(signed, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err = noSubject.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = VerifyToken(signed, "secret")
	assert.Error(t, err)
}

func TestGenerateTokenNeedsSecret(t *testing.T) {
	_, _, err := GenerateToken(1, "a@example.com", "", time.Hour)
	assert.Error(t, err)
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := UserIDFromContext(context.WithValue(context.Background(), CtxUserIDKey, int64(7)))
	assert.True(t, ok)
	assert.EqualValues(t, 7, id)
}
