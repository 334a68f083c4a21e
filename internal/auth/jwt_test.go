package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifier_UserID(t *testing.T) {
	v := NewVerifier("secret")

	userID, err := v.UserID(signToken(t, "secret", "u1", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestVerifier_Rejections(t *testing.T) {
	v := NewVerifier("secret")

	_, err := v.UserID(signToken(t, "wrong-secret", "u1", time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.UserID(signToken(t, "secret", "u1", -time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.UserID(signToken(t, "secret", "", time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.UserID("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
