package webhook

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.Claims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestVerifier_Verify(t *testing.T) {
	const secret = "webhook-signing-secret"

	verifier := NewVerifier(secret)

	validClaims := jwt.RegisteredClaims{
		Issuer:    "provider",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}

	t.Run("valid token passes", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, secret, validClaims)

		assert.NoError(t, verifier.Verify(token))
	})

	t.Run("empty token rejected", func(t *testing.T) {
		assert.ErrorIs(t, verifier.Verify(""), ErrInvalidSignature)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, "some-other-secret", validClaims)

		assert.ErrorIs(t, verifier.Verify(token), ErrInvalidSignature)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})

		assert.ErrorIs(t, verifier.Verify(token), ErrInvalidSignature)
	})

	t.Run("unexpected signing method rejected", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS512, secret, validClaims)

		assert.ErrorIs(t, verifier.Verify(token), ErrInvalidSignature)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		assert.ErrorIs(t, verifier.Verify("not.a.jwt"), ErrInvalidSignature)
	})
}
