package webhook

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier checks the HS256-signed bearer token the provider attaches to
// webhook deliveries. Payloads with a missing or forged token are dropped
// before dispatch.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) error {
	if tokenString == "" {
		return ErrInvalidSignature
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	if !token.Valid {
		return ErrInvalidSignature
	}

	return nil
}
