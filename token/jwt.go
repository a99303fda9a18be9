// Package token signs and verifies HS256 JSON Web Tokens exchanged with the document server.
package token

import (
	"errors"

	"github.com/code19m/errx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CodeInvalidSecret = "INVALID_SECRET"
	CodeExpiredToken  = "EXPIRED_TOKEN"
	CodeInvalidToken  = "INVALID_TOKEN"
)

// HS256Signer signs arbitrary JSON objects with a shared HMAC-SHA256 secret.
type HS256Signer struct {
	secret []byte
}

// NewHS256Signer creates a new HS256Signer. The secret must not be empty.
func NewHS256Signer(secret string) (*HS256Signer, error) {
	if secret == "" {
		return nil, errx.New("secret must not be empty", errx.WithCode(CodeInvalidSecret))
	}
	return &HS256Signer{secret: []byte(secret)}, nil
}

// Sign encodes claims as the token payload without adding any registered claims.
func (s *HS256Signer) Sign(claims map[string]any) (string, error) {
	if claims == nil {
		claims = map[string]any{}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString(s.secret)
	if err != nil {
		return "", errx.Wrap(err)
	}
	return token, nil
}

// Verify checks the token signature and the exp/nbf claims when present.
func (s *HS256Signer) Verify(token string) (map[string]any, error) {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errx.New("unexpected signing method", errx.WithCode(CodeInvalidToken))
		}
		return s.secret, nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errx.New("token is expired", errx.WithCode(CodeExpiredToken))
		}
		return nil, errx.Wrap(err, errx.WithCode(CodeInvalidToken))
	}

	return claims, nil
}
