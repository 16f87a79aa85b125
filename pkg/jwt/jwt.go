package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the payload structure of a JWT issued by the blog
// platform's auth boundary.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Verifier validates RS256 tokens against injected key material. The key
// source is a parameter, never ambient global state; the JWKS-backed
// constructor refreshes cached keys in the background rather than fetching
// once and caching forever.
type Verifier struct {
	keyFunc jwt.Keyfunc
}

func NewVerifier(keyFunc jwt.Keyfunc) *Verifier {
	return &Verifier{keyFunc: keyFunc}
}

// NewJWKSVerifier builds a verifier that fetches public keys from the blog
// platform's JWKS endpoint.
func NewJWKSVerifier(ctx context.Context, jwksURL string) (*Verifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return NewVerifier(k.Keyfunc), nil
}

// Verify parses and validates a token and returns its Claims if valid.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.keyFunc(t)
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("token expired")
	}

	if claims.UserID == 0 {
		return nil, errors.New("token is missing required field user_id")
	}

	return claims, nil
}
