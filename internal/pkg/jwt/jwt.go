// Package jwt signs and verifies the auth-session token carried in the
// browser cookie, and moves verified claims through a request context.
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSigningKeyTooShort is returned when the HS512 key is under 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned for tokens past their exp claim.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned for malformed or tampered tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT issues and checks session tokens.
type JWT interface {
	Generate(sessionID, realm string) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config builds an HS512 implementation.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	UUID      generator
}

// Claims binds a token to one auth session in one realm. The session id is
// the registered subject.
type Claims struct {
	jwt.RegisteredClaims
	Realm string `json:"realm"`
}

// SessionID returns the subject claim.
func (c Claims) SessionID() string {
	return c.Subject
}

type claimsKey struct{}

// GetAuth returns the claims stored by SetAuth, or nil.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(claimsKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

// SetAuth stores verified claims on ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, clm)
}
