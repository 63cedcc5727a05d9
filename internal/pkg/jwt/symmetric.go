package jwt

import (
	"errors"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric signs with HMAC-SHA512.
type Symmetric struct {
	cfg    Config
	parser *libJWT.Parser
}

func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{
		cfg: cfg,
		parser: libJWT.NewParser(
			libJWT.WithIssuer(cfg.Issuer),
			libJWT.WithAudience(cfg.Audiences...),
			libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
			libJWT.WithIssuedAt(),
			libJWT.WithExpirationRequired(),
			libJWT.WithTimeFunc(cfg.Clock.Now),
		),
	}, nil
}

func (s *Symmetric) Generate(sessionID, realm string) (string, error) {
	now := s.cfg.Clock.Now()

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.cfg.UUID.Generate(),
			Subject:   sessionID,
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		Realm: realm,
	}).SignedString(s.cfg.Secret)
}

func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := s.parser.ParseWithClaims(tokenStr, &claims, func(*libJWT.Token) (any, error) {
		return s.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
