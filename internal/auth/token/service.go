package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
)

// Fixed issuer/audience identifying the API and its client. Tokens signed
// for anything else are rejected regardless of signature validity.
const (
	Issuer   = "inventory-api"
	Audience = "inventory-ui"
)

// Claims is the token payload. The permission set is resolved at issuance;
// permission changes therefore require a re-login.
type Claims struct {
	Username    string              `json:"username"`
	Role        domain.Role         `json:"role"`
	Permissions []domain.Permission `json:"permissions"`
	jwt.RegisteredClaims
}

// Service signs and verifies bearer tokens. It holds no mutable state and is
// safe for concurrent use from any number of requests.
type Service struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewService builds a token service around the shared HMAC secret.
func NewService(secret string, ttl time.Duration, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{secret: []byte(secret), ttl: ttl, clock: clock}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for the user carrying the resolved permission set.
// exp is exactly iat + TTL.
func (s *Service) Issue(user *domain.User, permissions []domain.Permission) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		Username:    user.Username,
		Role:        user.Role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token. Expired tokens fail with
// ErrTokenExpired; a bad signature, issuer or audience fails with
// ErrTokenInvalid.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// VerifyExpired validates everything except expiry: signature, issuer and
// audience are still enforced. Used by the refresh flow, where the caller
// re-checks the underlying account before a new token is issued.
func (s *Service) VerifyExpired(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.Issuer != Issuer {
		return nil, domain.ErrTokenInvalid
	}
	if !containsAudience(claims.Audience, Audience) {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

func (s *Service) keyFunc(t *jwt.Token) (interface{}, error) {
	return s.secret, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
