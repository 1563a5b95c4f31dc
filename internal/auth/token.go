package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultAccessTTL = 24 * time.Hour

	// refreshTTLFactor fixes the refresh lifetime at seven times the
	// access lifetime; it is derived, never configured on its own.
	refreshTTLFactor = 7

	refreshTokenType = "refresh"
)

// Claims is the token payload. TokenType is omitted on access tokens and
// holds the literal "refresh" on refresh tokens; all other validation rules
// are identical between the two kinds.
type Claims struct {
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS512-signed bearer tokens. It is
// stateless: the signing key is fixed at construction and the service is safe
// for concurrent use.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithTokenClock overrides the time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService builds a token service around the configured secret. The
// secret string is used directly as key bytes, so any process configured with
// the same string verifies tokens signed by another.
func NewTokenService(secret string, opts ...TokenOption) *TokenService {
	svc := &TokenService{
		secret:    []byte(secret),
		accessTTL: defaultAccessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// IssueAccessToken signs a token for the given subject email, expiring one
// access lifetime from now.
func (s *TokenService) IssueAccessToken(email string) (string, time.Time, error) {
	return s.issue(email, s.accessTTL, "")
}

// IssueRefreshToken signs a refresh-kind token for the given subject email,
// expiring seven access lifetimes from now.
func (s *TokenService) IssueRefreshToken(email string) (string, time.Time, error) {
	return s.issue(email, s.accessTTL*refreshTTLFactor, refreshTokenType)
}

func (s *TokenService) issue(email string, ttl time.Duration, tokenType string) (string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", time.Time{}, errors.New("subject email is required")
	}
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate reports whether the token carries a good signature and has not
// expired. The result is a uniform boolean: malformed structure, wrong
// algorithm, bad signature, and expiry are indistinguishable to the caller.
// Expiry is strict: a token whose exp equals the current instant is expired.
func (s *TokenService) Validate(token string) bool {
	_, err := s.parse(token)
	return err == nil
}

// Subject returns the subject email of the token. It fails with
// ErrTokenDecode on any token that does not parse and verify; callers on
// untrusted paths must call Validate first.
func (s *TokenService) Subject(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsRefreshToken reports whether the type claim is present and equals
// "refresh". An absent claim means access; it is never an error.
func (s *TokenService) IsRefreshToken(token string) bool {
	claims, err := s.parse(token)
	if err != nil {
		return false
	}
	return claims.TokenType == refreshTokenType
}

func (s *TokenService) parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenDecode
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, ErrTokenDecode
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrTokenDecode
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenDecode
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenDecode
	}
	return claims, nil
}
