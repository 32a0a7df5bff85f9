package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artem13815/docqa/pkg/auth"
)

// Validation failures. Each wraps auth.ErrUnauthenticated.
var (
	ErrTokenMalformed      = fmt.Errorf("%w: malformed token", auth.ErrUnauthenticated)
	ErrTokenSignature      = fmt.Errorf("%w: invalid token signature", auth.ErrUnauthenticated)
	ErrTokenExpired        = fmt.Errorf("%w: token expired", auth.ErrUnauthenticated)
	ErrTokenMissingSubject = fmt.Errorf("%w: token has no subject", auth.ErrUnauthenticated)
)

// ErrEmptySecret is returned by NewService when no signing secret is configured.
var ErrEmptySecret = errors.New("jwt: signing secret is empty")

// Service issues and validates HS256 access tokens whose subject is the user email.
// Expiry is checked against the wall clock with no leeway.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for subject that expires ttl from now.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Generate implements auth.TokenGenerator with the configured TTL.
func (s *Service) Generate(_ context.Context, user auth.User) (string, error) {
	return s.Issue(user.Email, s.ttl)
}

// Validate verifies signature and expiry and returns the token subject.
func (s *Service) Validate(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", classify(err)
	}
	if !token.Valid {
		return "", ErrTokenMalformed
	}
	if claims.Subject == "" {
		return "", ErrTokenMissingSubject
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrTokenSignature, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}
