package auth

import (
	"context"
	"errors"
	"fmt"
)

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

// Authenticator resolves the user behind a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (User, error)
}

type AuthResult struct {
	User  User
	Token string
}

// Service implements both AuthUseCase and Authenticator.
type Service struct {
	repo      UserRepository
	hasher    PasswordHasher
	tokens    TokenGenerator
	validator TokenValidator
}

// NewAuthService returns default implementation of AuthUseCase and Authenticator.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenGenerator, validator TokenValidator) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, validator: validator}
}

func (s *Service) Register(ctx context.Context, email, password string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	// If user exists, fail fast; the store's unique key catches the race.
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return AuthResult{}, ErrUserAlreadyExists
	case !errors.Is(err, ErrNotFound):
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{Email: email, PasswordHash: passwordHash}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return AuthResult{}, ErrUserAlreadyExists
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

// Authenticate validates the token and loads its subject. A bad token and an
// unknown subject are indistinguishable to the caller: both wrap ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	email, err := s.validator.Validate(token)
	if err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return user, nil
}
