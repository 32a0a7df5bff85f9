package auth

import "context"

// TokenGenerator abstracts token creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenGenerator interface {
	Generate(ctx context.Context, user User) (string, error)
}

// TokenValidator resolves a bearer token back to its subject (the user email).
type TokenValidator interface {
	Validate(token string) (string, error)
}

// PasswordHasher is a one-way, salted password hash.
// Verify must return false for a malformed hash rather than fail.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}
