package auth

// User is a domain entity representing a registered account.
// The email is the unique identifier; the plaintext password never reaches it.
type User struct {
	Email        string
	PasswordHash string
}
