package ports

import "context"

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Username           string
	Email              string
	Password           string
	FirstName          string
	LastName           string
	LanguagePreference string // empty selects the default language
}

// AuthResult is the identity+token projection returned by register and login.
type AuthResult struct {
	Token              string
	TokenType          string
	UserID             string
	Username           string
	Email              string
	FirstName          string
	LastName           string
	Roles              []string
	LanguagePreference string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	// Resolve reloads the current identity of a token subject.
	Resolve(ctx context.Context, userID string) (Identity, error)
}
