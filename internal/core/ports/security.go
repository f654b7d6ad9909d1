package ports

import "context"

// Identity is what a bearer token asserts about its holder.
type Identity struct {
	UserID      string
	Username    string
	Roles       []string
	Authorities []string
}

// TokenService mints opaque bearer tokens.
type TokenService interface {
	Issue(identity Identity) (string, error)
}

// PasswordHasher turns a plaintext secret into an opaque stored credential.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// Authenticator verifies credentials and returns the authenticated username.
// Invalid credentials yield a domain authentication error.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// LoginThrottle tracks failed logins per username.
type LoginThrottle interface {
	Allow(ctx context.Context, username string) (bool, error)
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

type actorContextKey struct{}

// ContextWithActor records the username performing the current operation.
func ContextWithActor(ctx context.Context, username string) context.Context {
	if username == "" {
		return ctx
	}
	return context.WithValue(ctx, actorContextKey{}, username)
}

// ActorFromContext returns the acting username, or "" when unauthenticated.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(actorContextKey{}).(string)
	return v
}
