package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/i18n"
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// Context keys populated by Auth.
const (
	KeyUserID      = "user_id"
	KeyUsername    = "username"
	KeyRoles       = "roles"
	KeyAuthorities = "authorities"
)

// TokenVerifier validates a bearer token and returns the identity it asserts.
type TokenVerifier interface {
	Verify(token string) (ports.Identity, error)
}

// IdentityResolver reloads the stored identity behind a token subject. It
// fails with domain.ErrAuthentication for removed or disabled accounts.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (ports.Identity, error)
}

// Principal is the authenticated caller of the current request.
type Principal struct {
	UserID      string
	Username    string
	Roles       []string
	Authorities []string
}

// HasAuthority reports whether the principal holds authority a.
func (p Principal) HasAuthority(a string) bool {
	for _, held := range p.Authorities {
		if held == a {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal holds the named role.
func (p Principal) HasRole(role string) bool {
	for _, held := range p.Roles {
		if held == role {
			return true
		}
	}
	return false
}

// PrincipalFrom returns the principal injected by Auth. ok is false when the
// request did not pass through Auth.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	username, _ := c.Get(KeyUsername).(string)
	if username == "" {
		return Principal{}, false
	}
	userID, _ := c.Get(KeyUserID).(string)
	roles, _ := c.Get(KeyRoles).([]string)
	authorities, _ := c.Get(KeyAuthorities).([]string)
	return Principal{UserID: userID, Username: username, Roles: roles, Authorities: authorities}, true
}

// Auth validates the bearer token, reloads its subject through resolver and
// injects the caller's current identity into the echo context and the request
// context. Only the subject of the token is trusted; roles and authorities
// come from the store.
func Auth(verifier TokenVerifier, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, i18n.KeyUnauthorized)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, i18n.KeyInvalidToken)
			}

			claimed, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, i18n.KeyInvalidToken).SetInternal(err)
			}

			identity, err := resolver.Resolve(c.Request().Context(), claimed.UserID)
			if errors.Is(err, domain.ErrAuthentication) {
				return echo.NewHTTPError(http.StatusUnauthorized, i18n.KeyInvalidToken).SetInternal(err)
			}
			if err != nil {
				return err
			}

			c.Set(KeyUserID, identity.UserID)
			c.Set(KeyUsername, identity.Username)
			c.Set(KeyRoles, identity.Roles)
			c.Set(KeyAuthorities, identity.Authorities)

			req := c.Request()
			c.SetRequest(req.WithContext(ports.ContextWithActor(req.Context(), identity.Username)))

			return next(c)
		}
	}
}
