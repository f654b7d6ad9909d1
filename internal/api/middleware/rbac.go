package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/i18n"
)

// RequireAuthority admits callers holding at least one of the given
// authorities. Role names and privilege names are both authorities.
func RequireAuthority(anyOf ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(anyOf))
	for _, a := range anyOf {
		allowed[a] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, i18n.KeyUnauthorized)
			}
			for _, a := range p.Authorities {
				if _, ok := allowed[a]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, i18n.KeyForbidden)
		}
	}
}
