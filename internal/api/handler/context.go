package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/i18n"
	"github.com/devcrm/crm-service/internal/api/middleware"
)

// principal returns the caller injected by the Auth middleware. A missing
// principal means the route was registered without Auth; reject with 401.
func principal(c echo.Context) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return middleware.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, i18n.KeyUnauthorized)
	}
	return p, nil
}

// bind decodes the request into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, i18n.KeyInvalidPayload).SetInternal(err)
	}
	return c.Validate(req)
}
