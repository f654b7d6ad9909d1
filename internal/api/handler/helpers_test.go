package handler_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/api"
	"github.com/devcrm/crm-service/internal/api/handler"
	"github.com/devcrm/crm-service/internal/api/middleware"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

// newContext builds a request context. A non-nil body is sent as JSON.
func newContext(e *echo.Echo, method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// authenticate mimics the Auth middleware.
func authenticate(c echo.Context, userID, username string, roles ...string) {
	c.Set(middleware.KeyUserID, userID)
	c.Set(middleware.KeyUsername, username)
	c.Set(middleware.KeyRoles, roles)
	c.Set(middleware.KeyAuthorities, roles)
}

// serve runs h and renders any returned error the way the router does.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
}
