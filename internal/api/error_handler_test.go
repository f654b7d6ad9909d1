package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/api/handler"
	"github.com/devcrm/crm-service/internal/api/i18n"
	"github.com/devcrm/crm-service/internal/core/domain"
)

func renderError(t *testing.T, err error, acceptLanguage string) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/roles/r1", nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NotFound(domain.EntityRole, "r1"), http.StatusNotFound, "not_found"},
		{domain.Duplicate(domain.EntityRole, "ROLE_X"), http.StatusConflict, "duplicate"},
		{domain.BadCredentials(), http.StatusUnauthorized, "bad_credentials"},
		{&domain.Error{Kind: domain.ErrSelfEscalation, Reason: domain.ReasonOwnRole}, http.StatusForbidden, "own_role"},
		{&domain.Error{Kind: domain.ErrAuthorization, Reason: domain.ReasonForeignPreference}, http.StatusForbidden, "foreign_preferences"},
		{domain.InvalidLanguage("fr"), http.StatusUnprocessableEntity, "invalid_language"},
		{domain.Throttled("alice"), http.StatusTooManyRequests, "throttled"},
		{fmt.Errorf("update role: %w", domain.NotFound(domain.EntityRole, "r1")), http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		status, body := renderError(t, tc.err, "")
		if status != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, status)
		}
		if body.Code != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, body.Code)
		}
	}
}

func TestErrorHandler_Localized(t *testing.T) {
	_, en := renderError(t, domain.NotFound(domain.EntityRole, "r1"), "en-US")
	if en.Error != `role "r1" not found` {
		t.Fatalf("unexpected english message: %s", en.Error)
	}

	_, bg := renderError(t, domain.NotFound(domain.EntityRole, "r1"), "bg-BG,bg;q=0.9")
	if bg.Error != `роля "r1" не е намерен` {
		t.Fatalf("unexpected bulgarian message: %s", bg.Error)
	}
}

func TestErrorHandler_UnexpectedErrorIsGeneric(t *testing.T) {
	status, body := renderError(t, errors.New("connection reset by peer"), "")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body.Code != i18n.KeyInternal || body.Error != "internal server error" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestErrorHandler_HTTPErrors(t *testing.T) {
	status, body := renderError(t, echo.NewHTTPError(http.StatusForbidden, i18n.KeyForbidden), "bg")
	if status != http.StatusForbidden || body.Error != "достъпът е забранен" {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}

	status, body = renderError(t, echo.ErrNotFound, "")
	if status != http.StatusNotFound || body.Code != i18n.KeyRouteNotFound {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	status, body := renderError(t, &handler.ValidationError{Fields: []string{"name is required"}}, "")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	if body.Code != i18n.KeyValidationFailed || len(body.Details) != 1 || body.Details[0] != "name is required" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
