package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
	"github.com/devcrm/crm-service/internal/infrastructure/security"
)

type routerRoles struct{ ports.RoleService }

func (routerRoles) List(context.Context) ([]ports.RoleView, error) { return []ports.RoleView{}, nil }

func (routerRoles) Privileges(context.Context, string) ([]ports.PrivilegeView, error) {
	return []ports.PrivilegeView{}, nil
}

type routerPrivileges struct{ ports.PrivilegeService }

func (routerPrivileges) List(context.Context) ([]ports.PrivilegeView, error) {
	return []ports.PrivilegeView{}, nil
}

func (routerPrivileges) Categories(context.Context) ([]string, error) { return []string{"ROLES"}, nil }

type routerCustomers struct{ ports.CustomerService }

func (routerCustomers) List(context.Context) ([]ports.CustomerView, error) {
	return []ports.CustomerView{}, nil
}

type routerUsers struct{ ports.UserService }

func (routerUsers) UpdatePreferences(context.Context, ports.PreferencesInput) error { return nil }

// routerAuth resolves token subjects from an in-memory account table.
type routerAuth struct {
	ports.AuthService
	identities map[string]ports.Identity
}

func (a *routerAuth) Resolve(_ context.Context, userID string) (ports.Identity, error) {
	identity, ok := a.identities[userID]
	if !ok {
		return ports.Identity{}, &domain.Error{Kind: domain.ErrAuthentication, Reason: domain.ReasonAccountRemoved, Key: userID}
	}
	return identity, nil
}

type testRouter struct {
	e      *echo.Echo
	tokens *security.TokenService
	auth   *routerAuth
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	tokens := security.NewTokenService("secret", time.Hour)
	auth := &routerAuth{identities: make(map[string]ports.Identity)}
	e := NewRouter(Dependencies{
		Auth:       auth,
		Customers:  routerCustomers{},
		Roles:      routerRoles{},
		Privileges: routerPrivileges{},
		Users:      routerUsers{},
		Tokens:     tokens,
		Log:        zerolog.Nop(),
	})
	return &testRouter{e: e, tokens: tokens, auth: auth}
}

// bearer stores an account with the given authorities and returns a header
// carrying a token for it.
func (r *testRouter) bearer(t *testing.T, userID string, authorities ...string) string {
	t.Helper()
	var roles []string
	for _, a := range authorities {
		if strings.HasPrefix(a, "ROLE_") {
			roles = append(roles, a)
		}
	}
	identity := ports.Identity{UserID: userID, Username: "user-" + userID, Roles: roles, Authorities: authorities}
	r.auth.identities[userID] = identity
	token, err := r.tokens.Issue(identity)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(e *echo.Echo, method, target, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Guards(t *testing.T) {
	r := newTestRouter(t)
	user := r.bearer(t, "u1", domain.RoleUser, domain.PrivilegeReadCustomers)
	admin := r.bearer(t, "u2", domain.RoleAdmin, domain.PrivilegeSystemAdmin)
	roleReader := r.bearer(t, "u3", domain.RoleUser, domain.PrivilegeReadRoles)

	cases := []struct {
		name   string
		method string
		target string
		auth   string
		body   string
		want   int
	}{
		{"customers need a token", http.MethodGet, "/api/customers", "", "", http.StatusUnauthorized},
		{"customers open to users", http.MethodGet, "/api/customers", user, "", http.StatusOK},
		{"roles need admin", http.MethodGet, "/api/roles", user, "", http.StatusForbidden},
		{"roles for admin", http.MethodGet, "/api/roles", admin, "", http.StatusOK},
		{"role privileges readable with READ_ROLES", http.MethodGet, "/api/roles/r1/privileges", roleReader, "", http.StatusOK},
		{"role privilege writes need manage", http.MethodPut, "/api/roles/r1/privileges", roleReader, `{"privilege_ids":[]}`, http.StatusForbidden},
		{"privileges readable with READ_ROLES", http.MethodGet, "/api/privileges", roleReader, "", http.StatusOK},
		{"categories route is static", http.MethodGet, "/api/privileges/categories", admin, "", http.StatusOK},
		{"privilege writes need SYSTEM_ADMIN", http.MethodPost, "/api/privileges", roleReader, `{"name":"X_Y"}`, http.StatusForbidden},
		{"users need admin", http.MethodGet, "/api/users", user, "", http.StatusForbidden},
		{"preferences need only a token", http.MethodPatch, "/api/users/u1/preferences", user, `{"language_preference":"en"}`, http.StatusNoContent},
	}
	for _, tc := range cases {
		rec := doRequest(r.e, tc.method, tc.target, tc.auth, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_TokensFollowStoredAccount(t *testing.T) {
	r := newTestRouter(t)
	admin := r.bearer(t, "u1", domain.RoleAdmin, domain.PrivilegeSystemAdmin)

	if rec := doRequest(r.e, http.MethodGet, "/api/roles", admin, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 before demotion, got %d", rec.Code)
	}

	r.auth.identities["u1"] = ports.Identity{
		UserID: "u1", Username: "user-u1", Roles: []string{domain.RoleUser}, Authorities: []string{domain.RoleUser},
	}
	if rec := doRequest(r.e, http.MethodGet, "/api/roles", admin, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after demotion, got %d", rec.Code)
	}

	delete(r.auth.identities, "u1")
	if rec := doRequest(r.e, http.MethodGet, "/api/customers", admin, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after deletion, got %d", rec.Code)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	r := newTestRouter(t)

	for _, target := range []string{"/api/health", "/api/health/ready", "/api/info", "/metrics"} {
		rec := doRequest(r.e, http.MethodGet, target, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}
