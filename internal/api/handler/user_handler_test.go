package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/devcrm/crm-service/internal/api/handler"
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

type stubUserService struct {
	ports.UserService
	updateRoleFn        func(ctx context.Context, userID, roleID, actingAdmin string) (*ports.UserView, error)
	updatePreferencesFn func(ctx context.Context, input ports.PreferencesInput) error
	deleteFn            func(ctx context.Context, id, actingAdmin string) error
	getFn               func(ctx context.Context, id string) (*ports.UserView, error)
}

func (s *stubUserService) UpdateRole(ctx context.Context, userID, roleID, actingAdmin string) (*ports.UserView, error) {
	return s.updateRoleFn(ctx, userID, roleID, actingAdmin)
}

func (s *stubUserService) UpdatePreferences(ctx context.Context, input ports.PreferencesInput) error {
	return s.updatePreferencesFn(ctx, input)
}

func (s *stubUserService) Delete(ctx context.Context, id, actingAdmin string) error {
	return s.deleteFn(ctx, id, actingAdmin)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*ports.UserView, error) {
	return s.getFn(ctx, id)
}

func TestUserHandler_UpdateRole_PassesActingAdmin(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		updateRoleFn: func(ctx context.Context, userID, roleID, actingAdmin string) (*ports.UserView, error) {
			if userID != "u2" || roleID != "r1" || actingAdmin != "root" {
				t.Fatalf("unexpected args: %s %s %s", userID, roleID, actingAdmin)
			}
			return &ports.UserView{ID: userID, Username: "bob", Roles: []ports.RoleView{{ID: roleID, Name: "ROLE_SALES", UserCount: 1}}}, nil
		},
	}
	h := handler.NewUserHandler(stub)

	c, rec := newContext(e, http.MethodPut, "/api/users/u2/role", strings.NewReader(`{"role_id":"r1"}`))
	c.SetParamNames("id")
	c.SetParamValues("u2")
	authenticate(c, "u1", "root", domain.RoleAdmin)
	serve(e, c, h.UpdateRole)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Roles []struct {
			Name      string `json:"name"`
			UserCount int64  `json:"user_count"`
		} `json:"roles"`
	}
	decode(t, rec, &resp)
	if len(resp.Roles) != 1 || resp.Roles[0].Name != "ROLE_SALES" || resp.Roles[0].UserCount != 1 {
		t.Fatalf("unexpected roles: %+v", resp.Roles)
	}
}

func TestUserHandler_UpdateRole_SelfEscalation(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		updateRoleFn: func(ctx context.Context, userID, roleID, actingAdmin string) (*ports.UserView, error) {
			return nil, domain.CheckRoleAssignment(domain.User{Username: actingAdmin}, actingAdmin)
		},
	}
	h := handler.NewUserHandler(stub)

	c, rec := newContext(e, http.MethodPut, "/api/users/u1/role", strings.NewReader(`{"role_id":"r1"}`))
	c.SetParamNames("id")
	c.SetParamValues("u1")
	authenticate(c, "u1", "root", domain.RoleAdmin)
	serve(e, c, h.UpdateRole)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["code"] != "own_role" {
		t.Fatalf("unexpected code: %v", resp["code"])
	}
}

func TestUserHandler_UpdateRole_Unauthenticated(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		updateRoleFn: func(ctx context.Context, userID, roleID, actingAdmin string) (*ports.UserView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := handler.NewUserHandler(stub)

	c, rec := newContext(e, http.MethodPut, "/api/users/u1/role", strings.NewReader(`{"role_id":"r1"}`))
	serve(e, c, h.UpdateRole)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUserHandler_UpdatePreferences_RequestingIdentity(t *testing.T) {
	cases := []struct {
		name    string
		roles   []string
		isAdmin bool
	}{
		{"user", []string{domain.RoleUser}, false},
		{"admin", []string{domain.RoleAdmin}, true},
	}
	for _, tc := range cases {
		e := newEcho()
		stub := &stubUserService{
			updatePreferencesFn: func(ctx context.Context, in ports.PreferencesInput) error {
				if in.UserID != "u2" || in.RequestingUserID != "u1" || in.LanguagePreference != "bg" {
					t.Fatalf("%s: unexpected input: %+v", tc.name, in)
				}
				if in.RequestingIsAdmin != tc.isAdmin {
					t.Fatalf("%s: expected admin=%v", tc.name, tc.isAdmin)
				}
				return nil
			},
		}
		h := handler.NewUserHandler(stub)

		c, rec := newContext(e, http.MethodPatch, "/api/users/u2/preferences", strings.NewReader(`{"language_preference":"bg"}`))
		c.SetParamNames("id")
		c.SetParamValues("u2")
		authenticate(c, "u1", "alice", tc.roles...)
		serve(e, c, h.UpdatePreferences)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", tc.name, rec.Code)
		}
	}
}

func TestUserHandler_UpdatePreferences_Foreign(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		updatePreferencesFn: func(ctx context.Context, in ports.PreferencesInput) error {
			return domain.CheckPreferenceUpdate(in.UserID, in.RequestingUserID, in.RequestingIsAdmin)
		},
	}
	h := handler.NewUserHandler(stub)

	c, rec := newContext(e, http.MethodPatch, "/api/users/u2/preferences", strings.NewReader(`{"language_preference":"en"}`))
	c.Request().Header.Set("Accept-Language", "bg")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	authenticate(c, "u1", "alice", domain.RoleUser)
	serve(e, c, h.UpdatePreferences)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["error"] != "можете да променяте само собствените си предпочитания" {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestUserHandler_Delete_PassesActingAdmin(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id, actingAdmin string) error {
			if id != "u2" || actingAdmin != "root" {
				t.Fatalf("unexpected args: %s %s", id, actingAdmin)
			}
			return nil
		},
	}
	h := handler.NewUserHandler(stub)

	c, rec := newContext(e, http.MethodDelete, "/api/users/u2", nil)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	authenticate(c, "u1", "root", domain.RoleAdmin)
	serve(e, c, h.Delete)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
