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

type stubRoleService struct {
	ports.RoleService
	createFn        func(ctx context.Context, input ports.RoleInput) (*ports.RoleView, error)
	deleteFn        func(ctx context.Context, id string) error
	setPrivilegesFn func(ctx context.Context, roleID string, ids []string) (*ports.RoleView, error)
	addPrivilegeFn  func(ctx context.Context, roleID, privilegeID string) (*ports.RoleView, error)
}

func (s *stubRoleService) Create(ctx context.Context, input ports.RoleInput) (*ports.RoleView, error) {
	return s.createFn(ctx, input)
}

func (s *stubRoleService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubRoleService) SetPrivileges(ctx context.Context, roleID string, ids []string) (*ports.RoleView, error) {
	return s.setPrivilegesFn(ctx, roleID, ids)
}

func (s *stubRoleService) AddPrivilege(ctx context.Context, roleID, privilegeID string) (*ports.RoleView, error) {
	return s.addPrivilegeFn(ctx, roleID, privilegeID)
}

func TestRoleHandler_Create_Success(t *testing.T) {
	e := newEcho()
	stub := &stubRoleService{
		createFn: func(ctx context.Context, in ports.RoleInput) (*ports.RoleView, error) {
			return &ports.RoleView{ID: "r1", Name: in.Name, Description: in.Description}, nil
		},
	}
	h := handler.NewRoleHandler(stub)

	c, rec := newContext(e, http.MethodPost, "/api/roles", strings.NewReader(`{"name":"ROLE_SALES","description":"Sales team"}`))
	serve(e, c, h.Create)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["name"] != "ROLE_SALES" || resp["system_role"] != false || resp["user_count"] != float64(0) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestRoleHandler_Create_RejectsBadName(t *testing.T) {
	e := newEcho()
	stub := &stubRoleService{
		createFn: func(ctx context.Context, in ports.RoleInput) (*ports.RoleView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := handler.NewRoleHandler(stub)

	for _, name := range []string{"sales", "ROLE_sales", "ROLE_", "SALES"} {
		c, rec := newContext(e, http.MethodPost, "/api/roles", strings.NewReader(`{"name":"`+name+`"}`))
		serve(e, c, h.Create)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", name, rec.Code)
		}
	}
}

func TestRoleHandler_Delete_InUse(t *testing.T) {
	e := newEcho()
	stub := &stubRoleService{
		deleteFn: func(ctx context.Context, id string) error {
			return &domain.Error{Kind: domain.ErrConflict, Reason: domain.ReasonRoleInUse, Entity: domain.EntityRole, Key: "ROLE_SALES", Count: 2}
		},
	}
	h := handler.NewRoleHandler(stub)

	c, rec := newContext(e, http.MethodDelete, "/api/roles/r1", nil)
	c.SetParamNames("id")
	c.SetParamValues("r1")
	serve(e, c, h.Delete)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["error"] != `role "ROLE_SALES" is assigned to 2 user(s)` {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestRoleHandler_SetPrivileges_EmptyListClears(t *testing.T) {
	e := newEcho()
	var got []string
	stub := &stubRoleService{
		setPrivilegesFn: func(ctx context.Context, roleID string, ids []string) (*ports.RoleView, error) {
			got = ids
			return &ports.RoleView{ID: roleID, Name: "ROLE_SALES"}, nil
		},
	}
	h := handler.NewRoleHandler(stub)

	c, rec := newContext(e, http.MethodPut, "/api/roles/r1/privileges", strings.NewReader(`{"privilege_ids":[]}`))
	c.SetParamNames("id")
	c.SetParamValues("r1")
	serve(e, c, h.SetPrivileges)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty id list, got %v", got)
	}
}

func TestRoleHandler_SetPrivileges_MissingList(t *testing.T) {
	e := newEcho()
	stub := &stubRoleService{
		setPrivilegesFn: func(ctx context.Context, roleID string, ids []string) (*ports.RoleView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := handler.NewRoleHandler(stub)

	c, rec := newContext(e, http.MethodPut, "/api/roles/r1/privileges", strings.NewReader(`{}`))
	c.SetParamNames("id")
	c.SetParamValues("r1")
	serve(e, c, h.SetPrivileges)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestRoleHandler_AddPrivilege_UnknownPrivilege(t *testing.T) {
	e := newEcho()
	stub := &stubRoleService{
		addPrivilegeFn: func(ctx context.Context, roleID, privilegeID string) (*ports.RoleView, error) {
			if roleID != "r1" || privilegeID != "p9" {
				t.Fatalf("unexpected args: %s %s", roleID, privilegeID)
			}
			return nil, domain.NotFound(domain.EntityPrivilege, privilegeID)
		},
	}
	h := handler.NewRoleHandler(stub)

	c, rec := newContext(e, http.MethodPost, "/api/roles/r1/privileges/p9", nil)
	c.SetParamNames("id", "privilegeId")
	c.SetParamValues("r1", "p9")
	serve(e, c, h.AddPrivilege)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
