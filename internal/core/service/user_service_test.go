package service

import (
	"context"
	"errors"
	"testing"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

func newTestUserService(s *memStore) *UserService {
	svc := NewUserService(stubUserRepo{s}, stubRoleRepo{s}, &stubTx{}, stubAuditRepo{s}, discardLogger)
	svc.now = fixedClock
	return svc
}

// ---------------------------------------------------------------------------
// UpdateRole
// ---------------------------------------------------------------------------

func TestUserService_UpdateRole_ReplacesRoleSet(t *testing.T) {
	s := newMemStore()
	userRole := s.seedRole(domain.RoleUser, true)
	extra := s.seedRole("ROLE_EXTRA", false)
	sales := s.seedRole("ROLE_SALES", false)
	s.seedUser("root", s.seedRole(domain.RoleAdmin, true))
	u := s.seedUser("ada", userRole, extra)
	svc := newTestUserService(s)

	v, err := svc.UpdateRole(context.Background(), u.ID, sales.ID, "root")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Roles) != 1 || v.Roles[0].Name != "ROLE_SALES" {
		t.Fatalf("expected only ROLE_SALES, got %+v", v.Roles)
	}
	if v.Roles[0].UserCount != 1 {
		t.Fatalf("expected live count 1, got %d", v.Roles[0].UserCount)
	}
	if !v.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("expected updated_at bump, got %v", v.UpdatedAt)
	}
	if len(s.audit) != 1 || s.audit[0].Action != domain.AuditRoleAssigned {
		t.Fatalf("unexpected audit trail %+v", s.audit)
	}
}

func TestUserService_UpdateRole_SelfEscalation(t *testing.T) {
	s := newMemStore()
	admin := s.seedRole(domain.RoleAdmin, true)
	root := s.seedUser("root", admin)
	sales := s.seedRole("ROLE_SALES", false)
	svc := newTestUserService(s)

	for _, roleID := range []string{sales.ID, admin.ID, "missing"} {
		_, err := svc.UpdateRole(context.Background(), root.ID, roleID, "root")
		if !errors.Is(err, domain.ErrSelfEscalation) {
			t.Fatalf("role %s: expected ErrSelfEscalation, got %v", roleID, err)
		}
		if !errors.Is(err, domain.ErrAuthorization) {
			t.Fatalf("role %s: expected self escalation to be an authorization failure", roleID)
		}
	}
	if _, ok := s.userRoles[root.ID][admin.ID]; !ok || len(s.userRoles[root.ID]) != 1 {
		t.Fatalf("expected admin role set untouched, got %v", s.userRoles[root.ID])
	}
}

func TestUserService_UpdateRole_NotFound(t *testing.T) {
	s := newMemStore()
	sales := s.seedRole("ROLE_SALES", false)
	u := s.seedUser("ada")
	svc := newTestUserService(s)

	if _, err := svc.UpdateRole(context.Background(), "missing", sales.ID, "root"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for user, got %v", err)
	}
	if _, err := svc.UpdateRole(context.Background(), u.ID, "missing", "root"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for role, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// UpdatePreferences
// ---------------------------------------------------------------------------

func TestUserService_UpdatePreferences(t *testing.T) {
	s := newMemStore()
	ada := s.seedUser("ada")
	grace := s.seedUser("grace")
	svc := newTestUserService(s)

	tests := []struct {
		name      string
		target    string
		requester string
		isAdmin   bool
		wantErr   error
	}{
		{name: "own", target: ada.ID, requester: ada.ID},
		{name: "foreign non-admin", target: grace.ID, requester: ada.ID, wantErr: domain.ErrAuthorization},
		{name: "foreign admin", target: grace.ID, requester: ada.ID, isAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdatePreferences(context.Background(), ports.PreferencesInput{
				UserID:             tt.target,
				LanguagePreference: domain.LanguageBulgarian,
				RequestingUserID:   tt.requester,
				RequestingIsAdmin:  tt.isAdmin,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := s.users[tt.target].LanguagePreference; got != domain.LanguageBulgarian {
				t.Fatalf("expected bg, got %q", got)
			}
		})
	}
}

func TestUserService_UpdatePreferences_ForeignDoesNotMutate(t *testing.T) {
	s := newMemStore()
	ada := s.seedUser("ada")
	grace := s.seedUser("grace")
	svc := newTestUserService(s)

	_ = svc.UpdatePreferences(context.Background(), ports.PreferencesInput{
		UserID:             grace.ID,
		LanguagePreference: domain.LanguageBulgarian,
		RequestingUserID:   ada.ID,
	})
	if s.users[grace.ID].LanguagePreference != domain.DefaultLanguage {
		t.Fatal("expected foreign preferences to remain unchanged")
	}
}

func TestUserService_UpdatePreferences_InvalidLanguage(t *testing.T) {
	s := newMemStore()
	ada := s.seedUser("ada")
	svc := newTestUserService(s)

	err := svc.UpdatePreferences(context.Background(), ports.PreferencesInput{
		UserID:             ada.ID,
		LanguagePreference: "de",
		RequestingUserID:   ada.ID,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Profile and deletion
// ---------------------------------------------------------------------------

func TestUserService_UpdateProfile_Partial(t *testing.T) {
	s := newMemStore()
	ada := s.seedUser("ada")
	ada.FirstName = "Ada"
	ada.LastName = "Byron"
	svc := newTestUserService(s)

	last := "Lovelace"
	v, err := svc.UpdateProfile(context.Background(), ada.ID, domain.UserPatch{LastName: &last})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FirstName != "Ada" || v.LastName != "Lovelace" || v.Email != "ada@example.com" {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestUserService_UpdateProfile_EmailTaken(t *testing.T) {
	s := newMemStore()
	ada := s.seedUser("ada")
	s.seedUser("grace")
	svc := newTestUserService(s)

	email := "grace@example.com"
	_, err := svc.UpdateProfile(context.Background(), ada.ID, domain.UserPatch{Email: &email})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	s := newMemStore()
	role := s.seedRole("ROLE_SALES", false)
	root := s.seedUser("root")
	ada := s.seedUser("ada", role)
	svc := newTestUserService(s)

	if err := svc.Delete(context.Background(), root.ID, "root"); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization on self delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), ada.ID, "root"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.users[ada.ID]; ok {
		t.Fatal("expected user to be removed")
	}
	if _, ok := s.userRoles[ada.ID]; ok {
		t.Fatal("expected role memberships to be removed")
	}
}

func TestUserService_List(t *testing.T) {
	s := newMemStore()
	role := s.seedRole(domain.RoleUser, true)
	s.seedUser("b", role)
	s.seedUser("a", role)
	svc := newTestUserService(s)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].Username != "a" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[0].Roles[0].UserCount != 2 {
		t.Fatalf("expected live count 2, got %d", list[0].Roles[0].UserCount)
	}
}
