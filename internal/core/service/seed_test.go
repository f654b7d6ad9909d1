package service

import (
	"context"
	"testing"

	"github.com/devcrm/crm-service/internal/core/domain"
)

func newTestSeeder(s *memStore) *Seeder {
	seeder := NewSeeder(stubUserRepo{s}, stubRoleRepo{s}, stubPrivilegeRepo{s}, &stubTx{}, stubHasher{}, discardLogger)
	seeder.now = fixedClock
	return seeder
}

func TestSeeder_Seed_InstallsCatalog(t *testing.T) {
	s := newMemStore()
	seeder := newTestSeeder(s)

	if err := seeder.Seed(context.Background(), AdminAccount{Username: "root", Password: "secret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.privileges) != len(privilegeCatalog) {
		t.Fatalf("expected %d privileges, got %d", len(privilegeCatalog), len(s.privileges))
	}

	adminID := mustRoleID(t, s, domain.RoleAdmin)
	userID := mustRoleID(t, s, domain.RoleUser)
	if !s.roles[adminID].SystemRole || !s.roles[userID].SystemRole {
		t.Fatal("expected seeded roles to be system roles")
	}
	if len(s.rolePrivileges[adminID]) != len(privilegeCatalog) {
		t.Fatalf("expected admin to hold the whole catalog, got %d", len(s.rolePrivileges[adminID]))
	}
	if len(s.rolePrivileges[userID]) != 1 {
		t.Fatalf("expected user role to hold one privilege, got %d", len(s.rolePrivileges[userID]))
	}

	root := mustUserID(t, s, "root")
	if _, ok := s.userRoles[root][adminID]; !ok {
		t.Fatal("expected bootstrap admin to hold ROLE_ADMIN")
	}
	if s.users[root].PasswordHash != "hashed:secret" {
		t.Fatalf("expected hashed password, got %q", s.users[root].PasswordHash)
	}
}

func TestSeeder_Seed_Idempotent(t *testing.T) {
	s := newMemStore()
	seeder := newTestSeeder(s)
	admin := AdminAccount{Username: "root", Password: "secret"}

	if err := seeder.Seed(context.Background(), admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userRoleID := mustRoleID(t, s, domain.RoleUser)
	delete(s.rolePrivileges[userRoleID], mustPrivilegeID(t, s, domain.PrivilegeReadCustomers))

	if err := seeder.Seed(context.Background(), admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.roles) != 2 || len(s.users) != 1 || len(s.privileges) != len(privilegeCatalog) {
		t.Fatalf("second run must not create entities: roles=%d users=%d privileges=%d",
			len(s.roles), len(s.users), len(s.privileges))
	}
	if len(s.rolePrivileges[userRoleID]) != 0 {
		t.Fatal("second run must not restore privileges operators removed")
	}
}

func TestSeeder_Seed_WithoutAdmin(t *testing.T) {
	s := newMemStore()

	if err := newTestSeeder(s).Seed(context.Background(), AdminAccount{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.users) != 0 {
		t.Fatalf("expected no users, got %d", len(s.users))
	}
}

func mustPrivilegeID(t *testing.T, s *memStore, name string) string {
	t.Helper()
	for id, p := range s.privileges {
		if p.Name == name {
			return id
		}
	}
	t.Fatalf("privilege %s not seeded", name)
	return ""
}
