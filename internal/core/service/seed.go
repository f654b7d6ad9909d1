package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

type catalogPrivilege struct {
	name        string
	category    string
	description string
}

var privilegeCatalog = []catalogPrivilege{
	{domain.PrivilegeSystemAdmin, "SYSTEM", "Full administrative access"},
	{domain.PrivilegeReadRoles, "ROLES", "View roles and their privileges"},
	{domain.PrivilegeManageRolePrivileges, "ROLES", "Grant and revoke role privileges"},
	{domain.PrivilegeReadCustomers, "CUSTOMERS", "View customers"},
	{domain.PrivilegeManageCustomers, "CUSTOMERS", "Create, update and delete customers"},
	{domain.PrivilegeReadUsers, "USERS", "View users"},
	{domain.PrivilegeManageUsers, "USERS", "Manage users and their roles"},
}

type catalogRole struct {
	name        string
	description string
	privileges  []string // nil grants the whole catalog
}

var roleCatalog = []catalogRole{
	{domain.RoleAdmin, "System administrator", nil},
	{domain.RoleUser, "Default role for registered users", []string{domain.PrivilegeReadCustomers}},
}

// AdminAccount describes the optional bootstrap administrator.
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// Seeder installs the system roles, the privilege catalog and an optional
// bootstrap administrator. Running it again changes nothing.
type Seeder struct {
	users      ports.UserRepository
	roles      ports.RoleRepository
	privileges ports.PrivilegeRepository
	tx         ports.TxManager
	hasher     ports.PasswordHasher
	log        zerolog.Logger
	now        func() time.Time
}

func NewSeeder(
	users ports.UserRepository,
	roles ports.RoleRepository,
	privileges ports.PrivilegeRepository,
	tx ports.TxManager,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) *Seeder {
	return &Seeder{users: users, roles: roles, privileges: privileges, tx: tx, hasher: hasher, log: log, now: utcNow}
}

func (s *Seeder) Seed(ctx context.Context, admin AdminAccount) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ids, err := s.seedPrivileges(ctx)
		if err != nil {
			return err
		}
		adminRoleID, err := s.seedRoles(ctx, ids)
		if err != nil {
			return err
		}
		if admin.Username == "" {
			return nil
		}
		return s.seedAdmin(ctx, admin, adminRoleID)
	})
}

func (s *Seeder) seedPrivileges(ctx context.Context) (map[string]string, error) {
	ids := make(map[string]string, len(privilegeCatalog))
	for _, c := range privilegeCatalog {
		p, err := s.privileges.FindByName(ctx, c.name)
		if errors.Is(err, domain.ErrNotFound) {
			now := s.now()
			p, err = s.privileges.Create(ctx, &domain.Privilege{
				Name:        c.name,
				Description: c.description,
				Category:    c.category,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err == nil {
				s.log.Info().Str("privilege", c.name).Msg("privilege seeded")
			}
		}
		if err != nil {
			return nil, fmt.Errorf("seed privilege %s: %w", c.name, err)
		}
		ids[c.name] = p.ID
	}
	return ids, nil
}

// seedRoles creates missing system roles with their catalog grants. The
// privilege set of an existing role is left as operators configured it.
func (s *Seeder) seedRoles(ctx context.Context, privilegeIDs map[string]string) (string, error) {
	var adminID string
	for _, c := range roleCatalog {
		role, err := s.roles.FindByName(ctx, c.name)
		if errors.Is(err, domain.ErrNotFound) {
			now := s.now()
			role, err = s.roles.Create(ctx, &domain.Role{
				Name:        c.name,
				Description: c.description,
				SystemRole:  true,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return "", fmt.Errorf("seed role %s: %w", c.name, err)
			}

			grants := make([]string, 0, len(privilegeCatalog))
			if c.privileges == nil {
				for _, p := range privilegeCatalog {
					grants = append(grants, privilegeIDs[p.name])
				}
			} else {
				for _, name := range c.privileges {
					grants = append(grants, privilegeIDs[name])
				}
			}
			if err := s.roles.SetPrivileges(ctx, role.ID, grants); err != nil {
				return "", fmt.Errorf("seed role %s privileges: %w", c.name, err)
			}
			s.log.Info().Str("role", c.name).Int("privileges", len(grants)).Msg("role seeded")
		} else if err != nil {
			return "", fmt.Errorf("seed role %s: %w", c.name, err)
		}

		if c.name == domain.RoleAdmin {
			adminID = role.ID
		}
	}
	return adminID, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin AdminAccount, roleID string) error {
	exists, err := s.users.ExistsByUsername(ctx, admin.Username)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if exists {
		return nil
	}
	if admin.Password == "" {
		s.log.Warn().Str("username", admin.Username).Msg("bootstrap admin has no password, skipping")
		return nil
	}

	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}
	email := admin.Email
	if email == "" {
		email = admin.Username + "@localhost"
	}

	now := s.now()
	user, err := s.users.Create(ctx, &domain.User{
		Username:           admin.Username,
		Email:              email,
		PasswordHash:       hash,
		Enabled:            true,
		LanguagePreference: domain.DefaultLanguage,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := s.users.SetRoles(ctx, user.ID, []string{roleID}); err != nil {
		return fmt.Errorf("seed admin roles: %w", err)
	}
	s.log.Info().Str("username", admin.Username).Msg("bootstrap admin created")
	return nil
}
