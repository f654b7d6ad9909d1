package ports

import (
	"context"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// RoleRepository defines persistence for roles and their privilege membership.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Role, error)
	FindAll(ctx context.Context) ([]*domain.Role, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, role *domain.Role) error
	// Delete removes the role together with its privilege memberships.
	Delete(ctx context.Context, id string) error

	PrivilegeIDs(ctx context.Context, roleID string) ([]string, error)
	// SetPrivileges replaces the role's privilege set wholesale.
	SetPrivileges(ctx context.Context, roleID string, privilegeIDs []string) error
	// AddPrivilege and RemovePrivilege are idempotent.
	AddPrivilege(ctx context.Context, roleID, privilegeID string) error
	RemovePrivilege(ctx context.Context, roleID, privilegeID string) error
}
