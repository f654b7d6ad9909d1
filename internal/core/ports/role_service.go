package ports

import (
	"context"
	"time"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// RoleInput carries the fields of a new role.
type RoleInput struct {
	Name        string
	Description string
}

// RoleView is the read projection of a role. UserCount is computed on read.
type RoleView struct {
	ID          string
	Name        string
	Description string
	SystemRole  bool
	UserCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleService manages roles and the role side of the role-privilege relation.
type RoleService interface {
	List(ctx context.Context) ([]RoleView, error)
	Get(ctx context.Context, id string) (*RoleView, error)
	GetByName(ctx context.Context, name string) (*RoleView, error)
	Create(ctx context.Context, input RoleInput) (*RoleView, error)
	Update(ctx context.Context, id, description string) (*RoleView, error)
	Patch(ctx context.Context, id string, patch domain.RolePatch) (*RoleView, error)
	Delete(ctx context.Context, id string) error

	Privileges(ctx context.Context, roleID string) ([]PrivilegeView, error)
	SetPrivileges(ctx context.Context, roleID string, privilegeIDs []string) (*RoleView, error)
	AddPrivilege(ctx context.Context, roleID, privilegeID string) (*RoleView, error)
	RemovePrivilege(ctx context.Context, roleID, privilegeID string) (*RoleView, error)
}
