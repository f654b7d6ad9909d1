package ports

import (
	"context"
	"time"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// PrivilegeInput carries the fields of a new privilege.
type PrivilegeInput struct {
	Name        string
	Description string
	Category    string
}

// PrivilegeView is the read projection of a privilege. RoleCount is computed
// on read.
type PrivilegeView struct {
	ID          string
	Name        string
	Description string
	Category    string
	RoleCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PrivilegeService manages the privilege catalog.
type PrivilegeService interface {
	List(ctx context.Context) ([]PrivilegeView, error)
	Get(ctx context.Context, id string) (*PrivilegeView, error)
	GetByName(ctx context.Context, name string) (*PrivilegeView, error)
	ListByCategory(ctx context.Context, category string) ([]PrivilegeView, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, input PrivilegeInput) (*PrivilegeView, error)
	// Update replaces description and category.
	Update(ctx context.Context, id, description, category string) (*PrivilegeView, error)
	Patch(ctx context.Context, id string, patch domain.PrivilegePatch) (*PrivilegeView, error)
	Delete(ctx context.Context, id string) error
}
