package ports

import (
	"context"
	"time"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// PrivilegeRepository defines persistence for the privilege catalog.
type PrivilegeRepository interface {
	Create(ctx context.Context, privilege *domain.Privilege) (*domain.Privilege, error)
	FindByID(ctx context.Context, id string) (*domain.Privilege, error)
	FindByName(ctx context.Context, name string) (*domain.Privilege, error)
	// FindByIDs returns the privileges that exist among ids; missing ids are
	// silently skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Privilege, error)
	FindAll(ctx context.Context) ([]*domain.Privilege, error)
	FindByCategory(ctx context.Context, category string) ([]*domain.Privilege, error)
	// Categories returns the distinct categories in ascending order.
	Categories(ctx context.Context) ([]string, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, privilege *domain.Privilege) error
	// Delete removes the privilege together with every grant of it.
	Delete(ctx context.Context, id string) error
	// MarkGranted writes a grant timestamp on each privilege so that granting
	// inside a transaction conflicts with a concurrent Delete.
	MarkGranted(ctx context.Context, ids []string, at time.Time) error

	// CountRoles returns the number of roles currently referencing the privilege.
	CountRoles(ctx context.Context, privilegeID string) (int64, error)
}
