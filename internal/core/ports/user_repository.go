package ports

import (
	"context"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// UserRepository defines persistence for users and their role membership.
// Lookups return a domain NotFound error when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user together with its role memberships.
	Delete(ctx context.Context, id string) error

	// RoleIDs returns the ids of the roles held by the user.
	RoleIDs(ctx context.Context, userID string) ([]string, error)
	// SetRoles replaces the user's role set wholesale.
	SetRoles(ctx context.Context, userID string, roleIDs []string) error
	// CountByRole returns the number of users currently holding the role.
	CountByRole(ctx context.Context, roleID string) (int64, error)
}
