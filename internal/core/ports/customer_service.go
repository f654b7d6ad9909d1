package ports

import (
	"context"
	"time"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// CustomerInput carries every mutable customer field. Used by create and by
// full-replace update.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Notes     string
}

// CustomerView is the read projection of a customer.
type CustomerView struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerService defines use-case operations for customers.
type CustomerService interface {
	List(ctx context.Context) ([]CustomerView, error)
	Get(ctx context.Context, id string) (*CustomerView, error)
	Create(ctx context.Context, input CustomerInput) (*CustomerView, error)
	Update(ctx context.Context, id string, input CustomerInput) (*CustomerView, error)
	Patch(ctx context.Context, id string, patch domain.CustomerPatch) (*CustomerView, error)
	Delete(ctx context.Context, id string) error
}
