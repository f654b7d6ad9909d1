package ports

import (
	"context"
	"time"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// UserView is the read projection of a user, with live role projections.
type UserView struct {
	ID                 string
	Username           string
	Email              string
	FirstName          string
	LastName           string
	Roles              []RoleView
	Enabled            bool
	LanguagePreference string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PreferencesInput carries a preference change together with the identity of
// the principal requesting it.
type PreferencesInput struct {
	UserID             string
	LanguagePreference string
	RequestingUserID   string
	RequestingIsAdmin  bool
}

// UserService manages users and the user side of the user-role relation.
type UserService interface {
	List(ctx context.Context) ([]UserView, error)
	Get(ctx context.Context, id string) (*UserView, error)
	// UpdateRole replaces the user's role set with {roleID}. actingAdmin is
	// the username of the administrator performing the change.
	UpdateRole(ctx context.Context, userID, roleID, actingAdmin string) (*UserView, error)
	UpdatePreferences(ctx context.Context, input PreferencesInput) error
	UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*UserView, error)
	Delete(ctx context.Context, id, actingAdmin string) error
}
