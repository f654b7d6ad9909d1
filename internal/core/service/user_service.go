package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// UserService manages user accounts and role assignment.
type UserService struct {
	users ports.UserRepository
	roles ports.RoleRepository
	tx    ports.TxManager
	audit auditTrail
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	tx ports.TxManager,
	audit ports.AuditRepository,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users: users,
		roles: roles,
		tx:    tx,
		audit: auditTrail{repo: audit, log: log},
		log:   log,
		now:   utcNow,
	}
}

func (s *UserService) List(ctx context.Context) ([]ports.UserView, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]ports.UserView, 0, len(users))
	for _, u := range users {
		v, err := s.view(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*ports.UserView, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, u)
}

// UpdateRole replaces the user's role set with the single role roleID.
// An administrator may never change their own roles; that check runs before
// the target role is resolved.
func (s *UserService) UpdateRole(ctx context.Context, userID, roleID, actingAdmin string) (*ports.UserView, error) {
	var (
		out   *ports.UserView
		event auditEvent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := domain.CheckRoleAssignment(*user, actingAdmin); err != nil {
			return err
		}
		role, err := s.roles.FindByID(ctx, roleID)
		if err != nil {
			return err
		}

		if err := s.users.SetRoles(ctx, user.ID, []string{role.ID}); err != nil {
			return err
		}
		updated := *user
		updated.UpdatedAt = s.now()
		if err := s.users.Update(ctx, &updated); err != nil {
			return err
		}
		event = auditEvent{domain.AuditRoleAssigned, domain.EntityUser, user.ID, map[string]string{
			"role":  role.Name,
			"admin": actingAdmin,
		}}

		out, err = s.view(ctx, &updated)
		return err
	})
	if err != nil {
		if de, ok := domain.AsError(err); ok && de.Reason == domain.ReasonOwnRole {
			s.log.Warn().Str("user_id", userID).Str("admin", actingAdmin).Msg("self role change rejected")
		}
		return nil, err
	}
	s.audit.record(ctx, event)
	s.log.Info().Str("user_id", userID).Str("role_id", roleID).Str("admin", actingAdmin).Msg("user role updated")
	return out, nil
}

// UpdatePreferences changes the language preference. Users may change their
// own; administrators may change anyone's.
func (s *UserService) UpdatePreferences(ctx context.Context, in ports.PreferencesInput) error {
	if err := domain.CheckPreferenceUpdate(in.UserID, in.RequestingUserID, in.RequestingIsAdmin); err != nil {
		return err
	}
	if !domain.SupportedLanguage(in.LanguagePreference) {
		return domain.InvalidLanguage(in.LanguagePreference)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		user.LanguagePreference = in.LanguagePreference
		user.UpdatedAt = s.now()
		return s.users.Update(ctx, user)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", in.UserID).Str("language", in.LanguagePreference).Msg("user preferences updated")
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*ports.UserView, error) {
	var out *ports.UserView
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Email != nil && *patch.Email != current.Email {
			taken, err := s.users.ExistsByEmail(ctx, *patch.Email)
			if err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			if taken {
				return domain.EmailTaken(*patch.Email)
			}
		}

		updated := domain.MergeUser(*current, patch)
		updated.UpdatedAt = s.now()
		if err := s.users.Update(ctx, &updated); err != nil {
			return err
		}
		out, err = s.view(ctx, &updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Msg("user profile updated")
	return out, nil
}

// Delete removes the account and its role memberships. Administrators cannot
// delete themselves.
func (s *UserService) Delete(ctx context.Context, id, actingAdmin string) error {
	var event auditEvent
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckUserDeletion(*user, actingAdmin); err != nil {
			return err
		}
		if err := s.users.Delete(ctx, user.ID); err != nil {
			return err
		}
		event = auditEvent{domain.AuditUserDeleted, domain.EntityUser, user.ID, map[string]string{
			"username": user.Username,
			"admin":    actingAdmin,
		}}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.record(ctx, event)
	s.log.Info().Str("user_id", id).Str("admin", actingAdmin).Msg("user deleted")
	return nil
}

func (s *UserService) view(ctx context.Context, u *domain.User) (*ports.UserView, error) {
	roleIDs, err := s.users.RoleIDs(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles of user %s: %w", u.ID, err)
	}
	roles, err := s.roles.FindByIDs(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("load roles of user %s: %w", u.ID, err)
	}
	roleList, err := roleViews(ctx, s.users, roles)
	if err != nil {
		return nil, err
	}
	return &ports.UserView{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Roles:              roleList,
		Enabled:            u.Enabled,
		LanguagePreference: u.LanguagePreference,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}, nil
}
