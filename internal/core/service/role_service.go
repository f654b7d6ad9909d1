package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// RoleService manages roles and the privileges granted to them.
type RoleService struct {
	roles      ports.RoleRepository
	privileges ports.PrivilegeRepository
	users      ports.UserRepository
	tx         ports.TxManager
	audit      auditTrail
	log        zerolog.Logger
	now        func() time.Time
}

func NewRoleService(
	roles ports.RoleRepository,
	privileges ports.PrivilegeRepository,
	users ports.UserRepository,
	tx ports.TxManager,
	audit ports.AuditRepository,
	log zerolog.Logger,
) *RoleService {
	return &RoleService{
		roles:      roles,
		privileges: privileges,
		users:      users,
		tx:         tx,
		audit:      auditTrail{repo: audit, log: log},
		log:        log,
		now:        utcNow,
	}
}

func (s *RoleService) List(ctx context.Context) ([]ports.RoleView, error) {
	roles, err := s.roles.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roleViews(ctx, s.users, roles)
}

func (s *RoleService) Get(ctx context.Context, id string) (*ports.RoleView, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, role)
}

func (s *RoleService) GetByName(ctx context.Context, name string) (*ports.RoleView, error) {
	role, err := s.roles.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, role)
}

// Create stores a user-defined role. Such roles are never system roles.
func (s *RoleService) Create(ctx context.Context, in ports.RoleInput) (*ports.RoleView, error) {
	var (
		created *domain.Role
		event   auditEvent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.roles.ExistsByName(ctx, in.Name)
		if err != nil {
			return fmt.Errorf("create role: %w", err)
		}
		if exists {
			return domain.Duplicate(domain.EntityRole, in.Name)
		}

		now := s.now()
		created, err = s.roles.Create(ctx, &domain.Role{
			Name:        in.Name,
			Description: in.Description,
			SystemRole:  false,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		event = auditEvent{domain.AuditRoleCreated, domain.EntityRole, created.ID, map[string]string{"name": created.Name}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, event)

	s.log.Info().Str("role_id", created.ID).Str("name", created.Name).Msg("role created")
	return &ports.RoleView{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		SystemRole:  created.SystemRole,
		CreatedAt:   created.CreatedAt,
		UpdatedAt:   created.UpdatedAt,
	}, nil
}

// Update replaces the description, the only mutable field of a role.
func (s *RoleService) Update(ctx context.Context, id, description string) (*ports.RoleView, error) {
	return s.Patch(ctx, id, domain.RolePatch{Description: &description})
}

func (s *RoleService) Patch(ctx context.Context, id string, patch domain.RolePatch) (*ports.RoleView, error) {
	var out *ports.RoleView
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.roles.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated := domain.MergeRole(*current, patch)
		updated.UpdatedAt = s.now()
		if err := s.roles.Update(ctx, &updated); err != nil {
			return err
		}
		out, err = s.view(ctx, &updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("role_id", id).Msg("role updated")
	return out, nil
}

// Delete removes a role unless it is a system role or still held by a user.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	var event auditEvent
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := s.roles.FindByID(ctx, id)
		if err != nil {
			return err
		}
		userCount, err := s.users.CountByRole(ctx, role.ID)
		if err != nil {
			return fmt.Errorf("delete role: %w", err)
		}
		if err := domain.CheckRoleDeletion(*role, userCount); err != nil {
			return err
		}
		if err := s.roles.Delete(ctx, role.ID); err != nil {
			return err
		}
		event = auditEvent{domain.AuditRoleDeleted, domain.EntityRole, role.ID, map[string]string{"name": role.Name}}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.record(ctx, event)
	s.log.Info().Str("role_id", id).Msg("role deleted")
	return nil
}

// Privileges returns the privileges currently granted to the role.
func (s *RoleService) Privileges(ctx context.Context, roleID string) ([]ports.PrivilegeView, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	ids, err := s.roles.PrivilegeIDs(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("role privileges: %w", err)
	}
	privileges, err := s.privileges.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("role privileges: %w", err)
	}
	return privilegeViews(ctx, s.privileges, privileges)
}

// SetPrivileges replaces the role's privilege set with exactly privilegeIDs.
// Every id is resolved before anything is written; one unknown id leaves the
// role untouched.
func (s *RoleService) SetPrivileges(ctx context.Context, roleID string, privilegeIDs []string) (*ports.RoleView, error) {
	ids := domain.UniqueIDs(privilegeIDs)

	var (
		out   *ports.RoleView
		event auditEvent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := s.roles.FindByID(ctx, roleID)
		if err != nil {
			return err
		}

		found, err := s.privileges.FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("resolve privileges: %w", err)
		}
		if missing := firstMissing(ids, found); missing != "" {
			return domain.NotFound(domain.EntityPrivilege, missing)
		}

		if err := s.privileges.MarkGranted(ctx, ids, s.now()); err != nil {
			return err
		}
		if err := s.roles.SetPrivileges(ctx, role.ID, ids); err != nil {
			return err
		}
		event = auditEvent{domain.AuditPrivilegesReplaced, domain.EntityRole, role.ID, map[string]string{
			"privilege_ids": strings.Join(ids, ","),
			"count":         strconv.Itoa(len(ids)),
		}}

		out, err = s.touch(ctx, role)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, event)
	s.log.Info().Str("role_id", roleID).Int("privileges", len(ids)).Msg("role privileges replaced")
	return out, nil
}

// AddPrivilege grants one privilege to the role. Granting an already granted
// privilege is a no-op.
func (s *RoleService) AddPrivilege(ctx context.Context, roleID, privilegeID string) (*ports.RoleView, error) {
	return s.changePrivilege(ctx, roleID, privilegeID, domain.AuditPrivilegeAdded,
		func(ctx context.Context, roleID, privilegeID string) error {
			if err := s.privileges.MarkGranted(ctx, []string{privilegeID}, s.now()); err != nil {
				return err
			}
			return s.roles.AddPrivilege(ctx, roleID, privilegeID)
		})
}

// RemovePrivilege revokes one privilege from the role. Revoking a privilege
// the role does not hold is a no-op.
func (s *RoleService) RemovePrivilege(ctx context.Context, roleID, privilegeID string) (*ports.RoleView, error) {
	return s.changePrivilege(ctx, roleID, privilegeID, domain.AuditPrivilegeRemoved, s.roles.RemovePrivilege)
}

func (s *RoleService) changePrivilege(
	ctx context.Context,
	roleID, privilegeID, action string,
	mutate func(ctx context.Context, roleID, privilegeID string) error,
) (*ports.RoleView, error) {
	var (
		out   *ports.RoleView
		event auditEvent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := s.roles.FindByID(ctx, roleID)
		if err != nil {
			return err
		}
		privilege, err := s.privileges.FindByID(ctx, privilegeID)
		if err != nil {
			return err
		}
		if err := mutate(ctx, role.ID, privilege.ID); err != nil {
			return err
		}
		event = auditEvent{action, domain.EntityRole, role.ID, map[string]string{"privilege": privilege.Name}}

		out, err = s.touch(ctx, role)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, event)
	s.log.Info().Str("role_id", roleID).Str("privilege_id", privilegeID).Str("action", action).Msg("role privilege changed")
	return out, nil
}

// touch bumps the role's update timestamp and returns its projection.
func (s *RoleService) touch(ctx context.Context, role *domain.Role) (*ports.RoleView, error) {
	updated := *role
	updated.UpdatedAt = s.now()
	if err := s.roles.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return s.view(ctx, &updated)
}

func (s *RoleService) view(ctx context.Context, role *domain.Role) (*ports.RoleView, error) {
	v, err := roleView(ctx, s.users, role)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// firstMissing returns the first id in ids that has no match in found.
func firstMissing(ids []string, found []*domain.Privilege) string {
	have := make(map[string]struct{}, len(found))
	for _, p := range found {
		have[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			return id
		}
	}
	return ""
}
