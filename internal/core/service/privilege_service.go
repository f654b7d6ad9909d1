package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// PrivilegeService manages the privilege catalog.
type PrivilegeService struct {
	repo  ports.PrivilegeRepository
	tx    ports.TxManager
	audit auditTrail
	log   zerolog.Logger
	now   func() time.Time
}

func NewPrivilegeService(repo ports.PrivilegeRepository, tx ports.TxManager, audit ports.AuditRepository, log zerolog.Logger) *PrivilegeService {
	return &PrivilegeService{
		repo:  repo,
		tx:    tx,
		audit: auditTrail{repo: audit, log: log},
		log:   log,
		now:   utcNow,
	}
}

func (s *PrivilegeService) List(ctx context.Context) ([]ports.PrivilegeView, error) {
	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list privileges: %w", err)
	}
	return privilegeViews(ctx, s.repo, list)
}

func (s *PrivilegeService) Get(ctx context.Context, id string) (*ports.PrivilegeView, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *PrivilegeService) GetByName(ctx context.Context, name string) (*ports.PrivilegeView, error) {
	p, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *PrivilegeService) ListByCategory(ctx context.Context, category string) ([]ports.PrivilegeView, error) {
	list, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list privileges by category: %w", err)
	}
	return privilegeViews(ctx, s.repo, list)
}

func (s *PrivilegeService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *PrivilegeService) Create(ctx context.Context, in ports.PrivilegeInput) (*ports.PrivilegeView, error) {
	var (
		created *domain.Privilege
		event   auditEvent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByName(ctx, in.Name)
		if err != nil {
			return fmt.Errorf("create privilege: %w", err)
		}
		if exists {
			return domain.Duplicate(domain.EntityPrivilege, in.Name)
		}

		now := s.now()
		created, err = s.repo.Create(ctx, &domain.Privilege{
			Name:        in.Name,
			Description: in.Description,
			Category:    in.Category,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		event = auditEvent{domain.AuditPrivilegeCreated, domain.EntityPrivilege, created.ID, map[string]string{"name": created.Name}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, event)

	s.log.Info().Str("privilege_id", created.ID).Str("name", created.Name).Msg("privilege created")
	return &ports.PrivilegeView{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Category:    created.Category,
		CreatedAt:   created.CreatedAt,
		UpdatedAt:   created.UpdatedAt,
	}, nil
}

func (s *PrivilegeService) Update(ctx context.Context, id, description, category string) (*ports.PrivilegeView, error) {
	return s.Patch(ctx, id, domain.PrivilegePatch{Description: &description, Category: &category})
}

func (s *PrivilegeService) Patch(ctx context.Context, id string, patch domain.PrivilegePatch) (*ports.PrivilegeView, error) {
	var out *ports.PrivilegeView
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated := domain.MergePrivilege(*current, patch)
		updated.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, &updated); err != nil {
			return err
		}
		out, err = s.view(ctx, &updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("privilege_id", id).Msg("privilege updated")
	return out, nil
}

// Delete removes a privilege no role references.
func (s *PrivilegeService) Delete(ctx context.Context, id string) error {
	var event auditEvent
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		roleCount, err := s.repo.CountRoles(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("delete privilege: %w", err)
		}
		if err := domain.CheckPrivilegeDeletion(*p, roleCount); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, p.ID); err != nil {
			return err
		}
		event = auditEvent{domain.AuditPrivilegeDeleted, domain.EntityPrivilege, p.ID, map[string]string{"name": p.Name}}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.record(ctx, event)
	s.log.Info().Str("privilege_id", id).Msg("privilege deleted")
	return nil
}

func (s *PrivilegeService) view(ctx context.Context, p *domain.Privilege) (*ports.PrivilegeView, error) {
	v, err := privilegeView(ctx, s.repo, p)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
