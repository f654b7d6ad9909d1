package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

type CustomerService struct {
	repo   ports.CustomerRepository
	tx     ports.TxManager
	logger zerolog.Logger
	now    func() time.Time
}

func NewCustomerService(repo ports.CustomerRepository, tx ports.TxManager, logger zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, tx: tx, logger: logger, now: utcNow}
}

func (s *CustomerService) List(ctx context.Context) ([]ports.CustomerView, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]ports.CustomerView, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerView(c))
	}
	return out, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*ports.CustomerView, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := customerView(c)
	return &v, nil
}

// Create stores a new customer; the email must not belong to another customer.
func (s *CustomerService) Create(ctx context.Context, in ports.CustomerInput) (*ports.CustomerView, error) {
	var created *domain.Customer
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		if exists {
			return domain.Duplicate(domain.EntityCustomer, in.Email)
		}

		now := s.now()
		created, err = s.repo.Create(ctx, &domain.Customer{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			Phone:     in.Phone,
			Company:   in.Company,
			Notes:     in.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("customer_id", created.ID).Msg("customer created")
	v := customerView(created)
	return &v, nil
}

// Update replaces every mutable field of the customer.
func (s *CustomerService) Update(ctx context.Context, id string, in ports.CustomerInput) (*ports.CustomerView, error) {
	return s.apply(ctx, id, domain.CustomerPatch{
		FirstName: &in.FirstName,
		LastName:  &in.LastName,
		Email:     &in.Email,
		Phone:     &in.Phone,
		Company:   &in.Company,
		Notes:     &in.Notes,
	})
}

// Patch applies only the supplied fields.
func (s *CustomerService) Patch(ctx context.Context, id string, patch domain.CustomerPatch) (*ports.CustomerView, error) {
	return s.apply(ctx, id, patch)
}

func (s *CustomerService) apply(ctx context.Context, id string, patch domain.CustomerPatch) (*ports.CustomerView, error) {
	var updated domain.Customer
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.Email != nil && *patch.Email != current.Email {
			exists, err := s.repo.ExistsByEmail(ctx, *patch.Email)
			if err != nil {
				return fmt.Errorf("update customer: %w", err)
			}
			if exists {
				return domain.Duplicate(domain.EntityCustomer, *patch.Email)
			}
		}

		updated = domain.MergeCustomer(*current, patch)
		updated.UpdatedAt = s.now()
		return s.repo.Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("customer_id", id).Msg("customer updated")
	v := customerView(&updated)
	return &v, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("customer_id", id).Msg("customer deleted")
	return nil
}
