package service

import (
	"context"
	"fmt"
	"time"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

func utcNow() time.Time { return time.Now().UTC() }

// roleView projects a role with its live user count.
func roleView(ctx context.Context, users ports.UserRepository, r *domain.Role) (ports.RoleView, error) {
	count, err := users.CountByRole(ctx, r.ID)
	if err != nil {
		return ports.RoleView{}, fmt.Errorf("count users of role %s: %w", r.ID, err)
	}
	return ports.RoleView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		SystemRole:  r.SystemRole,
		UserCount:   count,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func roleViews(ctx context.Context, users ports.UserRepository, roles []*domain.Role) ([]ports.RoleView, error) {
	out := make([]ports.RoleView, 0, len(roles))
	for _, r := range roles {
		v, err := roleView(ctx, users, r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// privilegeView projects a privilege with its live role count.
func privilegeView(ctx context.Context, privileges ports.PrivilegeRepository, p *domain.Privilege) (ports.PrivilegeView, error) {
	count, err := privileges.CountRoles(ctx, p.ID)
	if err != nil {
		return ports.PrivilegeView{}, fmt.Errorf("count roles of privilege %s: %w", p.ID, err)
	}
	return ports.PrivilegeView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		RoleCount:   count,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func privilegeViews(ctx context.Context, privileges ports.PrivilegeRepository, list []*domain.Privilege) ([]ports.PrivilegeView, error) {
	out := make([]ports.PrivilegeView, 0, len(list))
	for _, p := range list {
		v, err := privilegeView(ctx, privileges, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func customerView(c *domain.Customer) ports.CustomerView {
	return ports.CustomerView{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
