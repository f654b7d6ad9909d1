package ports

import (
	"context"

	"github.com/devcrm/crm-service/internal/core/domain"
)

// AuditRepository appends immutable audit entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
}
