package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// auditEvent describes one audit entry captured inside a unit of work.
type auditEvent struct {
	action       string
	resourceType string
	resourceID   string
	meta         map[string]string
}

// auditTrail appends audit entries. It is called after the unit of work has
// committed, with the caller's context rather than the transaction's, so an
// append failure can neither abort nor roll back the operation. Failures are
// logged, never returned.
type auditTrail struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

func (a auditTrail) record(ctx context.Context, ev auditEvent) {
	if a.repo == nil || ev.action == "" {
		return
	}
	now := a.now
	if now == nil {
		now = utcNow
	}
	entry := &domain.AuditEntry{
		Action:       ev.action,
		Actor:        ports.ActorFromContext(ctx),
		ResourceType: ev.resourceType,
		ResourceID:   ev.resourceID,
		Metadata:     ev.meta,
		OccurredAt:   now(),
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.log.Warn().Err(err).
			Str("action", ev.action).
			Str("resource_id", ev.resourceID).
			Msg("failed to append audit entry")
	}
}
