package domain

import "time"

// Audit actions recorded for authorization-model mutations.
const (
	AuditRoleAssigned       = "user.role_assigned"
	AuditUserDeleted        = "user.deleted"
	AuditRoleCreated        = "role.created"
	AuditRoleDeleted        = "role.deleted"
	AuditPrivilegesReplaced = "role.privileges_replaced"
	AuditPrivilegeAdded     = "role.privilege_added"
	AuditPrivilegeRemoved   = "role.privilege_removed"
	AuditPrivilegeCreated   = "privilege.created"
	AuditPrivilegeDeleted   = "privilege.deleted"
)

// AuditEntry is an append-only record of a security-relevant change.
type AuditEntry struct {
	Action       string
	Actor        string
	ResourceType string
	ResourceID   string
	Metadata     map[string]string
	OccurredAt   time.Time
}
