package domain

import "time"

// Catalog privileges seeded at startup and referenced by route guards.
const (
	PrivilegeSystemAdmin          = "SYSTEM_ADMIN"
	PrivilegeReadRoles            = "READ_ROLES"
	PrivilegeManageRolePrivileges = "MANAGE_ROLE_PRIVILEGES"
	PrivilegeReadCustomers        = "READ_CUSTOMERS"
	PrivilegeManageCustomers      = "MANAGE_CUSTOMERS"
	PrivilegeReadUsers            = "READ_USERS"
	PrivilegeManageUsers          = "MANAGE_USERS"
)

// Privilege is an atomic named permission grantable to roles. Name never
// changes after creation.
type Privilege struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PrivilegePatch carries the sparse mutable fields of a privilege.
type PrivilegePatch struct {
	Description *string
	Category    *string
}

// MergePrivilege applies the present fields of patch onto base.
func MergePrivilege(base Privilege, patch PrivilegePatch) Privilege {
	if patch.Description != nil {
		base.Description = *patch.Description
	}
	if patch.Category != nil {
		base.Category = *patch.Category
	}
	return base
}
