package domain

import "time"

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"

	// DefaultRole is granted to every newly registered user.
	DefaultRole = RoleUser
)

// Role is a named bundle of privileges. Name and SystemRole never change after
// creation. Privilege membership lives in the role_privileges join.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SystemRole  bool      `json:"system_role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RolePatch carries the sparse mutable fields of a role.
type RolePatch struct {
	Description *string
}

// MergeRole applies the present fields of patch onto base.
func MergeRole(base Role, patch RolePatch) Role {
	if patch.Description != nil {
		base.Description = *patch.Description
	}
	return base
}
