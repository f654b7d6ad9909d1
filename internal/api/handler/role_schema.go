package handler

import "time"

type createRoleRequest struct {
	Name        string `json:"name"        validate:"required,min=5,max=50,role_name"`
	Description string `json:"description" validate:"max=255"`
}

type updateRoleRequest struct {
	Description string `json:"description" validate:"max=255"`
}

type patchRoleRequest struct {
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// rolePrivilegesRequest replaces a role's privilege set. An empty list clears it.
type rolePrivilegesRequest struct {
	PrivilegeIDs []string `json:"privilege_ids" validate:"required"`
}

type roleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SystemRole  bool      `json:"system_role"`
	UserCount   int64     `json:"user_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
