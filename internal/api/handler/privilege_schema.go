package handler

import "time"

type createPrivilegeRequest struct {
	Name        string `json:"name"        validate:"required,min=3,max=100,privilege_name"`
	Description string `json:"description" validate:"max=255"`
	Category    string `json:"category"    validate:"max=50"`
}

type updatePrivilegeRequest struct {
	Description string `json:"description" validate:"max=255"`
	Category    string `json:"category"    validate:"max=50"`
}

type patchPrivilegeRequest struct {
	Description *string `json:"description" validate:"omitempty,max=255"`
	Category    *string `json:"category"    validate:"omitempty,max=50"`
}

type privilegeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	RoleCount   int64     `json:"role_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
