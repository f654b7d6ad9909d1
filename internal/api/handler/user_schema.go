package handler

import "time"

type updateUserRoleRequest struct {
	RoleID string `json:"role_id" validate:"required"`
}

type updatePreferencesRequest struct {
	LanguagePreference string `json:"language_preference" validate:"required"`
}

type patchUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Enabled   *bool   `json:"enabled"`
}

type userResponse struct {
	ID                 string         `json:"id"`
	Username           string         `json:"username"`
	Email              string         `json:"email"`
	FirstName          string         `json:"first_name,omitempty"`
	LastName           string         `json:"last_name,omitempty"`
	Roles              []roleResponse `json:"roles"`
	Enabled            bool           `json:"enabled"`
	LanguagePreference string         `json:"language_preference"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
