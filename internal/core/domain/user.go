package domain

import "time"

const (
	LanguageEnglish   = "en"
	LanguageBulgarian = "bg"

	DefaultLanguage = LanguageEnglish
)

// SupportedLanguage reports whether lang is an accepted language preference.
func SupportedLanguage(lang string) bool {
	return lang == LanguageEnglish || lang == LanguageBulgarian
}

// User models an authenticated actor. Role membership is not stored on the
// user; it lives in the user_roles join and is loaded separately.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	FirstName          string    `json:"first_name,omitempty"`
	LastName           string    `json:"last_name,omitempty"`
	Enabled            bool      `json:"enabled"`
	LanguagePreference string    `json:"language_preference"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserPatch carries the sparse profile fields of a user update. Nil fields are
// left untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Enabled   *bool
}

// MergeUser applies the present fields of patch onto base and returns the
// result. base is not modified.
func MergeUser(base User, patch UserPatch) User {
	if patch.FirstName != nil {
		base.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		base.LastName = *patch.LastName
	}
	if patch.Email != nil {
		base.Email = *patch.Email
	}
	if patch.Enabled != nil {
		base.Enabled = *patch.Enabled
	}
	return base
}
