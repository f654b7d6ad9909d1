package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match on these with errors.Is; the boundary maps each
// kind to a transport status.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAuthentication  = errors.New("authentication failed")
	ErrAuthorization   = errors.New("access forbidden")
	ErrSelfEscalation  = fmt.Errorf("%w: self escalation", ErrAuthorization)
	ErrInvalidInput    = errors.New("invalid input")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Reason narrows an error kind to the rule that produced it. It doubles as the
// message key used by the boundary layer for localization.
type Reason string

const (
	ReasonNotFound          Reason = "not_found"
	ReasonDuplicate         Reason = "duplicate"
	ReasonUsernameTaken     Reason = "username_taken"
	ReasonEmailTaken        Reason = "email_taken"
	ReasonSystemRole        Reason = "system_role"
	ReasonRoleInUse         Reason = "role_in_use"
	ReasonPrivilegeInUse    Reason = "privilege_in_use"
	ReasonBadCredentials    Reason = "bad_credentials"
	ReasonAccountDisabled   Reason = "account_disabled"
	ReasonAccountRemoved    Reason = "account_removed"
	ReasonPasswordTooLong   Reason = "password_too_long"
	ReasonOwnRole           Reason = "own_role"
	ReasonOwnAccount        Reason = "own_account"
	ReasonForeignPreference Reason = "foreign_preferences"
	ReasonInvalidLanguage   Reason = "invalid_language"
	ReasonThrottled         Reason = "throttled"
)

// Entity names used in error context.
const (
	EntityUser      = "user"
	EntityRole      = "role"
	EntityPrivilege = "privilege"
	EntityCustomer  = "customer"
)

// Error is a domain failure with structured context. Kind is one of the
// package-level sentinels; Key is the id, name or email the rule tripped on.
type Error struct {
	Kind   error
	Reason Reason
	Entity string
	Key    string
	Count  int64
}

func (e *Error) Error() string {
	switch {
	case e.Entity != "" && e.Key != "" && e.Count > 0:
		return fmt.Sprintf("%s: %s %q (%s, %d)", e.Kind, e.Entity, e.Key, e.Reason, e.Count)
	case e.Entity != "" && e.Key != "":
		return fmt.Sprintf("%s: %s %q (%s)", e.Kind, e.Entity, e.Key, e.Reason)
	default:
		return fmt.Sprintf("%s (%s)", e.Kind, e.Reason)
	}
}

func (e *Error) Unwrap() error { return e.Kind }

// AsError extracts the structured domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func NotFound(entity, key string) error {
	return &Error{Kind: ErrNotFound, Reason: ReasonNotFound, Entity: entity, Key: key}
}

func Duplicate(entity, key string) error {
	return &Error{Kind: ErrConflict, Reason: ReasonDuplicate, Entity: entity, Key: key}
}

func UsernameTaken(username string) error {
	return &Error{Kind: ErrConflict, Reason: ReasonUsernameTaken, Entity: EntityUser, Key: username}
}

func EmailTaken(email string) error {
	return &Error{Kind: ErrConflict, Reason: ReasonEmailTaken, Entity: EntityUser, Key: email}
}

func BadCredentials() error {
	return &Error{Kind: ErrAuthentication, Reason: ReasonBadCredentials}
}

func Throttled(username string) error {
	return &Error{Kind: ErrTooManyAttempts, Reason: ReasonThrottled, Entity: EntityUser, Key: username}
}

func InvalidLanguage(lang string) error {
	return &Error{Kind: ErrInvalidInput, Reason: ReasonInvalidLanguage, Key: lang}
}
