package security

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash rejects passwords longer than bcrypt's 72 byte input limit with an
// invalid input error.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", &domain.Error{Kind: domain.ErrInvalidInput, Reason: domain.ReasonPasswordTooLong, Entity: domain.EntityUser}
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// PasswordAuthenticator verifies credentials against stored bcrypt hashes.
// Unknown users and wrong passwords produce the same error.
type PasswordAuthenticator struct {
	users ports.UserRepository
}

func NewPasswordAuthenticator(users ports.UserRepository) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.BadCredentials()
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.BadCredentials()
	}
	if !user.Enabled {
		return "", &domain.Error{Kind: domain.ErrAuthentication, Reason: domain.ReasonAccountDisabled, Entity: domain.EntityUser, Key: username}
	}
	return user.Username, nil
}
