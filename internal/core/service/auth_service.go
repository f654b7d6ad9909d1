package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

const tokenType = "Bearer"

// AuthService implements registration and login.
type AuthService struct {
	users         ports.UserRepository
	roles         ports.RoleRepository
	privileges    ports.PrivilegeRepository
	tx            ports.TxManager
	hasher        ports.PasswordHasher
	authenticator ports.Authenticator
	tokens        ports.TokenService
	throttle      ports.LoginThrottle // optional
	log           zerolog.Logger
	now           func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	privileges ports.PrivilegeRepository,
	tx ports.TxManager,
	hasher ports.PasswordHasher,
	authenticator ports.Authenticator,
	tokens ports.TokenService,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		roles:         roles,
		privileges:    privileges,
		tx:            tx,
		hasher:        hasher,
		authenticator: authenticator,
		tokens:        tokens,
		throttle:      throttle,
		log:           log,
		now:           utcNow,
	}
}

// Register creates an enabled account holding only the default role and
// returns it with a freshly issued token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	lang := in.LanguagePreference
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	if !domain.SupportedLanguage(lang) {
		return nil, domain.InvalidLanguage(lang)
	}

	var created *domain.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.users.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return fmt.Errorf("register: check username: %w", err)
		}
		if taken {
			return domain.UsernameTaken(in.Username)
		}

		taken, err = s.users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("register: check email: %w", err)
		}
		if taken {
			return domain.EmailTaken(in.Email)
		}

		role, err := s.roles.FindByName(ctx, domain.DefaultRole)
		if err != nil {
			return fmt.Errorf("register: default role: %w", err)
		}

		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("register: hash password: %w", err)
		}

		now := s.now()
		created, err = s.users.Create(ctx, &domain.User{
			Username:           in.Username,
			Email:              in.Email,
			PasswordHash:       hash,
			FirstName:          in.FirstName,
			LastName:           in.LastName,
			Enabled:            true,
			LanguagePreference: lang,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return err
		}
		return s.users.SetRoles(ctx, created.ID, []string{role.ID})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return s.issue(ctx, created)
}

// Login authenticates the credentials and returns the identity with a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.BadCredentials()
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, continuing")
		} else if !allowed {
			return nil, domain.Throttled(username)
		}
	}

	authenticated, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) && s.throttle != nil {
			if ferr := s.throttle.Fail(ctx, username); ferr != nil {
				s.log.Warn().Err(ferr).Str("username", username).Msg("failed to record login failure")
			}
		}
		return nil, err
	}

	if s.throttle != nil {
		if rerr := s.throttle.Reset(ctx, username); rerr != nil {
			s.log.Warn().Err(rerr).Str("username", username).Msg("failed to reset login throttle")
		}
	}

	user, err := s.users.FindByUsername(ctx, authenticated)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Resolve reloads a token subject from the store. Removed and disabled
// accounts fail with an authentication error; roles and authorities reflect
// the stored role set, not what the token was minted with.
func (s *AuthService) Resolve(ctx context.Context, userID string) (ports.Identity, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ports.Identity{}, &domain.Error{
				Kind: domain.ErrAuthentication, Reason: domain.ReasonAccountRemoved, Entity: domain.EntityUser, Key: userID,
			}
		}
		return ports.Identity{}, fmt.Errorf("resolve %s: %w", userID, err)
	}
	if !user.Enabled {
		return ports.Identity{}, &domain.Error{
			Kind: domain.ErrAuthentication, Reason: domain.ReasonAccountDisabled, Entity: domain.EntityUser, Key: user.Username,
		}
	}

	roles, authorities, err := s.authorities(ctx, user.ID)
	if err != nil {
		return ports.Identity{}, err
	}
	return ports.Identity{UserID: user.ID, Username: user.Username, Roles: roles, Authorities: authorities}, nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	roles, authorities, err := s.authorities(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ports.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Roles:       roles,
		Authorities: authorities,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ports.AuthResult{
		Token:              token,
		TokenType:          tokenType,
		UserID:             user.ID,
		Username:           user.Username,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Roles:              roles,
		LanguagePreference: user.LanguagePreference,
	}, nil
}

// authorities resolves the role names of a user and the union of those names
// with the privileges the roles grant.
func (s *AuthService) authorities(ctx context.Context, userID string) ([]string, []string, error) {
	roleIDs, err := s.users.RoleIDs(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load roles: %w", err)
	}
	roles, err := s.roles.FindByIDs(ctx, roleIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load roles: %w", err)
	}

	names := make([]string, 0, len(roles))
	set := make(map[string]struct{})
	for _, r := range roles {
		names = append(names, r.Name)
		set[r.Name] = struct{}{}

		privilegeIDs, err := s.roles.PrivilegeIDs(ctx, r.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("load privileges of %s: %w", r.Name, err)
		}
		privileges, err := s.privileges.FindByIDs(ctx, privilegeIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("load privileges of %s: %w", r.Name, err)
		}
		for _, p := range privileges {
			set[p.Name] = struct{}{}
		}
	}

	authorities := make([]string, 0, len(set))
	for a := range set {
		authorities = append(authorities, a)
	}
	sort.Strings(names)
	sort.Strings(authorities)
	return names, authorities, nil
}
