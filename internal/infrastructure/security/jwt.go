package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devcrm/crm-service/internal/core/ports"
)

const (
	issuer     = "crm-service"
	defaultTTL = 24 * time.Hour
)

// ErrInvalidToken indicates the token failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued to authenticated users. Subject holds the
// user id.
type Claims struct {
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token asserting identity.
func (s *TokenService) Issue(identity ports.Identity) (string, error) {
	if strings.TrimSpace(identity.UserID) == "" {
		return "", errors.New("user id is required")
	}

	now := s.now().UTC()
	claims := Claims{
		Username:    identity.Username,
		Roles:       identity.Roles,
		Authorities: identity.Authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm, issuer and expiry and returns the
// identity the token asserts.
func (s *TokenService) Verify(token string) (ports.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ports.Identity{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ports.Identity{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return ports.Identity{}, ErrInvalidToken
	}

	return ports.Identity{
		UserID:      claims.Subject,
		Username:    claims.Username,
		Roles:       claims.Roles,
		Authorities: claims.Authorities,
	}, nil
}
