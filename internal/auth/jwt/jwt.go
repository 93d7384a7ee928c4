package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mesalabs/mesa/internal/ids"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidAlgorithm = errors.New("invalid signing algorithm")
	ErrEmptySecretKey   = errors.New("secret key cannot be empty")
	ErrWeakSecretKey    = errors.New("secret key must be at least 32 characters")
	ErrInvalidDuration  = errors.New("duration must be positive")
)

// TokenKind discriminates the two credential kinds the platform issues.
type TokenKind string

const (
	// KindSaaSAdmin marks a platform-admin credential
	KindSaaSAdmin TokenKind = "saas_admin"
	// KindTenantUser marks a tenant-scoped user credential
	KindTenantUser TokenKind = "tenant_user"
)

// Claims is the JWT payload. TenantID, Permissions and ActiveModules are
// only populated for tenant-user tokens. The permission and module sets
// are a snapshot taken at issuance; the guard chain trusts them for the
// lifetime of the token.
type Claims struct {
	Kind          TokenKind `json:"kind"`
	UserID        string    `json:"user_id"`
	Role          string    `json:"role"`
	TenantID      string    `json:"tenant_id,omitempty"`
	Permissions   []string  `json:"permissions,omitempty"`
	ActiveModules []string  `json:"active_modules,omitempty"`
	jwt.RegisteredClaims
}

// Config represents the JWT configuration
type Config struct {
	SecretKey string        `yaml:"secret_key"`
	Duration  time.Duration `yaml:"duration"`
}

// Service signs and validates platform tokens
type Service struct {
	config Config
}

// NewService creates a new JWT service
func NewService(config Config) (*Service, error) {
	if config.SecretKey == "" {
		return nil, ErrEmptySecretKey
	}
	if len(config.SecretKey) < 32 {
		return nil, ErrWeakSecretKey
	}
	if config.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	return &Service{
		config: config,
	}, nil
}

// TTL returns the configured token lifetime. It bounds how stale the
// active-module snapshot inside a token can get.
func (s *Service) TTL() time.Duration {
	return s.config.Duration
}

// GenerateAdminToken issues a platform-admin token
func (s *Service) GenerateAdminToken(userID ids.UserID, role string) (string, error) {
	return s.sign(&Claims{
		Kind:   KindSaaSAdmin,
		UserID: userID.String(),
		Role:   role,
	})
}

// GenerateTenantToken issues a tenant-user token carrying the user's
// permission set and the tenant's active modules at issuance time.
func (s *Service) GenerateTenantToken(userID ids.UserID, tenantID ids.TenantID, role string, permissions []string, activeModules []ids.ModuleID) (string, error) {
	modules := make([]string, 0, len(activeModules))
	for _, m := range activeModules {
		modules = append(modules, m.String())
	}
	return s.sign(&Claims{
		Kind:          KindTenantUser,
		UserID:        userID.String(),
		Role:          role,
		TenantID:      tenantID.String(),
		Permissions:   permissions,
		ActiveModules: modules,
	})
}

func (s *Service) sign(claims *Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Duration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// ValidateToken validates a JWT token and returns its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAlgorithm
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
