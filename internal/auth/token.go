// Package auth models the decoded identity tokens the guard chain
// consumes. Tokens are validated and decoded here only; issuance happens
// in the apiserver's login handlers.
package auth

import (
	"github.com/mesalabs/mesa/internal/auth/jwt"
	"github.com/mesalabs/mesa/internal/ids"
)

// SaaSAdminToken is the decoded identity of a platform administrator.
type SaaSAdminToken struct {
	UserID ids.UserID
	Role   string
}

// TenantUserToken is the decoded identity of a tenant user. Permissions
// and ActiveModules are the opaque capability sets embedded at issuance;
// the guard layer never infers either from the role.
type TenantUserToken struct {
	UserID        ids.UserID
	TenantID      ids.TenantID
	Role          string
	Permissions   []string
	ActiveModules []ids.ModuleID
}

// HasPermission reports whether the permission string is present in the
// token's set. Permissions are opaque: no wildcards, no hierarchy.
func (t *TenantUserToken) HasPermission(permission string) bool {
	for _, p := range t.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasModule reports whether the module is present in the token's
// active-module snapshot.
func (t *TenantUserToken) HasModule(moduleID ids.ModuleID) bool {
	for _, m := range t.ActiveModules {
		if m == moduleID {
			return true
		}
	}
	return false
}

// AdminFromClaims converts validated claims into a SaaSAdminToken. The
// second return is false when the claims are not of admin kind.
func AdminFromClaims(c *jwt.Claims) (*SaaSAdminToken, bool) {
	if c == nil || c.Kind != jwt.KindSaaSAdmin {
		return nil, false
	}
	return &SaaSAdminToken{
		UserID: ids.UserID(c.UserID),
		Role:   c.Role,
	}, true
}

// TenantUserFromClaims converts validated claims into a TenantUserToken.
// The second return is false when the claims are not of tenant-user kind
// or carry no tenant id.
func TenantUserFromClaims(c *jwt.Claims) (*TenantUserToken, bool) {
	if c == nil || c.Kind != jwt.KindTenantUser || c.TenantID == "" {
		return nil, false
	}
	modules := make([]ids.ModuleID, 0, len(c.ActiveModules))
	for _, m := range c.ActiveModules {
		modules = append(modules, ids.ModuleID(m))
	}
	return &TenantUserToken{
		UserID:        ids.UserID(c.UserID),
		TenantID:      ids.TenantID(c.TenantID),
		Role:          c.Role,
		Permissions:   c.Permissions,
		ActiveModules: modules,
	}, true
}
