// Package guard implements the request-time authorization pipeline:
// authenticate a token, then check module and permission capabilities
// against the sets embedded in it.
//
// Guards are stateless between requests and run sequentially; the first
// failure is terminal for the request. The module guard deliberately
// trusts the active-module snapshot inside the token instead of
// re-querying activation state: the token is the cached capability set
// and its TTL bounds the staleness window. A live re-check would change
// the latency and consistency characteristics of every guarded request,
// so it is intentionally not offered.
package guard

import (
	"github.com/mesalabs/mesa/internal/auth"
	"github.com/mesalabs/mesa/internal/auth/jwt"
	"github.com/mesalabs/mesa/internal/ids"
)

// TenantUserResult is the success payload of the tenant-scoped guards.
type TenantUserResult struct {
	Token    *auth.TenantUserToken
	TenantID ids.TenantID
}

// Chain evaluates guards for one request at a time. It holds no
// per-request state; a single Chain serves all requests.
type Chain struct {
	tokens *jwt.Service
}

// NewChain creates a guard chain over the given token validator.
func NewChain(tokens *jwt.Service) *Chain {
	return &Chain{tokens: tokens}
}

// TenantUser authenticates the request as a tenant user. It fails with
// an UNAUTHENTICATED denial when no usable credential is found, the
// token is invalid or expired, or the token is not of tenant-user kind.
func (g *Chain) TenantUser(ctx Context) (*TenantUserResult, *Error) {
	raw, ok := extractToken(ctx)
	if !ok {
		return nil, errUnauthenticated("authentication required")
	}

	claims, err := g.tokens.ValidateToken(raw)
	if err != nil {
		return nil, errUnauthenticated("invalid or expired token")
	}

	token, ok := auth.TenantUserFromClaims(claims)
	if !ok {
		return nil, errUnauthenticated("tenant credentials required")
	}

	return &TenantUserResult{Token: token, TenantID: token.TenantID}, nil
}

// SaaSAdmin authenticates the request as a platform admin.
func (g *Chain) SaaSAdmin(ctx Context) (*auth.SaaSAdminToken, *Error) {
	raw, ok := extractToken(ctx)
	if !ok {
		return nil, errUnauthenticated("authentication required")
	}

	claims, err := g.tokens.ValidateToken(raw)
	if err != nil {
		return nil, errUnauthenticated("invalid or expired token")
	}

	token, ok := auth.AdminFromClaims(claims)
	if !ok {
		return nil, errUnauthenticated("platform admin credentials required")
	}

	return token, nil
}

// Module authenticates as a tenant user and requires the module to be
// present in the token's active-module snapshot. Activation changes made
// after issuance become visible when the token is reissued.
func (g *Chain) Module(ctx Context, moduleID ids.ModuleID) (*TenantUserResult, *Error) {
	res, gerr := g.TenantUser(ctx)
	if gerr != nil {
		return nil, gerr
	}
	if !res.Token.HasModule(moduleID) {
		return nil, errModuleAccessDenied(moduleID.String())
	}
	return res, nil
}

// Permission authenticates as a tenant user and requires the permission
// string to be present in the token's permission set.
func (g *Chain) Permission(ctx Context, permission string) (*TenantUserResult, *Error) {
	res, gerr := g.TenantUser(ctx)
	if gerr != nil {
		return nil, gerr
	}
	if !res.Token.HasPermission(permission) {
		return nil, errPermissionDenied(permission)
	}
	return res, nil
}
