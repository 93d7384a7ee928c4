package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mesalabs/mesa/internal/auth"
	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/guard"
	"github.com/mesalabs/mesa/internal/ids"
	"github.com/mesalabs/mesa/pkg/metrics"
)

// Guards adapts the guard chain to gin. Each middleware builds a
// guard.Context from the request, runs one guard, and either aborts
// with the denial or stores the authenticated identity on the gin
// context for handlers downstream.
type Guards struct {
	chain   *guard.Chain
	metrics *metrics.Metrics
}

// NewGuards creates the gin-facing guard middleware set. metrics may be
// nil when verdict counters are not wanted.
func NewGuards(chain *guard.Chain, m *metrics.Metrics) *Guards {
	return &Guards{chain: chain, metrics: m}
}

// TenantUser requires a valid tenant-user token.
func (g *Guards) TenantUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, gerr := g.chain.TenantUser(requestContext(c))
		if gerr != nil {
			g.deny(c, "tenant_user", gerr)
			return
		}
		g.allowTenant(c, "tenant_user", res)
		c.Next()
	}
}

// SaaSAdmin requires a valid platform-admin token.
func (g *Guards) SaaSAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, gerr := g.chain.SaaSAdmin(requestContext(c))
		if gerr != nil {
			g.deny(c, "saas_admin", gerr)
			return
		}
		g.verdict("saas_admin", "allowed")
		c.Set(cnst.CtxAuthToken, token)
		c.Set(cnst.CtxUserID, token.UserID.String())
		c.Next()
	}
}

// Module requires a tenant-user token whose active-module set contains
// moduleID.
func (g *Guards) Module(moduleID ids.ModuleID) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, gerr := g.chain.Module(requestContext(c), moduleID)
		if gerr != nil {
			g.deny(c, "module", gerr)
			return
		}
		g.allowTenant(c, "module", res)
		c.Next()
	}
}

// Permission requires a tenant-user token carrying the permission.
func (g *Guards) Permission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, gerr := g.chain.Permission(requestContext(c), permission)
		if gerr != nil {
			g.deny(c, "permission", gerr)
			return
		}
		g.allowTenant(c, "permission", res)
		c.Next()
	}
}

func (g *Guards) allowTenant(c *gin.Context, guardName string, res *guard.TenantUserResult) {
	g.verdict(guardName, "allowed")
	c.Set(cnst.CtxAuthToken, res.Token)
	c.Set(cnst.CtxTenantID, res.TenantID.String())
	c.Set(cnst.CtxUserID, res.Token.UserID.String())
}

func (g *Guards) deny(c *gin.Context, guardName string, gerr *guard.Error) {
	g.verdict(guardName, string(gerr.Code))
	c.AbortWithStatusJSON(gerr.HTTPStatus(), gin.H{
		"error":   string(gerr.Code),
		"message": gerr.Message,
	})
}

func (g *Guards) verdict(guardName, outcome string) {
	if g.metrics != nil {
		g.metrics.GuardVerdict(guardName, outcome)
	}
}

func requestContext(c *gin.Context) guard.Context {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	return guard.Context{
		Headers: map[string]string{
			"Authorization":   c.GetHeader("Authorization"),
			"Cookie":          c.GetHeader("Cookie"),
			cnst.XAuthContext: c.GetHeader(cnst.XAuthContext),
		},
		Subdomain:  subdomain(c.Request.Host),
		PathParams: params,
	}
}

// subdomain returns the first host label when the request came in on a
// tenant host like acme.mesa.app. Bare domains and IPs yield "".
func subdomain(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if strings.Count(host, ".") < 2 {
		return ""
	}
	return strings.SplitN(host, ".", 2)[0]
}

// TenantTokenFrom returns the tenant-user token a guard stored on the
// context, or nil when the route was not tenant-guarded.
func TenantTokenFrom(c *gin.Context) *auth.TenantUserToken {
	v, ok := c.Get(cnst.CtxAuthToken)
	if !ok {
		return nil
	}
	token, _ := v.(*auth.TenantUserToken)
	return token
}

// AdminTokenFrom returns the platform-admin token a guard stored on the
// context, or nil when the route was not admin-guarded.
func AdminTokenFrom(c *gin.Context) *auth.SaaSAdminToken {
	v, ok := c.Get(cnst.CtxAuthToken)
	if !ok {
		return nil
	}
	token, _ := v.(*auth.SaaSAdminToken)
	return token
}

// TenantIDFrom returns the tenant id a guard stored on the context.
func TenantIDFrom(c *gin.Context) ids.TenantID {
	return ids.TenantID(c.GetString(cnst.CtxTenantID))
}
