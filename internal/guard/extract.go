package guard

import (
	"net/http"
	"strings"

	"github.com/mesalabs/mesa/internal/common/cnst"
)

// extractToken resolves the raw credential for a request.
//
// Precedence: an explicit pre-extracted token wins, then a well-formed
// Authorization header ("Bearer <token>", exactly two parts), then a
// cookie. When both auth cookies are present the X-Auth-Context header
// picks one; without a hint the admin cookie wins the tiebreak.
func extractToken(ctx Context) (string, bool) {
	if ctx.Token != "" {
		return ctx.Token, true
	}

	if header := ctx.header("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1], true
		}
	}

	cookies := parseCookies(ctx.header("Cookie"))
	admin, tenant := cookies[cnst.SaaSAdminCookie], cookies[cnst.TenantUserCookie]

	switch ctx.header(cnst.XAuthContext) {
	case cnst.AuthContextSaaSAdmin:
		if admin != "" {
			return admin, true
		}
	case cnst.AuthContextTenantUser:
		if tenant != "" {
			return tenant, true
		}
	default:
		if admin != "" {
			return admin, true
		}
		if tenant != "" {
			return tenant, true
		}
	}

	return "", false
}

func parseCookies(raw string) map[string]string {
	out := make(map[string]string)
	if raw == "" {
		return out
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return out
	}
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out
}
