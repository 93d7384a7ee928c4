package guard

// Context is the per-request input the guard chain evaluates. It is
// built once by the dispatcher from the incoming request and read-only
// from the guards' point of view.
type Context struct {
	// Token is an already-extracted raw token, when the dispatcher has
	// one. When empty, the guards extract it from Headers.
	Token string
	// Headers holds the request headers relevant to authentication
	// (Authorization, Cookie, X-Auth-Context) keyed by canonical name.
	Headers map[string]string
	// Subdomain is the tenant subdomain hint, when the request came in
	// on a tenant host. Informational; guards do not authorize by it.
	Subdomain string
	// PathParams holds resolved route parameters.
	PathParams map[string]string
}

func (c Context) header(name string) string {
	if c.Headers == nil {
		return ""
	}
	return c.Headers[name]
}
