package cnst

const (
	// AppName is the canonical application name
	AppName = "mesa"

	// XAuthContext is the header that disambiguates which auth cookie to
	// consult when no bearer header is present
	XAuthContext = "X-Auth-Context"

	// AuthContextSaaSAdmin selects the platform-admin cookie
	AuthContextSaaSAdmin = "saas_admin"
	// AuthContextTenantUser selects the tenant-user cookie
	AuthContextTenantUser = "tenant_user"

	// SaaSAdminCookie is the cookie carrying a platform-admin token
	SaaSAdminCookie = "saas_auth_token"
	// TenantUserCookie is the cookie carrying a tenant-user token
	TenantUserCookie = "tenant_auth_token"
)

const (
	// CtxAuthToken is the gin context key holding the resolved auth token
	CtxAuthToken = "auth_token"
	// CtxTenantID is the gin context key holding the resolved tenant id
	CtxTenantID = "tenant_id"
	// CtxUserID is the gin context key holding the resolved user id
	CtxUserID = "user_id"
)
