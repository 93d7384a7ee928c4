package dto

// LoginRequest is the body of both login endpoints.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the public view of a login account.
type UserInfo struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	TenantID    string   `json:"tenantId,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// LoginResponse carries the issued token and the account it represents.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}
