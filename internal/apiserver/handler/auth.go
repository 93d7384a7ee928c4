package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/auth/jwt"
	"github.com/mesalabs/mesa/internal/common/dto"
	"github.com/mesalabs/mesa/internal/ids"
	"github.com/mesalabs/mesa/internal/module/activation"
)

// Auth handles login for both credential kinds. Tenant logins embed the
// user's permission set and the tenant's active modules into the issued
// token, so the guard chain can authorize without further lookups.
type Auth struct {
	db          *gorm.DB
	jwtService  *jwt.Service
	activations *activation.Service
}

// NewAuth creates the authentication handler.
func NewAuth(db *gorm.DB, jwtService *jwt.Service, activations *activation.Service) *Auth {
	return &Auth{
		db:          db,
		jwtService:  jwtService,
		activations: activations,
	}
}

// Login authenticates a tenant user by email and password.
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, ok := h.verify(c, req.Email, req.Password)
	if !ok {
		return
	}
	if user.TenantID == "" {
		// Platform admins sign in through the admin endpoint.
		invalidCredentials(c)
		return
	}

	permissions := decodePermissions(user.Permissions)
	modules, err := h.activations.ListEnabled(c.Request.Context(), ids.TenantID(user.TenantID))
	if err != nil {
		internalError(c, "failed to load active modules")
		return
	}

	token, err := h.jwtService.GenerateTenantToken(
		ids.UserID(user.ID), ids.TenantID(user.TenantID), user.Role, permissions, modules)
	if err != nil {
		internalError(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User: dto.UserInfo{
			ID:          user.ID,
			Email:       user.Email,
			Role:        user.Role,
			TenantID:    user.TenantID,
			Permissions: permissions,
		},
	})
}

// AdminLogin authenticates a platform admin by email and password.
func (h *Auth) AdminLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, ok := h.verify(c, req.Email, req.Password)
	if !ok {
		return
	}
	if user.TenantID != "" {
		invalidCredentials(c)
		return
	}

	token, err := h.jwtService.GenerateAdminToken(ids.UserID(user.ID), user.Role)
	if err != nil {
		internalError(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User: dto.UserInfo{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// verify looks the user up and checks the password. It writes the error
// response itself; callers stop when ok is false. Unknown accounts and
// wrong passwords are indistinguishable in the response.
func (h *Auth) verify(c *gin.Context, email, password string) (*database.User, bool) {
	var user database.User
	err := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		invalidCredentials(c)
		return nil, false
	}
	if err != nil {
		internalError(c, "failed to look up account")
		return nil, false
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "ACCOUNT_DISABLED", "message": "account is disabled"})
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		invalidCredentials(c)
		return nil, false
	}
	return &user, true
}

func decodePermissions(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": err.Error()})
}

func invalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED", "message": "invalid email or password"})
}

func internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL", "message": message})
}
