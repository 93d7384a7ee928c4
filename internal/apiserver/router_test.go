package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/auth/jwt"
	"github.com/mesalabs/mesa/internal/common/config"
	"github.com/mesalabs/mesa/internal/common/dto"
	"github.com/mesalabs/mesa/internal/module"
	"github.com/mesalabs/mesa/internal/module/activation"
	"github.com/mesalabs/mesa/internal/plan"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "mesa.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: "0123456789abcdef0123456789abcdef",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	registry := module.NewDBRegistry(db)
	require.NoError(t, module.RegisterBuiltins(context.Background(), registry))

	activations := activation.NewService(registry, activation.NewDBRepository(db))
	ledger := plan.NewLedger(plan.NewDBRepository(db), plan.NewDBUsageStore(db))

	require.NoError(t, ledger.SavePlan(context.Background(), &plan.Plan{
		ID:     "plan_free",
		Slug:   plan.BaselineSlug,
		Name:   "Free",
		Limits: map[string]int64{"users": 3},
		Status: "active",
	}))

	router := NewRouter(Deps{
		DB:          db,
		JWTService:  jwtService,
		Registry:    registry,
		Activations: activations,
		Ledger:      ledger,
	})
	return &testServer{router: router, db: db}
}

func (s *testServer) seedUser(t *testing.T, id, tenantID, email, password string, permissions []string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	perms := ""
	if len(permissions) > 0 {
		raw, err := json.Marshal(permissions)
		require.NoError(t, err)
		perms = string(raw)
	}
	require.NoError(t, s.db.Create(&database.User{
		ID:           id,
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "manager",
		Permissions:  perms,
		IsActive:     true,
	}).Error)
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, path, email, password string) dto.LoginResponse {
	w := s.do(t, http.MethodPost, path, "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLoginFlows(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "user-1", "tenant-a", "owner@acme.test", "s3cret", []string{"orders.read"})
	s.seedUser(t, "admin-1", "", "root@mesa.test", "adminpw", nil)

	t.Run("tenant login", func(t *testing.T) {
		resp := s.login(t, "/api/auth/login", "owner@acme.test", "s3cret")
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "tenant-a", resp.User.TenantID)
		assert.Equal(t, []string{"orders.read"}, resp.User.Permissions)
	})

	t.Run("admin login", func(t *testing.T) {
		resp := s.login(t, "/api/auth/admin/login", "root@mesa.test", "adminpw")
		assert.NotEmpty(t, resp.Token)
		assert.Empty(t, resp.User.TenantID)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "owner@acme.test", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin cannot use tenant login", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "root@mesa.test", Password: "adminpw"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestModuleLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "user-1", "tenant-a", "owner@acme.test", "s3cret", nil)
	s.seedUser(t, "admin-1", "", "root@mesa.test", "adminpw", nil)

	admin := s.login(t, "/api/auth/admin/login", "root@mesa.test", "adminpw")

	// tenant guard keeps admins out, admin guard keeps tenants out
	tenant := s.login(t, "/api/auth/login", "owner@acme.test", "s3cret")
	w := s.do(t, http.MethodGet, "/api/admin/modules", tenant.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodGet, "/api/tenant/modules", admin.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// enabling an unregistered module is a 404
	w = s.do(t, http.MethodPost, "/api/admin/tenants/tenant-a/modules/ghost/enable", admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/tenants/tenant-a/modules/orders/enable", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the module snapshot lands in tokens issued after the change
	tenant = s.login(t, "/api/auth/login", "owner@acme.test", "s3cret")
	w = s.do(t, http.MethodGet, "/api/tenant/modules", tenant.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mods struct {
		Modules []string `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mods))
	assert.Equal(t, []string{"orders"}, mods.Modules)

	w = s.do(t, http.MethodPost, "/api/admin/tenants/tenant-a/modules/orders/disable", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/tenants/tenant-a/modules", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acts []dto.ActivationInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acts))
	assert.Empty(t, acts)
}

func TestAdminCatalogOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "admin-1", "", "root@mesa.test", "adminpw", nil)
	admin := s.login(t, "/api/auth/admin/login", "root@mesa.test", "adminpw")

	// slug lookups resolve to the canonical definition
	w := s.do(t, http.MethodGet, "/api/admin/modules/kitchen-display", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mod dto.ModuleInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mod))
	assert.Equal(t, "kds", mod.ID)

	w = s.do(t, http.MethodGet, "/api/admin/modules/ghost", admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/plans/plan_free", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p dto.PlanInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Free", p.Name)

	w = s.do(t, http.MethodGet, "/api/admin/plans/plan_ghost", admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsageOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "user-1", "tenant-a", "owner@acme.test", "s3cret", nil)

	tenant := s.login(t, "/api/auth/login", "owner@acme.test", "s3cret")

	// plan_free caps users at 3
	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/tenant/usage/users/increment", tenant.Token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodPost, "/api/tenant/usage/users/increment", tenant.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PLAN_LIMIT_EXCEEDED", body["error"])

	w = s.do(t, http.MethodGet, "/api/tenant/usage/users", tenant.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage dto.UsageInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, int64(3), usage.Used)
	assert.Equal(t, int64(3), usage.Limit)

	w = s.do(t, http.MethodPost, "/api/tenant/usage/users/increment", tenant.Token, dto.IncrementUsageRequest{Amount: -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
