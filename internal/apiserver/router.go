// Package apiserver assembles the HTTP surface: handlers behind the
// guard middleware, plus health and metrics endpoints.
package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mesalabs/mesa/internal/apiserver/handler"
	"github.com/mesalabs/mesa/internal/apiserver/middleware"
	"github.com/mesalabs/mesa/internal/auth/jwt"
	"github.com/mesalabs/mesa/internal/guard"
	"github.com/mesalabs/mesa/internal/module"
	"github.com/mesalabs/mesa/internal/module/activation"
	"github.com/mesalabs/mesa/internal/plan"
	"github.com/mesalabs/mesa/pkg/metrics"
)

// Deps are the services the router wires together.
type Deps struct {
	DB          *gorm.DB
	JWTService  *jwt.Service
	Registry    module.Registry
	Activations *activation.Service
	Ledger      *plan.Ledger
	Metrics     *metrics.Metrics
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	guards := middleware.NewGuards(guard.NewChain(deps.JWTService), deps.Metrics)

	authHandler := handler.NewAuth(deps.DB, deps.JWTService, deps.Activations)
	moduleHandler := handler.NewModules(deps.Registry, deps.Activations)
	planHandler := handler.NewPlans(deps.Ledger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/admin/login", authHandler.AdminLogin)

	tenant := r.Group("/api/tenant", guards.TenantUser())
	{
		tenant.GET("/modules", moduleHandler.ListMine)
		tenant.GET("/plan", planHandler.MyPlan)
		tenant.GET("/usage/:key", planHandler.MyUsage)
		tenant.POST("/usage/:key/increment", planHandler.IncrementUsage)
	}

	admin := r.Group("/api/admin", guards.SaaSAdmin())
	{
		admin.GET("/modules", moduleHandler.List)
		admin.POST("/modules", moduleHandler.Register)
		admin.GET("/modules/:module", moduleHandler.Get)
		admin.GET("/plans", planHandler.List)
		admin.POST("/plans", planHandler.Save)
		admin.GET("/plans/:planID", planHandler.Get)
		admin.GET("/tenants/:tenantID/modules", moduleHandler.ListActivations)
		admin.POST("/tenants/:tenantID/modules/:module/enable", moduleHandler.Enable)
		admin.POST("/tenants/:tenantID/modules/:module/disable", moduleHandler.Disable)
		admin.PUT("/tenants/:tenantID/plan", planHandler.ChangeTenantPlan)
	}

	return r
}
