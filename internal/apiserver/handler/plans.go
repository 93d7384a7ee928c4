package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesalabs/mesa/internal/apiserver/middleware"
	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/common/dto"
	"github.com/mesalabs/mesa/internal/ids"
	"github.com/mesalabs/mesa/internal/plan"
)

// Plans handles the plan catalog, tenant assignments and usage.
type Plans struct {
	ledger *plan.Ledger
}

// NewPlans creates the plan handler.
func NewPlans(ledger *plan.Ledger) *Plans {
	return &Plans{ledger: ledger}
}

// List returns every plan. Admin-guarded.
func (h *Plans) List(c *gin.Context) {
	plans, err := h.ledger.ListAllPlans(c.Request.Context())
	if err != nil {
		internalError(c, "failed to list plans")
		return
	}
	out := make([]dto.PlanInfo, 0, len(plans))
	for i := range plans {
		out = append(out, toPlanInfo(&plans[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one plan by id. Admin-guarded.
func (h *Plans) Get(c *gin.Context) {
	p, err := h.ledger.GetPlanByID(c.Request.Context(), c.Param("planID"))
	if err != nil {
		internalError(c, "failed to load plan")
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "PLAN_NOT_FOUND", "message": "plan does not exist"})
		return
	}
	c.JSON(http.StatusOK, toPlanInfo(p))
}

// Save creates or replaces a plan. Admin-guarded.
func (h *Plans) Save(c *gin.Context) {
	var req dto.SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p := &plan.Plan{
		ID:     req.ID,
		Slug:   req.Slug,
		Name:   req.Name,
		Limits: req.Limits,
		Status: req.Status,
	}
	if p.Slug == "" {
		p.Slug = p.ID
	}
	if p.Status == "" {
		p.Status = "active"
	}
	for _, m := range req.Modules {
		p.Modules = append(p.Modules, ids.ModuleID(m))
	}

	if err := h.ledger.SavePlan(c.Request.Context(), p); err != nil {
		internalError(c, "failed to save plan")
		return
	}
	c.JSON(http.StatusOK, toPlanInfo(p))
}

// ChangeTenantPlan moves a tenant onto another plan. Admin-guarded.
func (h *Plans) ChangeTenantPlan(c *gin.Context) {
	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tenantID := ids.TenantID(c.Param("tenantID"))
	err := h.ledger.ChangeTenantPlan(c.Request.Context(), tenantID, req.PlanID)
	if errors.Is(err, cnst.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "PLAN_NOT_FOUND", "message": err.Error()})
		return
	}
	if err != nil {
		internalError(c, "failed to change plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "changed"})
}

// MyPlan returns the calling tenant's effective plan.
func (h *Plans) MyPlan(c *gin.Context) {
	tenantID := middleware.TenantIDFrom(c)

	p, err := h.ledger.GetTenantPlan(c.Request.Context(), tenantID)
	if err != nil {
		internalError(c, "failed to load plan")
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "PLAN_NOT_FOUND", "message": "tenant has no plan"})
		return
	}
	c.JSON(http.StatusOK, toPlanInfo(p))
}

// MyUsage reports the calling tenant's consumption for one limit key.
func (h *Plans) MyUsage(c *gin.Context) {
	tenantID := middleware.TenantIDFrom(c)
	key := c.Param("key")

	used, err := h.ledger.GetTenantUsage(c.Request.Context(), tenantID, key)
	if err != nil {
		internalError(c, "failed to load usage")
		return
	}
	limit, err := h.ledger.CheckTenantLimit(c.Request.Context(), tenantID, key)
	if err != nil {
		internalError(c, "failed to load limit")
		return
	}
	c.JSON(http.StatusOK, dto.UsageInfo{Key: key, Used: used, Limit: limit})
}

// IncrementUsage consumes quota under a limit key for the calling
// tenant. A 409 means the plan limit is exhausted.
func (h *Plans) IncrementUsage(c *gin.Context) {
	tenantID := middleware.TenantIDFrom(c)
	key := c.Param("key")

	req := dto.IncrementUsageRequest{Amount: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	err := h.ledger.IncrementTenantUsage(c.Request.Context(), tenantID, key, req.Amount)
	switch {
	case errors.Is(err, cnst.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_AMOUNT", "message": err.Error()})
	case errors.Is(err, cnst.ErrPlanLimitExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "PLAN_LIMIT_EXCEEDED", "message": err.Error()})
	case errors.Is(err, cnst.ErrTenantHasNoPlan):
		c.JSON(http.StatusConflict, gin.H{"error": "TENANT_HAS_NO_PLAN", "message": err.Error()})
	case err != nil:
		internalError(c, "failed to record usage")
	default:
		c.JSON(http.StatusOK, gin.H{"status": "recorded"})
	}
}

func toPlanInfo(p *plan.Plan) dto.PlanInfo {
	info := dto.PlanInfo{
		ID:     p.ID,
		Slug:   p.Slug,
		Name:   p.Name,
		Limits: p.Limits,
		Status: p.Status,
	}
	info.Modules = make([]string, 0, len(p.Modules))
	for _, m := range p.Modules {
		info.Modules = append(info.Modules, m.String())
	}
	return info
}
