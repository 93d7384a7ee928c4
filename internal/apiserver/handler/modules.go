package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesalabs/mesa/internal/apiserver/middleware"
	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/common/dto"
	"github.com/mesalabs/mesa/internal/ids"
	"github.com/mesalabs/mesa/internal/module"
	"github.com/mesalabs/mesa/internal/module/activation"
)

// Modules handles the module catalog and per-tenant activations.
type Modules struct {
	registry    module.Registry
	activations *activation.Service
}

// NewModules creates the module handler.
func NewModules(registry module.Registry, activations *activation.Service) *Modules {
	return &Modules{registry: registry, activations: activations}
}

// List returns every registered module definition. Admin-guarded.
func (h *Modules) List(c *gin.Context) {
	defs, err := h.registry.ListRegisteredModules(c.Request.Context())
	if err != nil {
		internalError(c, "failed to list modules")
		return
	}
	out := make([]dto.ModuleInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, toModuleInfo(def))
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one module definition, looked up by canonical id or
// slug. Admin-guarded.
func (h *Modules) Get(c *gin.Context) {
	canonical, err := h.registry.Resolve(c.Request.Context(), c.Param("module"))
	if errors.Is(err, cnst.ErrModuleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "MODULE_NOT_FOUND", "message": err.Error()})
		return
	}
	if err != nil {
		internalError(c, "failed to resolve module")
		return
	}

	def, err := h.registry.GetModuleDefinition(c.Request.Context(), canonical)
	if err != nil || def == nil {
		internalError(c, "failed to load module")
		return
	}
	c.JSON(http.StatusOK, toModuleInfo(*def))
}

// Register upserts a module definition. Admin-guarded.
func (h *Modules) Register(c *gin.Context) {
	var req dto.RegisterModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	def := module.Definition{
		ID:           ids.ModuleID(req.ID),
		Slug:         req.Slug,
		Name:         req.Name,
		Version:      req.Version,
		EventTypes:   req.EventTypes,
		RequiredPlan: req.RequiredPlan,
	}
	for _, p := range req.Permissions {
		def.Permissions = append(def.Permissions, module.Permission{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		})
	}

	if err := h.registry.Register(c.Request.Context(), def); err != nil {
		internalError(c, "failed to register module")
		return
	}
	c.JSON(http.StatusOK, toModuleInfo(def))
}

// Enable activates a module for a tenant. Admin-guarded. The module
// path parameter must be a registered module id.
func (h *Modules) Enable(c *gin.Context) {
	tenantID := ids.TenantID(c.Param("tenantID"))
	moduleID := ids.ModuleID(c.Param("module"))

	err := h.activations.Enable(c.Request.Context(), tenantID, moduleID)
	if errors.Is(err, cnst.ErrModuleNotRegistered) {
		c.JSON(http.StatusNotFound, gin.H{"error": "MODULE_NOT_REGISTERED", "message": err.Error()})
		return
	}
	if err != nil {
		internalError(c, "failed to enable module")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "enabled"})
}

// Disable soft-deletes a tenant's activation. Admin-guarded. Unknown
// modules and missing activations succeed as no-ops.
func (h *Modules) Disable(c *gin.Context) {
	tenantID := ids.TenantID(c.Param("tenantID"))
	moduleID := ids.ModuleID(c.Param("module"))

	if err := h.activations.Disable(c.Request.Context(), tenantID, moduleID); err != nil {
		internalError(c, "failed to disable module")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disabled"})
}

// ListActivations returns a tenant's active modules with timestamps.
// Admin-guarded.
func (h *Modules) ListActivations(c *gin.Context) {
	tenantID := ids.TenantID(c.Param("tenantID"))

	records, err := h.activations.ListEnabledWithDetails(c.Request.Context(), tenantID)
	if err != nil {
		internalError(c, "failed to list activations")
		return
	}
	out := make([]dto.ActivationInfo, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.ActivationInfo{
			ModuleID:      rec.ModuleID.String(),
			Status:        rec.Status,
			ActivatedAt:   rec.ActivatedAt,
			DeactivatedAt: rec.DeactivatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListMine returns the calling tenant user's active modules. The tenant
// comes from the guard, never from the request.
func (h *Modules) ListMine(c *gin.Context) {
	tenantID := middleware.TenantIDFrom(c)

	modules, err := h.activations.ListEnabled(c.Request.Context(), tenantID)
	if err != nil {
		internalError(c, "failed to list modules")
		return
	}
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.String())
	}
	c.JSON(http.StatusOK, gin.H{"modules": out})
}

func toModuleInfo(def module.Definition) dto.ModuleInfo {
	info := dto.ModuleInfo{
		ID:           def.ID.String(),
		Slug:         def.Slug,
		Name:         def.Name,
		Version:      def.Version,
		EventTypes:   def.EventTypes,
		RequiredPlan: def.RequiredPlan,
	}
	for _, p := range def.Permissions {
		info.Permissions = append(info.Permissions, dto.PermissionInfo{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		})
	}
	return info
}
