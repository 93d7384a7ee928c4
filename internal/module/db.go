package module

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/ids"
)

// DBRegistry implements Registry on the relational store. Unlike the
// in-process variant it survives restarts and resolves a module by
// canonical id or slug.
type DBRegistry struct {
	db *gorm.DB
}

// NewDBRegistry creates a registry over an opened database.
func NewDBRegistry(db *gorm.DB) *DBRegistry {
	return &DBRegistry{db: db}
}

func (r *DBRegistry) Register(ctx context.Context, def Definition) error {
	rec, err := toRecord(def)
	if err != nil {
		return err
	}
	// Upsert by id: last write wins, no merge.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

func (r *DBRegistry) GetModuleDefinition(ctx context.Context, id ids.ModuleID) (*Definition, error) {
	var rec database.ModuleRecord
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(&rec)
}

func (r *DBRegistry) ListRegisteredModules(ctx context.Context) ([]Definition, error) {
	var recs []database.ModuleRecord
	if err := r.db.WithContext(ctx).Order("name asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]Definition, 0, len(recs))
	for i := range recs {
		def, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *def)
	}
	return out, nil
}

// Resolve tries the canonical id first, then the slug index. No string
// coercion: an unknown key fails with ErrModuleNotFound.
func (r *DBRegistry) Resolve(ctx context.Context, idOrSlug string) (ids.ModuleID, error) {
	var rec database.ModuleRecord
	err := r.db.WithContext(ctx).Where("id = ?", idOrSlug).First(&rec).Error
	if err == nil {
		return ids.ModuleID(rec.ID), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	err = r.db.WithContext(ctx).Where("slug = ?", idOrSlug).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", cnst.ErrModuleNotFound
	}
	if err != nil {
		return "", err
	}
	return ids.ModuleID(rec.ID), nil
}

func (r *DBRegistry) ActivateModuleForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) error {
	def, err := r.GetModuleDefinition(ctx, moduleID)
	if err != nil {
		return err
	}
	if def == nil {
		return cnst.ErrModuleNotFound
	}

	now := time.Now()
	// Create-if-absent, then flip inactive rows back to active. Both
	// statements are atomic on the (tenant, module) unique key, so
	// concurrent activations converge on a single row.
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "module_id"}},
			DoNothing: true,
		}).
		Create(&database.TenantModuleActivation{
			PublicID:    uuid.NewString(),
			TenantID:    tenantID.String(),
			ModuleID:    moduleID.String(),
			Status:      database.ActivationActive,
			ActivatedAt: now,
		}).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&database.TenantModuleActivation{}).
		Where("tenant_id = ? AND module_id = ? AND status = ?",
			tenantID.String(), moduleID.String(), database.ActivationInactive).
		Updates(map[string]any{
			"status":         database.ActivationActive,
			"activated_at":   now,
			"deactivated_at": nil,
		}).Error
}

func (r *DBRegistry) DeactivateModuleForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) error {
	// Soft delete; missing or already-inactive pairs are a no-op.
	return r.db.WithContext(ctx).
		Model(&database.TenantModuleActivation{}).
		Where("tenant_id = ? AND module_id = ? AND status = ?",
			tenantID.String(), moduleID.String(), database.ActivationActive).
		Updates(map[string]any{
			"status":         database.ActivationInactive,
			"deactivated_at": time.Now(),
		}).Error
}

func (r *DBRegistry) IsModuleActiveForTenant(ctx context.Context, moduleID ids.ModuleID, tenantID ids.TenantID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&database.TenantModuleActivation{}).
		Where("tenant_id = ? AND module_id = ? AND status = ? AND deactivated_at IS NULL",
			tenantID.String(), moduleID.String(), database.ActivationActive).
		Count(&count).Error
	return count > 0, err
}

func toRecord(def Definition) (*database.ModuleRecord, error) {
	permissions, err := json.Marshal(def.Permissions)
	if err != nil {
		return nil, err
	}
	eventTypes, err := json.Marshal(def.EventTypes)
	if err != nil {
		return nil, err
	}
	slug := def.Slug
	if slug == "" {
		// The slug column is unique; fall back to the id so definitions
		// without a slug don't collide on the empty string.
		slug = def.ID.String()
	}
	return &database.ModuleRecord{
		ID:           def.ID.String(),
		Slug:         slug,
		Name:         def.Name,
		Version:      def.Version,
		Permissions:  string(permissions),
		EventTypes:   string(eventTypes),
		RequiredPlan: def.RequiredPlan,
	}, nil
}

func fromRecord(rec *database.ModuleRecord) (*Definition, error) {
	def := &Definition{
		ID:           ids.ModuleID(rec.ID),
		Slug:         rec.Slug,
		Name:         rec.Name,
		Version:      rec.Version,
		RequiredPlan: rec.RequiredPlan,
	}
	if rec.Permissions != "" {
		if err := json.Unmarshal([]byte(rec.Permissions), &def.Permissions); err != nil {
			return nil, err
		}
	}
	if rec.EventTypes != "" {
		if err := json.Unmarshal([]byte(rec.EventTypes), &def.EventTypes); err != nil {
			return nil, err
		}
	}
	return def, nil
}
