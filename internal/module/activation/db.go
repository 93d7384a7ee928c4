package activation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/ids"
)

// DBRepository implements Repository on the relational store, one row
// per (tenant, module) pair under a unique key.
type DBRepository struct {
	db *gorm.DB
}

// NewDBRepository creates a repository over an opened database.
func NewDBRepository(db *gorm.DB) *DBRepository {
	return &DBRepository{db: db}
}

func (r *DBRepository) Enable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID, now time.Time) error {
	// Insert-if-absent on the unique (tenant_id, module_id) key, then
	// flip inactive rows back to active. Each statement is atomic, so
	// concurrent enables never produce divergent rows.
	err := r.db.WithContext(ctx).
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

func (r *DBRepository) Disable(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&database.TenantModuleActivation{}).
		Where("tenant_id = ? AND module_id = ? AND status = ?",
			tenantID.String(), moduleID.String(), database.ActivationActive).
		Updates(map[string]any{
			"status":         database.ActivationInactive,
			"deactivated_at": now,
		}).Error
}

func (r *DBRepository) Find(ctx context.Context, tenantID ids.TenantID, moduleID ids.ModuleID) (*Record, error) {
	var row database.TenantModuleActivation
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module_id = ?", tenantID.String(), moduleID.String()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := fromRow(&row)
	return &rec, nil
}

func (r *DBRepository) ListActive(ctx context.Context, tenantID ids.TenantID) ([]Record, error) {
	var rows []database.TenantModuleActivation
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND deactivated_at IS NULL",
			tenantID.String(), database.ActivationActive).
		Order("activated_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for i := range rows {
		out = append(out, fromRow(&rows[i]))
	}
	return out, nil
}

func fromRow(row *database.TenantModuleActivation) Record {
	return Record{
		TenantID:      ids.TenantID(row.TenantID),
		ModuleID:      ids.ModuleID(row.ModuleID),
		Status:        row.Status,
		ActivatedAt:   row.ActivatedAt,
		DeactivatedAt: row.DeactivatedAt,
	}
}
