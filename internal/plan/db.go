package plan

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/ids"
)

// DBRepository implements Repository on the relational store.
type DBRepository struct {
	db *gorm.DB
}

// NewDBRepository creates a plan repository over an opened database.
func NewDBRepository(db *gorm.DB) *DBRepository {
	return &DBRepository{db: db}
}

func (r *DBRepository) GetByID(ctx context.Context, planID string) (*Plan, error) {
	var rec database.PlanRecord
	err := r.db.WithContext(ctx).Where("id = ?", planID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromPlanRecord(&rec)
}

func (r *DBRepository) GetBySlug(ctx context.Context, slug string) (*Plan, error) {
	var rec database.PlanRecord
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromPlanRecord(&rec)
}

func (r *DBRepository) List(ctx context.Context) ([]Plan, error) {
	var recs []database.PlanRecord
	if err := r.db.WithContext(ctx).Order("name asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]Plan, 0, len(recs))
	for i := range recs {
		p, err := fromPlanRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *DBRepository) Save(ctx context.Context, p *Plan) error {
	rec, err := toPlanRecord(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

func (r *DBRepository) GetAssignment(ctx context.Context, tenantID ids.TenantID) (string, error) {
	var rec database.TenantPlanAssignment
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID.String()).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.PlanID, nil
}

func (r *DBRepository) SetAssignment(ctx context.Context, tenantID ids.TenantID, planID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan_id", "updated_at"}),
		}).
		Create(&database.TenantPlanAssignment{
			TenantID: tenantID.String(),
			PlanID:   planID,
		}).Error
}

// DBUsageStore implements UsageStore with a single conditional UPDATE,
// so the limit check and the increment cannot be split by a concurrent
// request.
type DBUsageStore struct {
	db *gorm.DB
}

// NewDBUsageStore creates a usage store over an opened database.
func NewDBUsageStore(db *gorm.DB) *DBUsageStore {
	return &DBUsageStore{db: db}
}

func (s *DBUsageStore) IncrementWithLimit(ctx context.Context, tenantID ids.TenantID, key string, amount, limit int64) error {
	// Make sure the counter row exists, without racing other writers.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "limit_key"}},
			DoNothing: true,
		}).
		Create(&database.UsageCounter{
			TenantID: tenantID.String(),
			LimitKey: key,
			Used:     0,
		}).Error
	if err != nil {
		return err
	}

	tx := s.db.WithContext(ctx).
		Model(&database.UsageCounter{}).
		Where("tenant_id = ? AND limit_key = ?", tenantID.String(), key)
	if limit != Unlimited {
		tx = tx.Where("used + ? <= ?", amount, limit)
	}
	res := tx.Update("used", gorm.Expr("used + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrPlanLimitExceeded
	}
	return nil
}

func (s *DBUsageStore) Get(ctx context.Context, tenantID ids.TenantID, key string) (int64, error) {
	var rec database.UsageCounter
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND limit_key = ?", tenantID.String(), key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Used, nil
}

func toPlanRecord(p *Plan) (*database.PlanRecord, error) {
	modules, err := json.Marshal(p.Modules)
	if err != nil {
		return nil, err
	}
	limits, err := json.Marshal(p.Limits)
	if err != nil {
		return nil, err
	}
	status := p.Status
	if status == "" {
		status = "active"
	}
	return &database.PlanRecord{
		ID:      p.ID,
		Slug:    p.Slug,
		Name:    p.Name,
		Modules: string(modules),
		Limits:  string(limits),
		Status:  status,
	}, nil
}

func fromPlanRecord(rec *database.PlanRecord) (*Plan, error) {
	p := &Plan{
		ID:     rec.ID,
		Slug:   rec.Slug,
		Name:   rec.Name,
		Status: rec.Status,
	}
	if rec.Modules != "" {
		if err := json.Unmarshal([]byte(rec.Modules), &p.Modules); err != nil {
			return nil, err
		}
	}
	if rec.Limits != "" {
		if err := json.Unmarshal([]byte(rec.Limits), &p.Limits); err != nil {
			return nil, err
		}
	}
	return p, nil
}
