package apiserver

import (
	"context"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/ids"
	"github.com/mesalabs/mesa/internal/module"
	"github.com/mesalabs/mesa/internal/plan"
)

// Seed makes a fresh database usable: it registers the built-in module
// catalog, upserts the stock plans, and creates the first platform
// admin when credentials are provided via MESA_ADMIN_EMAIL and
// MESA_ADMIN_PASSWORD. Seeding is idempotent.
func Seed(ctx context.Context, db *gorm.DB, registry module.Registry, ledger *plan.Ledger, logger *zap.Logger) error {
	if err := module.RegisterBuiltins(ctx, registry); err != nil {
		return err
	}

	for _, p := range stockPlans() {
		if err := ledger.SavePlan(ctx, p); err != nil {
			return err
		}
	}

	return seedAdmin(ctx, db, logger)
}

func stockPlans() []*plan.Plan {
	return []*plan.Plan{
		{
			ID:      "plan_free",
			Slug:    plan.BaselineSlug,
			Name:    "Free",
			Modules: []ids.ModuleID{"menu", "orders"},
			Limits:  map[string]int64{"users": 3, "orders_month": 100},
			Status:  "active",
		},
		{
			ID:      "plan_pro",
			Slug:    "plan_pro",
			Name:    "Pro",
			Modules: []ids.ModuleID{"menu", "orders", "kds", "pdv", "delivery", "crm"},
			Limits:  map[string]int64{"users": plan.Unlimited, "orders_month": plan.Unlimited},
			Status:  "active",
		},
	}
}

func seedAdmin(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	email := os.Getenv("MESA_ADMIN_EMAIL")
	password := os.Getenv("MESA_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &database.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         "super_admin",
		IsActive:     true,
	}
	// First writer wins; an existing account is left untouched.
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Info("created platform admin", zap.String("email", email))
	}
	return nil
}
