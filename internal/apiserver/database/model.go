package database

import "time"

// ModuleRecord is the persisted form of a module definition. Lookup
// accepts either the canonical id (primary key) or the human slug.
type ModuleRecord struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Slug         string    `json:"slug" gorm:"type:varchar(64);uniqueIndex"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Version      string    `json:"version" gorm:"type:varchar(32)"`
	Permissions  string    `json:"permissions" gorm:"type:text"` // JSON stored as text
	EventTypes   string    `json:"eventTypes" gorm:"type:text"`  // JSON stored as text
	RequiredPlan string    `json:"requiredPlan" gorm:"type:varchar(64)"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ActivationStatus values for TenantModuleActivation.Status.
const (
	ActivationActive   = "active"
	ActivationInactive = "inactive"
)

// TenantModuleActivation is one row per (tenant, module) pair. Disabling
// is a soft delete: the row flips to inactive and keeps its history;
// re-enabling reuses the row. Invariant: DeactivatedAt is non-nil iff
// Status is inactive.
type TenantModuleActivation struct {
	ID            uint       `json:"-" gorm:"primaryKey;autoIncrement"`
	PublicID      string     `json:"id" gorm:"type:varchar(36);uniqueIndex"`
	TenantID      string     `json:"tenantId" gorm:"type:varchar(64);not null;uniqueIndex:uk_tenant_module,priority:1"`
	ModuleID      string     `json:"moduleId" gorm:"type:varchar(64);not null;uniqueIndex:uk_tenant_module,priority:2"`
	Status        string     `json:"status" gorm:"type:varchar(16);not null"`
	ActivatedAt   time.Time  `json:"activatedAt"`
	DeactivatedAt *time.Time `json:"deactivatedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// PlanRecord is a named bundle of allowed modules and numeric limits.
type PlanRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Slug      string    `json:"slug" gorm:"type:varchar(64);uniqueIndex"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Modules   string    `json:"modules" gorm:"type:text"` // JSON stored as text
	Limits    string    `json:"limits" gorm:"type:text"`  // JSON stored as text
	Status    string    `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TenantPlanAssignment maps a tenant to its subscribed plan.
type TenantPlanAssignment struct {
	TenantID  string    `json:"tenantId" gorm:"primaryKey;type:varchar(64)"`
	PlanID    string    `json:"planId" gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UsageCounter accumulates consumption per (tenant, limit key). The
// limit itself lives on the plan; rows store only usage.
type UsageCounter struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(64);not null;uniqueIndex:uk_tenant_key,priority:1"`
	LimitKey  string    `json:"limitKey" gorm:"type:varchar(64);not null;uniqueIndex:uk_tenant_key,priority:2"`
	Used      int64     `json:"used" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tenant is a customer organization.
type Tenant struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Subdomain string    `json:"subdomain" gorm:"type:varchar(64);uniqueIndex"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is a login account. Platform admins have an empty TenantID.
// Permissions is the explicit grant set embedded into issued tokens;
// roles are labels only and never expand to permissions.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TenantID     string    `json:"tenantId" gorm:"type:varchar(64);index"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         string    `json:"role" gorm:"type:varchar(64)"`
	Permissions  string    `json:"permissions" gorm:"type:text"` // JSON stored as text
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
