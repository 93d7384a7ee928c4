package dto

import "time"

// PermissionInfo describes one permission a module declares.
type PermissionInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ModuleInfo is the public view of a registered module definition.
type ModuleInfo struct {
	ID           string           `json:"id"`
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	Version      string           `json:"version,omitempty"`
	Permissions  []PermissionInfo `json:"permissions,omitempty"`
	EventTypes   []string         `json:"eventTypes,omitempty"`
	RequiredPlan string           `json:"requiredPlan,omitempty"`
}

// RegisterModuleRequest registers or replaces a module definition.
type RegisterModuleRequest struct {
	ID           string           `json:"id" binding:"required"`
	Slug         string           `json:"slug"`
	Name         string           `json:"name" binding:"required"`
	Version      string           `json:"version"`
	Permissions  []PermissionInfo `json:"permissions"`
	EventTypes   []string         `json:"eventTypes"`
	RequiredPlan string           `json:"requiredPlan"`
}

// ActivationInfo is one tenant-module activation with its lifecycle
// timestamps.
type ActivationInfo struct {
	ModuleID      string     `json:"moduleId"`
	Status        string     `json:"status"`
	ActivatedAt   time.Time  `json:"activatedAt"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}
