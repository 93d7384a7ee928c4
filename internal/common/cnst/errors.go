package cnst

import "errors"

var (
	// ErrModuleNotFound is returned when a module id or slug resolves to nothing
	ErrModuleNotFound = errors.New("module not found")
	// ErrModuleNotRegistered is returned when enabling a module that was never registered
	ErrModuleNotRegistered = errors.New("module not registered")
	// ErrPlanNotFound is returned when a plan id resolves to nothing
	ErrPlanNotFound = errors.New("plan not found")
	// ErrTenantHasNoPlan is returned when a tenant has no plan assignment
	ErrTenantHasNoPlan = errors.New("tenant has no plan")
	// ErrPlanLimitExceeded is returned when an increment would overshoot a finite limit
	ErrPlanLimitExceeded = errors.New("plan limit exceeded")
	// ErrInvalidAmount is returned when a usage increment amount is not positive
	ErrInvalidAmount = errors.New("increment amount must be positive")
)
