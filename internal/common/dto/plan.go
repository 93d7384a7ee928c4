package dto

// PlanInfo is the public view of a subscription plan. A limit of -1
// means unlimited.
type PlanInfo struct {
	ID      string           `json:"id"`
	Slug    string           `json:"slug"`
	Name    string           `json:"name"`
	Modules []string         `json:"modules"`
	Limits  map[string]int64 `json:"limits"`
	Status  string           `json:"status"`
}

// SavePlanRequest creates or replaces a plan.
type SavePlanRequest struct {
	ID      string           `json:"id" binding:"required"`
	Slug    string           `json:"slug"`
	Name    string           `json:"name" binding:"required"`
	Modules []string         `json:"modules"`
	Limits  map[string]int64 `json:"limits"`
	Status  string           `json:"status"`
}

// ChangePlanRequest moves a tenant onto another plan.
type ChangePlanRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

// UsageInfo reports consumption against one plan limit.
type UsageInfo struct {
	Key   string `json:"key"`
	Used  int64  `json:"used"`
	Limit int64  `json:"limit"`
}

// IncrementUsageRequest consumes quota under a limit key. Amount
// defaults to 1 when omitted.
type IncrementUsageRequest struct {
	Amount int64 `json:"amount"`
}
