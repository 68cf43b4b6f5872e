package models

import "time"

// TenantOutcome records how one tenant's pipeline run ended. Error is empty
// on success.
type TenantOutcome struct {
	Tenant  string `json:"tenant"`
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchRun is the ephemeral summary of one fleet run. It is returned to the
// trigger caller and pushed to the messaging sink, never persisted.
type BatchRun struct {
	RunID     string          `json:"run_id"`
	Completed bool            `json:"completed"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Outcomes  []TenantOutcome `json:"outcomes"`
}
