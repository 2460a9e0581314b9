package models

import "time"

// Run statuses.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusFailed    = "failed"
	RunStatusCompleted = "completed"
)

// Run is one execution of the generation pipeline for a series. It is created
// when a trigger is accepted and mutated only by the pipeline engine.
type Run struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	SeriesID uint   `gorm:"not null;index" json:"series_id"`
	Series   Series `gorm:"foreignKey:SeriesID" json:"-"`
	UserID   uint   `gorm:"not null" json:"user_id"`

	// IdempotencyKey deduplicates triggers: the scheduler derives it from the
	// series id and calendar date, manual triggers use a random key.
	IdempotencyKey string `gorm:"uniqueIndex;not null" json:"idempotency_key"`

	Status      string `gorm:"default:'pending';index" json:"status"`
	CurrentStep string `json:"current_step"`
	IsTest      bool   `gorm:"default:false" json:"is_test"`

	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Steps []RunStep `gorm:"foreignKey:RunID" json:"-"`
}

func (Run) TableName() string {
	return "runs"
}

// IsTerminal reports whether the run can no longer make progress.
func (r *Run) IsTerminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// RunStep is the write-once memoized result of a single pipeline step. A row
// exists only for steps that completed; resumption reuses the stored result
// instead of re-running the step.
type RunStep struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	RunID  uint   `gorm:"not null;uniqueIndex:idx_run_step" json:"run_id"`
	Step   string `gorm:"not null;uniqueIndex:idx_run_step" json:"step"`
	Result string `gorm:"type:jsonb" json:"result"`

	CreatedAt time.Time `json:"created_at"`
}

func (RunStep) TableName() string {
	return "run_steps"
}
