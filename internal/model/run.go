package model

import "time"

// RunStatus tracks a batch run's lifecycle.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// BatchRun is one recorded execution of the batch driver: which bank file
// it processed and how the subjects fared.
type BatchRun struct {
	ID        string    `json:"id"`
	BankFile  string    `json:"bank_file"`
	Status    RunStatus `json:"status"`
	Subjects  int       `json:"subjects"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Empty     int       `json:"empty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
