package models

import "time"

// Scenario is the stored metadata for one named scenario. Its baseline rows
// live in the module_baseline and material_baseline tables.
type Scenario struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Simulation run states.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// SimulationRun records one execution of the mass flow projection for a
// scenario. Results reference the run so reruns never clobber history.
type SimulationRun struct {
	ID          int        `json:"id" db:"id"`
	ScenarioID  int        `json:"scenario_id" db:"scenario_id"`
	Status      string     `json:"status" db:"status"`
	Error       *string    `json:"error,omitempty" db:"error"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RunDiagnostic is a persisted engine diagnostic attached to a run.
type RunDiagnostic struct {
	RunID      int    `json:"run_id" db:"run_id"`
	Kind       string `json:"kind" db:"kind"`
	Generation int    `json:"generation" db:"generation"`
	Year       int    `json:"year" db:"year"`
	Message    string `json:"message" db:"message"`
}
