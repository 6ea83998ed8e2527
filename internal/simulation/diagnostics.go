package simulation

import (
	"fmt"
	"sync"
)

// DiagnosticKind classifies non-fatal engine conditions.
type DiagnosticKind string

const (
	// DiagnosticDegenerateCohort marks a generation whose failure CDF never
	// becomes nonzero within the simulated horizon. The engine credits the
	// install area to the final age index and continues.
	DiagnosticDegenerateCohort DiagnosticKind = "degenerate_cohort"

	// DiagnosticGenerationSkipped marks a generation dropped because its
	// reliability keypoints produced no valid Weibull fit.
	DiagnosticGenerationSkipped DiagnosticKind = "generation_skipped"
)

// Diagnostic is a non-fatal condition attached to a single generation.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Generation int            `json:"generation"`
	Year       int            `json:"year"`
	Message    string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (generation %d, year %d): %s", d.Kind, d.Generation, d.Year, d.Message)
}

// DiagnosticSink receives engine diagnostics. Implementations must be safe
// for concurrent use; generations are projected in parallel.
type DiagnosticSink interface {
	Record(d Diagnostic)
}

// DiagnosticList is a DiagnosticSink that collects diagnostics in memory.
type DiagnosticList struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Record appends a diagnostic.
func (l *DiagnosticList) Record(d Diagnostic) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, d)
}

// Items returns the collected diagnostics.
func (l *DiagnosticList) Items() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// record forwards to the sink if one was provided.
func record(sink DiagnosticSink, d Diagnostic) {
	if sink != nil {
		sink.Record(d)
	}
}
