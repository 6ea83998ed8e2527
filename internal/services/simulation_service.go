package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pvcycle-platform/internal/config"
	"pvcycle-platform/internal/models"
	"pvcycle-platform/internal/repository"
	"pvcycle-platform/internal/simulation"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// SimulationService orchestrates mass flow projections: it loads a
// scenario's baselines, runs the reliability and cascade stages, and
// persists the results under a new run
type SimulationService struct {
	repo       repository.ScenarioRepository
	params     simulation.Params
	runTimeout time.Duration
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewSimulationService creates a new simulation service. The zero value of
// simCfg runs at standard test conditions with no worker cap and no timeout.
func NewSimulationService(repo repository.ScenarioRepository, simCfg config.SimulationConfig, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SimulationService {
	return &SimulationService{
		repo: repo,
		params: simulation.Params{
			IrradianceWm2: simCfg.IrradianceWm2,
			MaxWorkers:    simCfg.MaxWorkers,
		},
		runTimeout: simCfg.RunTimeout,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// RunResult summarizes one completed simulation run
type RunResult struct {
	RunID       int                    `json:"run_id"`
	ScenarioID  int                    `json:"scenario_id"`
	Years       []int                  `json:"years"`
	Materials   []string               `json:"materials"`
	Diagnostics []models.RunDiagnostic `json:"diagnostics,omitempty"`
	Duration    time.Duration          `json:"-"`
}

// RunScenario executes the full projection for a stored scenario and
// persists the results
func (s *SimulationService) RunScenario(ctx context.Context, scenarioID int) (*RunResult, error) {
	startTime := time.Now()

	scenario, err := s.repo.GetScenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[SIM_START] Starting scenario simulation", logging.Fields{
		"scenario_id": scenarioID,
		"scenario":    scenario.Name,
		"stage":       "INITIALIZATION",
	})

	moduleRows, err := s.repo.GetModuleBaseline(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	materials, err := s.repo.ListMaterials(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	scn := &models.ScenarioSeries{Name: scenario.Name, Rows: moduleRows}
	materialSeries := make([]*models.MaterialSeries, 0, len(materials))
	for _, name := range materials {
		rows, err := s.repo.GetMaterialBaseline(ctx, scenarioID, name)
		if err != nil {
			return nil, err
		}
		materialSeries = append(materialSeries, &models.MaterialSeries{Material: name, Rows: rows})
	}

	run := &models.SimulationRun{ScenarioID: scenarioID}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	engineResult, flows, err := s.runEngine(ctx, scn, materialSeries)
	if err != nil {
		s.metrics.RecordSimulationRun(runOutcome(err))
		if finishErr := s.repo.FinishRun(ctx, run.ID, models.RunStatusFailed, err); finishErr != nil {
			s.logger.Error(ctx, "[SIM_RUN_ERROR] Failed to record run failure", logging.Fields{
				"run_id": run.ID,
			}, finishErr)
		}
		return nil, err
	}

	if err := s.persistResults(ctx, run.ID, engineResult, flows); err != nil {
		s.metrics.RecordSimulationRun("error")
		if finishErr := s.repo.FinishRun(ctx, run.ID, models.RunStatusFailed, err); finishErr != nil {
			s.logger.Error(ctx, "[SIM_RUN_ERROR] Failed to record run failure", logging.Fields{
				"run_id": run.ID,
			}, finishErr)
		}
		return nil, err
	}

	if err := s.repo.FinishRun(ctx, run.ID, models.RunStatusCompleted, nil); err != nil {
		return nil, err
	}

	duration := time.Since(startTime)
	s.metrics.RecordSimulationRun("success")
	s.metrics.SimulationDuration.Observe(duration.Seconds())
	s.metrics.SimulationGenerations.Observe(float64(len(scn.Rows)))

	diags := toRunDiagnostics(run.ID, engineResult.Scenario.Diagnostics)

	s.logger.Info(ctx, "[SIM_COMPLETE] Scenario simulation completed", logging.Fields{
		"scenario_id":      scenarioID,
		"run_id":           run.ID,
		"years":            len(scn.Rows),
		"materials":        len(materials),
		"diagnostics":      len(diags),
		"duration_seconds": duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return &RunResult{
		RunID:       run.ID,
		ScenarioID:  scenarioID,
		Years:       engineResult.Scenario.Years,
		Materials:   materials,
		Diagnostics: diags,
		Duration:    duration,
	}, nil
}

// EngineResult bundles the in-memory outputs of one projection: the
// scenario-level tables and the per-material mass flows keyed by material
type EngineResult struct {
	Scenario *simulation.ScenarioResult
	EOL      *simulation.EOLFlows
}

// Project runs the projection engine without touching storage. The demo and
// the sensitivity service use it directly.
func (s *SimulationService) Project(ctx context.Context, scn *models.ScenarioSeries, materials []*models.MaterialSeries) (*EngineResult, map[string][]models.MaterialFlowYearly, error) {
	return s.runEngine(ctx, scn, materials)
}

// runEngine executes the compute stages under the configured run timeout.
// Persistence is never bound by the timeout; only the parent context cancels it.
func (s *SimulationService) runEngine(ctx context.Context, scn *models.ScenarioSeries, materials []*models.MaterialSeries) (*EngineResult, map[string][]models.MaterialFlowYearly, error) {
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	sink := &metricsSink{metrics: s.metrics}

	result, err := simulation.AggregateScenario(ctx, scn, s.params, sink)
	if err != nil {
		return nil, nil, fmt.Errorf("reliability stage failed: %w", err)
	}

	eol, err := simulation.CascadeEOL(result.Disposal, scn)
	if err != nil {
		return nil, nil, fmt.Errorf("end-of-life cascade failed: %w", err)
	}
	eol.FillYearly(result.Yearly)

	// Material cascades are independent of each other.
	flows := make(map[string][]models.MaterialFlowYearly, len(materials))
	flowErrs := make([]error, len(materials))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, mat := range materials {
		wg.Add(1)
		go func(i int, mat *models.MaterialSeries) {
			defer wg.Done()
			timer := time.Now()

			if err := ctx.Err(); err != nil {
				flowErrs[i] = err
				return
			}
			rows, err := simulation.CascadeMaterial(eol, scn, mat, s.params)
			if err != nil {
				flowErrs[i] = fmt.Errorf("material cascade for %s failed: %w", mat.Material, err)
				return
			}

			s.metrics.MaterialCascadeDuration.WithLabelValues(mat.Material).Observe(time.Since(timer).Seconds())

			mu.Lock()
			flows[mat.Material] = rows
			mu.Unlock()
		}(i, mat)
	}
	wg.Wait()

	for _, err := range flowErrs {
		if err != nil {
			return nil, nil, err
		}
	}

	return &EngineResult{Scenario: result, EOL: eol}, flows, nil
}

func (s *SimulationService) persistResults(ctx context.Context, runID int, result *EngineResult, flows map[string][]models.MaterialFlowYearly) error {
	if err := s.repo.SaveYearlyResults(ctx, runID, result.Scenario.Yearly); err != nil {
		return err
	}

	for material, rows := range flows {
		if err := s.repo.SaveMaterialFlows(ctx, runID, material, rows); err != nil {
			return err
		}
	}

	return s.repo.SaveDiagnostics(ctx, runID, toRunDiagnostics(runID, result.Scenario.Diagnostics))
}

func toRunDiagnostics(runID int, diags []simulation.Diagnostic) []models.RunDiagnostic {
	out := make([]models.RunDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = models.RunDiagnostic{
			RunID:      runID,
			Kind:       string(d.Kind),
			Generation: d.Generation,
			Year:       d.Year,
			Message:    d.Message,
		}
	}
	return out
}

// runOutcome maps an engine error to a metrics label
func runOutcome(err error) string {
	var rateErr *models.InvalidRateError
	var scenarioErr *models.InconsistentScenarioError
	var columnErr *models.MissingColumnError
	if errors.As(err, &rateErr) || errors.As(err, &scenarioErr) || errors.As(err, &columnErr) {
		return "validation_error"
	}
	return "error"
}

// metricsSink counts engine diagnostics as they are emitted
type metricsSink struct {
	metrics *metrics.Collector
}

func (m *metricsSink) Record(d simulation.Diagnostic) {
	m.metrics.RecordDiagnostic(string(d.Kind))
}
