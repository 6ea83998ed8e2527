package services

import (
	"context"
	"fmt"
	"time"

	"pvcycle-platform/internal/models"
	"pvcycle-platform/internal/repository"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// Shared across the package because promauto registers on the default
// Prometheus registry and a second collector with the same namespace panics.
var testMetrics = metrics.NewCollector("pvcycle_services_test")

func testLogger() *logging.StructuredLogger {
	return logging.NewStructuredLogger("test", "test", logging.ErrorLevel)
}

// fakeRepo is an in-memory ScenarioRepository for service tests.
type fakeRepo struct {
	scenarios         map[int]*models.Scenario
	moduleBaselines   map[int][]models.ModuleBaselineRow
	materialBaselines map[int]map[string][]models.MaterialBaselineRow
	runs              map[int]*models.SimulationRun
	diagnostics       map[int][]models.RunDiagnostic
	yearly            map[int][]models.ScenarioYearly
	flows             map[int]map[string][]models.MaterialFlowYearly
	nextScenarioID    int
	nextRunID         int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		scenarios:         make(map[int]*models.Scenario),
		moduleBaselines:   make(map[int][]models.ModuleBaselineRow),
		materialBaselines: make(map[int]map[string][]models.MaterialBaselineRow),
		runs:              make(map[int]*models.SimulationRun),
		diagnostics:       make(map[int][]models.RunDiagnostic),
		yearly:            make(map[int][]models.ScenarioYearly),
		flows:             make(map[int]map[string][]models.MaterialFlowYearly),
	}
}

func (f *fakeRepo) CreateScenario(ctx context.Context, scenario *models.Scenario) error {
	for _, existing := range f.scenarios {
		if existing.Name == scenario.Name {
			existing.Description = scenario.Description
			existing.UpdatedAt = time.Now()
			scenario.ID = existing.ID
			return nil
		}
	}
	f.nextScenarioID++
	scenario.ID = f.nextScenarioID
	scenario.CreatedAt = time.Now()
	scenario.UpdatedAt = scenario.CreatedAt
	copied := *scenario
	f.scenarios[scenario.ID] = &copied
	return nil
}

func (f *fakeRepo) GetScenario(ctx context.Context, id int) (*models.Scenario, error) {
	scenario, ok := f.scenarios[id]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "scenario", ID: fmt.Sprintf("%d", id)}
	}
	return scenario, nil
}

func (f *fakeRepo) GetScenarioByName(ctx context.Context, name string) (*models.Scenario, error) {
	for _, scenario := range f.scenarios {
		if scenario.Name == name {
			return scenario, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "scenario", ID: name}
}

func (f *fakeRepo) ListScenarios(ctx context.Context, limit, offset int) ([]*models.Scenario, int, error) {
	out := make([]*models.Scenario, 0, len(f.scenarios))
	for id := 1; id <= f.nextScenarioID; id++ {
		if scenario, ok := f.scenarios[id]; ok {
			out = append(out, scenario)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ReplaceModuleBaseline(ctx context.Context, scenarioID int, rows []models.ModuleBaselineRow) error {
	f.moduleBaselines[scenarioID] = append([]models.ModuleBaselineRow(nil), rows...)
	return nil
}

func (f *fakeRepo) GetModuleBaseline(ctx context.Context, scenarioID int) ([]models.ModuleBaselineRow, error) {
	rows, ok := f.moduleBaselines[scenarioID]
	if !ok || len(rows) == 0 {
		return nil, &repository.NotFoundError{Resource: "module baseline", ID: fmt.Sprintf("scenario %d", scenarioID)}
	}
	return rows, nil
}

func (f *fakeRepo) ReplaceMaterialBaseline(ctx context.Context, scenarioID int, material string, rows []models.MaterialBaselineRow) error {
	if f.materialBaselines[scenarioID] == nil {
		f.materialBaselines[scenarioID] = make(map[string][]models.MaterialBaselineRow)
	}
	f.materialBaselines[scenarioID][material] = append([]models.MaterialBaselineRow(nil), rows...)
	return nil
}

func (f *fakeRepo) GetMaterialBaseline(ctx context.Context, scenarioID int, material string) ([]models.MaterialBaselineRow, error) {
	rows, ok := f.materialBaselines[scenarioID][material]
	if !ok || len(rows) == 0 {
		return nil, &repository.NotFoundError{Resource: "material baseline", ID: material}
	}
	return rows, nil
}

func (f *fakeRepo) ListMaterials(ctx context.Context, scenarioID int) ([]string, error) {
	var out []string
	for material := range f.materialBaselines[scenarioID] {
		out = append(out, material)
	}
	return out, nil
}

func (f *fakeRepo) CreateRun(ctx context.Context, run *models.SimulationRun) error {
	f.nextRunID++
	run.ID = f.nextRunID
	run.StartedAt = time.Now()
	copied := *run
	f.runs[run.ID] = &copied
	return nil
}

func (f *fakeRepo) FinishRun(ctx context.Context, runID int, status string, runErr error) error {
	run, ok := f.runs[runID]
	if !ok {
		return &repository.NotFoundError{Resource: "run", ID: fmt.Sprintf("%d", runID)}
	}
	run.Status = status
	now := time.Now()
	run.CompletedAt = &now
	if runErr != nil {
		msg := runErr.Error()
		run.Error = &msg
	}
	return nil
}

func (f *fakeRepo) GetLatestRun(ctx context.Context, scenarioID int) (*models.SimulationRun, error) {
	var latest *models.SimulationRun
	for _, run := range f.runs {
		if run.ScenarioID != scenarioID {
			continue
		}
		if latest == nil || run.ID > latest.ID {
			latest = run
		}
	}
	if latest == nil {
		return nil, &repository.NotFoundError{Resource: "run", ID: fmt.Sprintf("scenario %d", scenarioID)}
	}
	return latest, nil
}

func (f *fakeRepo) SaveDiagnostics(ctx context.Context, runID int, diags []models.RunDiagnostic) error {
	f.diagnostics[runID] = append(f.diagnostics[runID], diags...)
	return nil
}

func (f *fakeRepo) SaveYearlyResults(ctx context.Context, runID int, rows []models.ScenarioYearly) error {
	f.yearly[runID] = append([]models.ScenarioYearly(nil), rows...)
	return nil
}

func (f *fakeRepo) GetYearlyResults(ctx context.Context, runID int, filter repository.YearFilter) ([]models.ScenarioYearly, error) {
	rows, ok := f.yearly[runID]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "yearly results", ID: fmt.Sprintf("run %d", runID)}
	}
	return rows, nil
}

func (f *fakeRepo) SaveMaterialFlows(ctx context.Context, runID int, material string, rows []models.MaterialFlowYearly) error {
	if f.flows[runID] == nil {
		f.flows[runID] = make(map[string][]models.MaterialFlowYearly)
	}
	f.flows[runID][material] = append([]models.MaterialFlowYearly(nil), rows...)
	return nil
}

func (f *fakeRepo) GetMaterialFlows(ctx context.Context, runID int, material string, filter repository.YearFilter) ([]models.MaterialFlowYearly, error) {
	rows, ok := f.flows[runID][material]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "material flows", ID: material}
	}
	return rows, nil
}

func (f *fakeRepo) HealthCheck(ctx context.Context) error { return nil }

// moduleRows builds a simple contiguous module baseline.
func moduleRows(startYear, n int) []models.ModuleBaselineRow {
	rows := make([]models.ModuleBaselineRow, n)
	for i := range rows {
		rows[i] = models.ModuleBaselineRow{
			Year:                    startYear + i,
			NewInstalledCapacityW:   1e8 + 1e7*float64(i),
			ModuleEfficiencyPct:     16,
			ReliabilityT50Years:     25,
			ReliabilityT90Years:     30,
			DegradationPctPerYear:   0.8,
			LifetimeYears:           25,
			EOLCollectionEffPct:     30,
			EOLCollectedRecycledPct: 40,
		}
	}
	return rows
}

// materialRows builds a flat material baseline aligned to moduleRows.
func materialRows(startYear, n int) []models.MaterialBaselineRow {
	rows := make([]models.MaterialBaselineRow, n)
	for i := range rows {
		rows[i] = models.MaterialBaselineRow{
			Year:                       startYear + i,
			MassPerM2:                  16000,
			MFGEfficiencyPct:           95,
			MFGScrapRecycledPct:        40,
			MFGScrapRecyclingEffPct:    70,
			MFGScrapRecycledIntoHQPct:  30,
			MFGScrapHQReused4MFGPct:    60,
			EOLSentToRecyclingPct:      80,
			EOLRecyclingEffPct:         65,
			EOLRecycledIntoHQPct:       50,
			EOLRecycledHQReused4MFGPct: 40,
		}
	}
	return rows
}
