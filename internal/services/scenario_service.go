package services

import (
	"context"

	"pvcycle-platform/internal/models"
	"pvcycle-platform/internal/repository"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// ScenarioService handles scenario and result read operations
type ScenarioService struct {
	repo    repository.ScenarioRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewScenarioService creates a new scenario service
func NewScenarioService(repo repository.ScenarioRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ScenarioService {
	return &ScenarioService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListScenarios retrieves scenarios with pagination
func (s *ScenarioService) ListScenarios(ctx context.Context, limit, offset int) ([]*models.Scenario, int, error) {
	return s.repo.ListScenarios(ctx, limit, offset)
}

// GetScenario retrieves a scenario by ID
func (s *ScenarioService) GetScenario(ctx context.Context, id int) (*models.Scenario, error) {
	return s.repo.GetScenario(ctx, id)
}

// GetModuleBaseline retrieves the module baseline of a scenario
func (s *ScenarioService) GetModuleBaseline(ctx context.Context, scenarioID int) ([]models.ModuleBaselineRow, error) {
	return s.repo.GetModuleBaseline(ctx, scenarioID)
}

// GetMaterialBaseline retrieves one material baseline of a scenario
func (s *ScenarioService) GetMaterialBaseline(ctx context.Context, scenarioID int, material string) ([]models.MaterialBaselineRow, error) {
	return s.repo.GetMaterialBaseline(ctx, scenarioID, material)
}

// ListMaterials retrieves the materials tracked for a scenario
func (s *ScenarioService) ListMaterials(ctx context.Context, scenarioID int) ([]string, error) {
	return s.repo.ListMaterials(ctx, scenarioID)
}

// GetLatestRun retrieves the most recent run of a scenario
func (s *ScenarioService) GetLatestRun(ctx context.Context, scenarioID int) (*models.SimulationRun, error) {
	return s.repo.GetLatestRun(ctx, scenarioID)
}

// GetYearlyResults retrieves the yearly projection results of a run
func (s *ScenarioService) GetYearlyResults(ctx context.Context, runID int, filter repository.YearFilter) ([]models.ScenarioYearly, error) {
	return s.repo.GetYearlyResults(ctx, runID, filter)
}

// GetMaterialFlows retrieves one material's yearly mass flows of a run
func (s *ScenarioService) GetMaterialFlows(ctx context.Context, runID int, material string, filter repository.YearFilter) ([]models.MaterialFlowYearly, error) {
	return s.repo.GetMaterialFlows(ctx, runID, material, filter)
}
