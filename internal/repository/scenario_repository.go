package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pvcycle-platform/internal/models"
	"pvcycle-platform/pkg/database"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// ScenarioRepository provides data access for scenarios, baselines, and
// simulation results
type ScenarioRepository interface {
	// Scenario operations
	CreateScenario(ctx context.Context, scenario *models.Scenario) error
	GetScenario(ctx context.Context, id int) (*models.Scenario, error)
	GetScenarioByName(ctx context.Context, name string) (*models.Scenario, error)
	ListScenarios(ctx context.Context, limit, offset int) ([]*models.Scenario, int, error)

	// Baseline operations
	ReplaceModuleBaseline(ctx context.Context, scenarioID int, rows []models.ModuleBaselineRow) error
	GetModuleBaseline(ctx context.Context, scenarioID int) ([]models.ModuleBaselineRow, error)
	ReplaceMaterialBaseline(ctx context.Context, scenarioID int, material string, rows []models.MaterialBaselineRow) error
	GetMaterialBaseline(ctx context.Context, scenarioID int, material string) ([]models.MaterialBaselineRow, error)
	ListMaterials(ctx context.Context, scenarioID int) ([]string, error)

	// Run operations
	CreateRun(ctx context.Context, run *models.SimulationRun) error
	FinishRun(ctx context.Context, runID int, status string, runErr error) error
	GetLatestRun(ctx context.Context, scenarioID int) (*models.SimulationRun, error)
	SaveDiagnostics(ctx context.Context, runID int, diags []models.RunDiagnostic) error

	// Result operations
	SaveYearlyResults(ctx context.Context, runID int, rows []models.ScenarioYearly) error
	GetYearlyResults(ctx context.Context, runID int, filter YearFilter) ([]models.ScenarioYearly, error)
	SaveMaterialFlows(ctx context.Context, runID int, material string, rows []models.MaterialFlowYearly) error
	GetMaterialFlows(ctx context.Context, runID int, material string, filter YearFilter) ([]models.MaterialFlowYearly, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// YearFilter restricts result queries to a calendar year window. Nil bounds
// are open.
type YearFilter struct {
	FromYear *int
	ToYear   *int
}

// scenarioRepository implements ScenarioRepository
type scenarioRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ScenarioRepository {
	return &scenarioRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateScenario creates a new scenario
func (r *scenarioRepository) CreateScenario(ctx context.Context, scenario *models.Scenario) error {
	query := `
		INSERT INTO scenarios (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	now := time.Now().UTC()
	if scenario.CreatedAt.IsZero() {
		scenario.CreatedAt = now
	}
	scenario.UpdatedAt = now

	err := r.db.DB().QueryRowContext(ctx, query,
		scenario.Name,
		scenario.Description,
		scenario.CreatedAt,
		scenario.UpdatedAt,
	).Scan(&scenario.ID)

	if err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_SCENARIO] Scenario created", logging.Fields{
		"scenario_id": scenario.ID,
		"name":        scenario.Name,
	})

	return nil
}

// GetScenario retrieves a scenario by ID
func (r *scenarioRepository) GetScenario(ctx context.Context, id int) (*models.Scenario, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM scenarios
		WHERE id = $1
	`

	var scenario models.Scenario
	err := r.db.GetContext(ctx, "get_scenario", &scenario, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "scenario",
			ID:       fmt.Sprintf("%d", id),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}

	return &scenario, nil
}

// GetScenarioByName retrieves a scenario by its unique name
func (r *scenarioRepository) GetScenarioByName(ctx context.Context, name string) (*models.Scenario, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM scenarios
		WHERE name = $1
	`

	var scenario models.Scenario
	err := r.db.GetContext(ctx, "get_scenario_by_name", &scenario, query, name)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "scenario",
			ID:       name,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}

	return &scenario, nil
}

// ListScenarios retrieves all scenarios with pagination
func (r *scenarioRepository) ListScenarios(ctx context.Context, limit, offset int) ([]*models.Scenario, int, error) {
	var totalCount int
	err := r.db.GetContext(ctx, "count_scenarios", &totalCount, "SELECT COUNT(*) FROM scenarios")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count scenarios: %w", err)
	}

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM scenarios
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	var scenarios []*models.Scenario
	err = r.db.SelectContext(ctx, "list_scenarios", &scenarios, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list scenarios: %w", err)
	}

	return scenarios, totalCount, nil
}

// ReplaceModuleBaseline replaces the module baseline rows of a scenario in a
// single transaction
func (r *scenarioRepository) ReplaceModuleBaseline(ctx context.Context, scenarioID int, rows []models.ModuleBaselineRow) error {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(rows)))
		r.logger.Debug(ctx, "[REPO_MODULE_BASELINE] Module baseline replaced", logging.Fields{
			"scenario_id": scenarioID,
			"rows":        len(rows),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM module_baseline WHERE scenario_id = $1", scenarioID); err != nil {
		return fmt.Errorf("failed to clear module baseline: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO module_baseline (
			scenario_id, year, new_installed_capacity_w, mod_eff,
			mod_reliability_t50, mod_reliability_t90, mod_degradation, mod_lifetime,
			mod_repairing, mod_repowering, mod_eol_collection_eff, mod_eol_collected_recycled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			scenarioID,
			row.Year,
			row.NewInstalledCapacityW,
			row.ModuleEfficiencyPct,
			row.ReliabilityT50Years,
			row.ReliabilityT90Years,
			row.DegradationPctPerYear,
			row.LifetimeYears,
			row.RepairFraction,
			row.RepoweringFraction,
			row.EOLCollectionEffPct,
			row.EOLCollectedRecycledPct,
		)
		if err != nil {
			return fmt.Errorf("failed to insert module baseline row for year %d: %w", row.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(rows)))

	return nil
}

// GetModuleBaseline retrieves the module baseline rows of a scenario ordered
// by year
func (r *scenarioRepository) GetModuleBaseline(ctx context.Context, scenarioID int) ([]models.ModuleBaselineRow, error) {
	query := `
		SELECT year, new_installed_capacity_w, mod_eff,
		       mod_reliability_t50, mod_reliability_t90, mod_degradation, mod_lifetime,
		       mod_repairing, mod_repowering, mod_eol_collection_eff, mod_eol_collected_recycled
		FROM module_baseline
		WHERE scenario_id = $1
		ORDER BY year
	`

	var rows []models.ModuleBaselineRow
	err := r.db.SelectContext(ctx, "get_module_baseline", &rows, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to get module baseline: %w", err)
	}

	if len(rows) == 0 {
		return nil, &NotFoundError{
			Resource: "module_baseline",
			ID:       fmt.Sprintf("scenario %d", scenarioID),
		}
	}

	return rows, nil
}

// ReplaceMaterialBaseline replaces one material's baseline rows for a
// scenario in a single transaction
func (r *scenarioRepository) ReplaceMaterialBaseline(ctx context.Context, scenarioID int, material string, rows []models.MaterialBaselineRow) error {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(rows)))
		r.logger.Debug(ctx, "[REPO_MATERIAL_BASELINE] Material baseline replaced", logging.Fields{
			"scenario_id": scenarioID,
			"material":    material,
			"rows":        len(rows),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM material_baseline WHERE scenario_id = $1 AND material = $2",
		scenarioID, material); err != nil {
		return fmt.Errorf("failed to clear material baseline: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO material_baseline (
			scenario_id, material, year, mat_massperm2, mat_mfg_eff,
			mat_mfg_scrap_recycled, mat_mfg_scrap_recycling_eff,
			mat_mfg_scrap_recycled_into_hq, mat_mfg_scrap_hq_reused4mfg,
			mat_eol_collected_recycled, mat_eol_recycling_eff,
			mat_eol_recycled_into_hq, mat_eol_recycledhq_reused4mfg
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			scenarioID,
			material,
			row.Year,
			row.MassPerM2,
			row.MFGEfficiencyPct,
			row.MFGScrapRecycledPct,
			row.MFGScrapRecyclingEffPct,
			row.MFGScrapRecycledIntoHQPct,
			row.MFGScrapHQReused4MFGPct,
			row.EOLSentToRecyclingPct,
			row.EOLRecyclingEffPct,
			row.EOLRecycledIntoHQPct,
			row.EOLRecycledHQReused4MFGPct,
		)
		if err != nil {
			return fmt.Errorf("failed to insert material baseline row for year %d: %w", row.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(rows)))

	return nil
}

// GetMaterialBaseline retrieves one material's baseline rows for a scenario
// ordered by year
func (r *scenarioRepository) GetMaterialBaseline(ctx context.Context, scenarioID int, material string) ([]models.MaterialBaselineRow, error) {
	query := `
		SELECT year, mat_massperm2, mat_mfg_eff,
		       mat_mfg_scrap_recycled, mat_mfg_scrap_recycling_eff,
		       mat_mfg_scrap_recycled_into_hq, mat_mfg_scrap_hq_reused4mfg,
		       mat_eol_collected_recycled, mat_eol_recycling_eff,
		       mat_eol_recycled_into_hq, mat_eol_recycledhq_reused4mfg
		FROM material_baseline
		WHERE scenario_id = $1 AND material = $2
		ORDER BY year
	`

	var rows []models.MaterialBaselineRow
	err := r.db.SelectContext(ctx, "get_material_baseline", &rows, query, scenarioID, material)
	if err != nil {
		return nil, fmt.Errorf("failed to get material baseline: %w", err)
	}

	if len(rows) == 0 {
		return nil, &NotFoundError{
			Resource: "material_baseline",
			ID:       fmt.Sprintf("scenario %d material %s", scenarioID, material),
		}
	}

	return rows, nil
}

// ListMaterials retrieves the distinct materials tracked for a scenario
func (r *scenarioRepository) ListMaterials(ctx context.Context, scenarioID int) ([]string, error) {
	query := `
		SELECT DISTINCT material
		FROM material_baseline
		WHERE scenario_id = $1
		ORDER BY material
	`

	var materials []string
	err := r.db.SelectContext(ctx, "list_materials", &materials, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	return materials, nil
}

// CreateRun records the start of a simulation run
func (r *scenarioRepository) CreateRun(ctx context.Context, run *models.SimulationRun) error {
	query := `
		INSERT INTO simulation_runs (scenario_id, status, started_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}

	err := r.db.DB().QueryRowContext(ctx, query,
		run.ScenarioID,
		run.Status,
		run.StartedAt,
	).Scan(&run.ID)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// FinishRun marks a run completed or failed
func (r *scenarioRepository) FinishRun(ctx context.Context, runID int, status string, runErr error) error {
	query := `
		UPDATE simulation_runs
		SET status = $2, error = $3, completed_at = $4
		WHERE id = $1
	`

	var errMsg *string
	if runErr != nil {
		s := runErr.Error()
		errMsg = &s
	}

	_, err := r.db.ExecContext(ctx, "finish_run", query, runID, status, errMsg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

// GetLatestRun retrieves the most recent run for a scenario
func (r *scenarioRepository) GetLatestRun(ctx context.Context, scenarioID int) (*models.SimulationRun, error) {
	query := `
		SELECT id, scenario_id, status, error, started_at, completed_at
		FROM simulation_runs
		WHERE scenario_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run models.SimulationRun
	err := r.db.GetContext(ctx, "get_latest_run", &run, query, scenarioID)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "simulation_run",
			ID:       fmt.Sprintf("scenario %d", scenarioID),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return &run, nil
}

// SaveDiagnostics persists the engine diagnostics of a run
func (r *scenarioRepository) SaveDiagnostics(ctx context.Context, runID int, diags []models.RunDiagnostic) error {
	if len(diags) == 0 {
		return nil
	}

	for i := range diags {
		diags[i].RunID = runID
	}

	query := `
		INSERT INTO run_diagnostics (run_id, kind, generation, year, message)
		VALUES (:run_id, :kind, :generation, :year, :message)
	`

	if _, err := r.db.NamedExecContext(ctx, "save_diagnostics", query, diags); err != nil {
		return fmt.Errorf("failed to save diagnostics: %w", err)
	}

	return nil
}

// SaveYearlyResults replaces the scenario-level yearly results of a run
func (r *scenarioRepository) SaveYearlyResults(ctx context.Context, runID int, rows []models.ScenarioYearly) error {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.logger.Debug(ctx, "[REPO_YEARLY_RESULTS] Yearly results saved", logging.Fields{
			"run_id":      runID,
			"rows":        len(rows),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scenario_yearly_results (
			run_id, year, cumulative_active_area,
			cumulative_area_disposed_failure, cumulative_area_disposed_degradation,
			cumulative_area_disposed, cumulative_power_w,
			eol_collected, eol_not_collected, eol_recycled, eol_not_recycled_landfilled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			runID,
			row.Year,
			row.CumulativeActiveArea,
			row.CumulativeAreaDisposedByFailure,
			row.CumulativeAreaDisposedByDegradation,
			row.CumulativeAreaDisposed,
			row.CumulativePowerW,
			row.EOLCollected,
			row.EOLNotCollected,
			row.EOLRecycled,
			row.EOLNotRecycledLandfilled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert yearly result for year %d: %w", row.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetYearlyResults retrieves the scenario-level yearly results of a run
func (r *scenarioRepository) GetYearlyResults(ctx context.Context, runID int, filter YearFilter) ([]models.ScenarioYearly, error) {
	query := `
		SELECT year, cumulative_active_area,
		       cumulative_area_disposed_failure, cumulative_area_disposed_degradation,
		       cumulative_area_disposed, cumulative_power_w,
		       eol_collected, eol_not_collected, eol_recycled, eol_not_recycled_landfilled
		FROM scenario_yearly_results
		WHERE run_id = $1
	`
	args := []interface{}{runID}
	argNum := 2

	if filter.FromYear != nil {
		query += fmt.Sprintf(" AND year >= $%d", argNum)
		args = append(args, *filter.FromYear)
		argNum++
	}
	if filter.ToYear != nil {
		query += fmt.Sprintf(" AND year <= $%d", argNum)
		args = append(args, *filter.ToYear)
		argNum++
	}

	query += " ORDER BY year"

	var rows []models.ScenarioYearly
	err := r.db.SelectContext(ctx, "get_yearly_results", &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get yearly results: %w", err)
	}

	return rows, nil
}

// SaveMaterialFlows replaces one material's yearly mass flows for a run
func (r *scenarioRepository) SaveMaterialFlows(ctx context.Context, runID int, material string, rows []models.MaterialFlowYearly) error {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.logger.Debug(ctx, "[REPO_MATERIAL_FLOWS] Material flows saved", logging.Fields{
			"run_id":      runID,
			"material":    material,
			"rows":        len(rows),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO material_flow_results (
			run_id, material, year,
			mat_modules_not_collected, mat_modules_not_recycled,
			mat_eol_sento_recycling, mat_eol_not_recycled_landfilled,
			mat_eol_recycled, mat_eol_recycled_losses_landfilled,
			mat_eol_recycled_into_hq, mat_eol_recycled_into_oq,
			mat_eol_recycled_hq_into_mfg, mat_eol_recycled_hq_into_ou,
			mat_manufactured, mat_manufacturing_input,
			mat_mfg_scrap, mat_mfg_scrap_sentto_recycling, mat_mfg_scrap_landfilled,
			mat_mfg_scrap_recycled, mat_mfg_scrap_recycled_losses_landfilled,
			mat_mfg_recycled_into_hq, mat_mfg_recycled_into_oq,
			mat_mfg_recycled_hq_into_mfg, mat_mfg_recycled_hq_into_ou,
			mat_virgin_stock, mat_total_eol_landfilled, mat_total_mfg_landfilled,
			mat_total_landfilled, mat_total_recycled_ou
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			runID,
			material,
			row.Year,
			row.ModulesNotCollected,
			row.ModulesNotRecycled,
			row.EOLSentToRecycling,
			row.EOLNotRecycledLandfilled,
			row.EOLRecycled,
			row.EOLRecycledLossesLandfilled,
			row.EOLRecycledIntoHQ,
			row.EOLRecycledIntoOQ,
			row.EOLRecycledHQIntoMFG,
			row.EOLRecycledHQIntoOU,
			row.Manufactured,
			row.ManufacturingInput,
			row.MFGScrap,
			row.MFGScrapSentToRecycling,
			row.MFGScrapLandfilled,
			row.MFGScrapRecycled,
			row.MFGScrapRecycledLossesLandfilled,
			row.MFGRecycledIntoHQ,
			row.MFGRecycledIntoOQ,
			row.MFGRecycledHQIntoMFG,
			row.MFGRecycledHQIntoOU,
			row.VirginStock,
			row.TotalEOLLandfilled,
			row.TotalMFGLandfilled,
			row.TotalLandfilled,
			row.TotalRecycledOU,
		)
		if err != nil {
			return fmt.Errorf("failed to insert material flow for year %d: %w", row.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetMaterialFlows retrieves one material's yearly mass flows for a run
func (r *scenarioRepository) GetMaterialFlows(ctx context.Context, runID int, material string, filter YearFilter) ([]models.MaterialFlowYearly, error) {
	query := `
		SELECT year,
		       mat_modules_not_collected, mat_modules_not_recycled,
		       mat_eol_sento_recycling, mat_eol_not_recycled_landfilled,
		       mat_eol_recycled, mat_eol_recycled_losses_landfilled,
		       mat_eol_recycled_into_hq, mat_eol_recycled_into_oq,
		       mat_eol_recycled_hq_into_mfg, mat_eol_recycled_hq_into_ou,
		       mat_manufactured, mat_manufacturing_input,
		       mat_mfg_scrap, mat_mfg_scrap_sentto_recycling, mat_mfg_scrap_landfilled,
		       mat_mfg_scrap_recycled, mat_mfg_scrap_recycled_losses_landfilled,
		       mat_mfg_recycled_into_hq, mat_mfg_recycled_into_oq,
		       mat_mfg_recycled_hq_into_mfg, mat_mfg_recycled_hq_into_ou,
		       mat_virgin_stock, mat_total_eol_landfilled, mat_total_mfg_landfilled,
		       mat_total_landfilled, mat_total_recycled_ou
		FROM material_flow_results
		WHERE run_id = $1 AND material = $2
	`
	args := []interface{}{runID, material}
	argNum := 3

	if filter.FromYear != nil {
		query += fmt.Sprintf(" AND year >= $%d", argNum)
		args = append(args, *filter.FromYear)
		argNum++
	}
	if filter.ToYear != nil {
		query += fmt.Sprintf(" AND year <= $%d", argNum)
		args = append(args, *filter.ToYear)
		argNum++
	}

	query += " ORDER BY year"

	var rows []models.MaterialFlowYearly
	err := r.db.SelectContext(ctx, "get_material_flows", &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get material flows: %w", err)
	}

	if len(rows) == 0 {
		return nil, &NotFoundError{
			Resource: "material_flow_results",
			ID:       fmt.Sprintf("run %d material %s", runID, material),
		}
	}

	return rows, nil
}

// HealthCheck performs a repository health check
func (r *scenarioRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
