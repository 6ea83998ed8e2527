package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pvcycle-platform/internal/models"
	"pvcycle-platform/internal/repository"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// Baseline file naming convention inside a data directory.
const (
	moduleFilePrefix   = "baseline_modules_"
	materialFilePrefix = "baseline_material_"
)

// IngestionService loads published baseline CSV files into storage
type IngestionService struct {
	repo    repository.ScenarioRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles       int
	ScenariosCreated int
	MaterialsCreated int
	TotalRows        int
	Duration         time.Duration
	Errors           []string
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.ScenarioRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestDirectory ingests every baseline file in a directory. Module
// baselines (baseline_modules_<scenario>.csv) become scenarios; material
// baselines (baseline_material_<material>.csv) are attached to every
// scenario ingested from the same directory.
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string) (*IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting baseline ingestion", logging.Fields{
		"data_dir": dataDir,
		"stage":    "INITIALIZATION",
	})

	result := &IngestionResult{
		Errors: make([]string, 0),
	}

	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no baseline files found in %s", dataDir)
	}

	var moduleFiles, materialFiles []string
	for _, f := range files {
		base := filepath.Base(f)
		switch {
		case strings.HasPrefix(base, moduleFilePrefix):
			moduleFiles = append(moduleFiles, f)
		case strings.HasPrefix(base, materialFilePrefix):
			materialFiles = append(materialFiles, f)
		}
	}
	result.TotalFiles = len(moduleFiles) + len(materialFiles)

	if len(moduleFiles) == 0 {
		return nil, fmt.Errorf("no module baseline files found in %s", dataDir)
	}

	s.logger.Info(ctx, "[INGEST_FILES] Found baseline files", logging.Fields{
		"module_files":   len(moduleFiles),
		"material_files": len(materialFiles),
		"stage":          "FILE_DISCOVERY",
	})

	var scenarioIDs []int
	for _, filePath := range moduleFiles {
		scenarioID, rows, err := s.ingestModuleFile(ctx, filePath)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to ingest %s: %v", filePath, err))
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] Module baseline ingestion failed", logging.Fields{
				"file_path": filePath,
				"stage":     "MODULE_BASELINE",
			}, err)
			s.metrics.RecordIngestionError("module_file_error")
			continue
		}
		scenarioIDs = append(scenarioIDs, scenarioID)
		result.ScenariosCreated++
		result.TotalRows += rows
	}

	for _, filePath := range materialFiles {
		material := materialName(filePath)
		rows, err := s.loadMaterialFile(filePath)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to ingest %s: %v", filePath, err))
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] Material baseline ingestion failed", logging.Fields{
				"file_path": filePath,
				"material":  material,
				"stage":     "MATERIAL_BASELINE",
			}, err)
			s.metrics.RecordIngestionError("material_file_error")
			continue
		}

		for _, scenarioID := range scenarioIDs {
			if err := s.repo.ReplaceMaterialBaseline(ctx, scenarioID, material, rows); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to store %s for scenario %d: %v", material, scenarioID, err))
				s.metrics.RecordIngestionError("material_store_error")
				continue
			}
			result.TotalRows += len(rows)
		}
		result.MaterialsCreated++
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Baseline ingestion completed", logging.Fields{
		"total_files":       result.TotalFiles,
		"scenarios_created": result.ScenariosCreated,
		"materials_created": result.MaterialsCreated,
		"total_rows":        result.TotalRows,
		"duration_seconds":  result.Duration.Seconds(),
		"error_count":       len(result.Errors),
		"stage":             "COMPLETE",
	})

	return result, nil
}

// ingestModuleFile loads one module baseline file and stores it as a
// scenario named after the file
func (s *IngestionService) ingestModuleFile(ctx context.Context, filePath string) (int, int, error) {
	name := scenarioName(filePath)

	header, records, err := readBaselineCSV(filePath)
	if err != nil {
		return 0, 0, err
	}
	if err := models.CheckModuleColumns(header); err != nil {
		return 0, 0, err
	}

	rows := make([]models.ModuleBaselineRow, 0, len(records))
	for i, record := range records {
		row, err := (&models.RawModuleRecord{Values: record}).ToModuleRow()
		if err != nil {
			return 0, 0, fmt.Errorf("data line %d: %w", i+1, err)
		}
		rows = append(rows, *row)
	}

	series := &models.ScenarioSeries{Name: name, Rows: rows}
	if err := series.Validate(); err != nil {
		return 0, 0, err
	}

	scenario := &models.Scenario{
		Name:        name,
		Description: fmt.Sprintf("ingested from %s", filepath.Base(filePath)),
	}
	if err := s.repo.CreateScenario(ctx, scenario); err != nil {
		return 0, 0, err
	}
	if err := s.repo.ReplaceModuleBaseline(ctx, scenario.ID, rows); err != nil {
		return 0, 0, err
	}

	s.logger.Info(ctx, "[INGEST_SCENARIO] Scenario ingested", logging.Fields{
		"scenario_id": scenario.ID,
		"scenario":    name,
		"rows":        len(rows),
		"years":       fmt.Sprintf("%d-%d", rows[0].Year, rows[len(rows)-1].Year),
	})

	return scenario.ID, len(rows), nil
}

// loadMaterialFile parses one material baseline file
func (s *IngestionService) loadMaterialFile(filePath string) ([]models.MaterialBaselineRow, error) {
	header, records, err := readBaselineCSV(filePath)
	if err != nil {
		return nil, err
	}
	if err := models.CheckMaterialColumns(header); err != nil {
		return nil, err
	}

	rows := make([]models.MaterialBaselineRow, 0, len(records))
	for i, record := range records {
		row, err := (&models.RawMaterialRecord{Values: record}).ToMaterialRow()
		if err != nil {
			return nil, fmt.Errorf("data line %d: %w", i+1, err)
		}
		rows = append(rows, *row)
	}

	series := &models.MaterialSeries{Material: materialName(filePath), Rows: rows}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	return rows, nil
}

// readBaselineCSV reads a published baseline file: the first line carries
// column names, the second line carries units metadata, the rest is data.
// Returns the header and one name-keyed map per data line.
func readBaselineCSV(filePath string) ([]string, []map[string]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		// The published files carry a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	// Units row, kept out of the data.
	if _, err := reader.Read(); err != nil {
		return nil, nil, fmt.Errorf("failed to read units row: %w", err)
	}

	var records []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read data row: %w", err)
		}

		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(fields) {
				record[col] = fields[i]
			}
		}
		records = append(records, record)
	}

	return header, records, nil
}

// scenarioName derives the scenario name from a module baseline filename,
// e.g. baseline_modules_US.csv -> US
func scenarioName(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return strings.TrimPrefix(base, moduleFilePrefix)
}

// materialName derives the material name from a material baseline filename,
// e.g. baseline_material_glass.csv -> glass
func materialName(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return strings.TrimPrefix(base, materialFilePrefix)
}
