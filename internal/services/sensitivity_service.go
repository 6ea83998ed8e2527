package services

import (
	"context"
	"fmt"
	"math"

	"pvcycle-platform/internal/models"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// moduleStages maps baseline column names to field accessors, so sensitivity
// transforms can address any module stage by its public column name.
var moduleStages = map[string]func(*models.ModuleBaselineRow) *float64{
	models.ColModuleEfficiency:     func(r *models.ModuleBaselineRow) *float64 { return &r.ModuleEfficiencyPct },
	models.ColReliabilityT50:       func(r *models.ModuleBaselineRow) *float64 { return &r.ReliabilityT50Years },
	models.ColReliabilityT90:       func(r *models.ModuleBaselineRow) *float64 { return &r.ReliabilityT90Years },
	models.ColDegradation:          func(r *models.ModuleBaselineRow) *float64 { return &r.DegradationPctPerYear },
	models.ColLifetime:             func(r *models.ModuleBaselineRow) *float64 { return &r.LifetimeYears },
	models.ColRepairing:            func(r *models.ModuleBaselineRow) *float64 { return &r.RepairFraction },
	models.ColRepowering:           func(r *models.ModuleBaselineRow) *float64 { return &r.RepoweringFraction },
	models.ColEOLCollectionEff:     func(r *models.ModuleBaselineRow) *float64 { return &r.EOLCollectionEffPct },
	models.ColEOLCollectedRecycled: func(r *models.ModuleBaselineRow) *float64 { return &r.EOLCollectedRecycledPct },
}

var materialStages = map[string]func(*models.MaterialBaselineRow) *float64{
	models.ColMassPerM2:               func(r *models.MaterialBaselineRow) *float64 { return &r.MassPerM2 },
	models.ColMFGEff:                  func(r *models.MaterialBaselineRow) *float64 { return &r.MFGEfficiencyPct },
	models.ColMFGScrapRecycled:        func(r *models.MaterialBaselineRow) *float64 { return &r.MFGScrapRecycledPct },
	models.ColMFGScrapRecyclingEff:    func(r *models.MaterialBaselineRow) *float64 { return &r.MFGScrapRecyclingEffPct },
	models.ColMFGScrapRecycledIntoHQ:  func(r *models.MaterialBaselineRow) *float64 { return &r.MFGScrapRecycledIntoHQPct },
	models.ColMFGScrapHQReused4MFG:    func(r *models.MaterialBaselineRow) *float64 { return &r.MFGScrapHQReused4MFGPct },
	models.ColEOLSentToRecycling:      func(r *models.MaterialBaselineRow) *float64 { return &r.EOLSentToRecyclingPct },
	models.ColEOLRecyclingEff:         func(r *models.MaterialBaselineRow) *float64 { return &r.EOLRecyclingEffPct },
	models.ColEOLRecycledIntoHQ:       func(r *models.MaterialBaselineRow) *float64 { return &r.EOLRecycledIntoHQPct },
	models.ColEOLRecycledHQReused4MFG: func(r *models.MaterialBaselineRow) *float64 { return &r.EOLRecycledHQReused4MFGPct },
}

// SensitivityService derives what-if variants of a baseline for sensitivity
// studies. Inputs are never modified; transforms return new series.
type SensitivityService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSensitivityService creates a new sensitivity service
func NewSensitivityService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SensitivityService {
	return &SensitivityService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ModuleStageImprovement multiplies one module stage by factor for every
// year after startYear and returns the modified copy.
func (s *SensitivityService) ModuleStageImprovement(scn *models.ScenarioSeries, stage string, factor float64, startYear int) (*models.ScenarioSeries, error) {
	accessor, ok := moduleStages[stage]
	if !ok {
		return nil, &models.MissingColumnError{Column: stage, Table: "module"}
	}

	out := &models.ScenarioSeries{Name: scn.Name, Rows: append([]models.ModuleBaselineRow(nil), scn.Rows...)}
	for i := range out.Rows {
		if out.Rows[i].Year > startYear {
			*accessor(&out.Rows[i]) *= factor
		}
	}

	return out, nil
}

// MaterialStageImprovement multiplies one material stage by factor for every
// year after startYear and returns the modified copy.
func (s *SensitivityService) MaterialStageImprovement(mat *models.MaterialSeries, stage string, factor float64, startYear int) (*models.MaterialSeries, error) {
	accessor, ok := materialStages[stage]
	if !ok {
		return nil, &models.MissingColumnError{Column: stage, Table: "material"}
	}

	out := &models.MaterialSeries{Material: mat.Material, Rows: append([]models.MaterialBaselineRow(nil), mat.Rows...)}
	for i := range out.Rows {
		if out.Rows[i].Year > startYear {
			*accessor(&out.Rows[i]) *= factor
		}
	}

	return out, nil
}

// ModuleStageEfficiency ramps one module stage linearly from its startYear
// value to targetEff at goalYear, holding targetEff afterwards, and returns
// the modified copy.
func (s *SensitivityService) ModuleStageEfficiency(ctx context.Context, scn *models.ScenarioSeries, stage string, targetEff float64, startYear, goalYear int) (*models.ScenarioSeries, error) {
	accessor, ok := moduleStages[stage]
	if !ok {
		return nil, &models.MissingColumnError{Column: stage, Table: "module"}
	}

	targetEff, err := s.normalizeTarget(ctx, stage, targetEff)
	if err != nil {
		return nil, err
	}
	if startYear > goalYear {
		return nil, fmt.Errorf("goal year %d is before start year %d", goalYear, startYear)
	}

	out := &models.ScenarioSeries{Name: scn.Name, Rows: append([]models.ModuleBaselineRow(nil), scn.Rows...)}
	applyRamp(len(out.Rows),
		func(i int) int { return out.Rows[i].Year },
		func(i int) *float64 { return accessor(&out.Rows[i]) },
		targetEff, startYear, goalYear)

	return out, nil
}

// MaterialStageEfficiency ramps one material stage linearly from its
// startYear value to targetEff at goalYear, holding targetEff afterwards,
// and returns the modified copy.
func (s *SensitivityService) MaterialStageEfficiency(ctx context.Context, mat *models.MaterialSeries, stage string, targetEff float64, startYear, goalYear int) (*models.MaterialSeries, error) {
	accessor, ok := materialStages[stage]
	if !ok {
		return nil, &models.MissingColumnError{Column: stage, Table: "material"}
	}

	targetEff, err := s.normalizeTarget(ctx, stage, targetEff)
	if err != nil {
		return nil, err
	}
	if startYear > goalYear {
		return nil, fmt.Errorf("goal year %d is before start year %d", goalYear, startYear)
	}

	out := &models.MaterialSeries{Material: mat.Material, Rows: append([]models.MaterialBaselineRow(nil), mat.Rows...)}
	applyRamp(len(out.Rows),
		func(i int) int { return out.Rows[i].Year },
		func(i int) *float64 { return accessor(&out.Rows[i]) },
		targetEff, startYear, goalYear)

	return out, nil
}

// normalizeTarget accepts targets given as a decimal fraction and scales
// them to a percentage, then range checks.
func (s *SensitivityService) normalizeTarget(ctx context.Context, stage string, targetEff float64) (float64, error) {
	if abs := math.Abs(targetEff); abs > 0 && abs < 1 {
		s.logger.Warn(ctx, "[SENS_TARGET_SCALED] Target given as a fraction, scaling to percent", logging.Fields{
			"stage":  stage,
			"target": targetEff,
		})
		targetEff *= 100
	}
	if targetEff < 0 || targetEff > 100 {
		return 0, &models.InvalidRateError{Field: stage, Value: targetEff, Min: 0, Max: 100}
	}
	return targetEff, nil
}

// applyRamp interpolates a stage toward target between startYear and
// goalYear. The anchor is the stage value at startYear; years at or before
// startYear keep their value, years at or after goalYear take the target.
// A startYear before the series uses the first row as anchor.
func applyRamp(n int, yearAt func(int) int, valueAt func(int) *float64, target float64, startYear, goalYear int) {
	anchor := *valueAt(0)
	anchorYear := yearAt(0)
	for i := 0; i < n; i++ {
		if yearAt(i) <= startYear {
			anchor = *valueAt(i)
			anchorYear = yearAt(i)
		}
	}
	if anchorYear > startYear {
		startYear = anchorYear
	}

	span := float64(goalYear - startYear)
	for i := 0; i < n; i++ {
		year := yearAt(i)
		switch {
		case year <= startYear:
			// keep baseline value
		case year >= goalYear:
			*valueAt(i) = target
		default:
			frac := float64(year-startYear) / span
			*valueAt(i) = anchor + (target-anchor)*frac
		}
	}
}
