package models

import (
	"strconv"
	"strings"
)

// Baseline CSV column names for the module series. The names are the input
// contract shared with the published baseline files.
const (
	ColYear                 = "year"
	ColNewInstalledCapacity = "new_Installed_Capacity_[MW]"
	ColModuleEfficiency     = "mod_eff"
	ColReliabilityT50       = "mod_reliability_t50"
	ColReliabilityT90       = "mod_reliability_t90"
	ColDegradation          = "mod_degradation"
	ColLifetime             = "mod_lifetime"
	ColRepairing            = "mod_Repairing"
	ColRepowering           = "mod_Repowering"
	ColEOLCollectionEff     = "mod_EOL_collection_eff"
	ColEOLCollectedRecycled = "mod_EOL_collected_recycled"
)

// ModuleBaselineRow represents one calendar year of a scenario's module
// baseline. Capacity is stored in watts; percentage fields carry values in
// [0,100], fraction fields in [0,1].
type ModuleBaselineRow struct {
	Year                   int     `json:"year" db:"year"`
	NewInstalledCapacityW  float64 `json:"new_installed_capacity_w" db:"new_installed_capacity_w"`
	ModuleEfficiencyPct    float64 `json:"mod_eff" db:"mod_eff"`
	ReliabilityT50Years    float64 `json:"mod_reliability_t50" db:"mod_reliability_t50"`
	ReliabilityT90Years    float64 `json:"mod_reliability_t90" db:"mod_reliability_t90"`
	DegradationPctPerYear  float64 `json:"mod_degradation" db:"mod_degradation"`
	LifetimeYears          float64 `json:"mod_lifetime" db:"mod_lifetime"`
	RepairFraction         float64 `json:"mod_repairing" db:"mod_repairing"`
	RepoweringFraction     float64 `json:"mod_repowering" db:"mod_repowering"`
	EOLCollectionEffPct    float64 `json:"mod_eol_collection_eff" db:"mod_eol_collection_eff"`
	EOLCollectedRecycledPct float64 `json:"mod_eol_collected_recycled" db:"mod_eol_collected_recycled"`
}

// ScenarioSeries is the per-year module baseline for one scenario. Rows are
// ordered by year and the engine treats the series as read-only input.
type ScenarioSeries struct {
	Name string
	Rows []ModuleBaselineRow
}

// Years returns the calendar years of the series in row order.
func (s *ScenarioSeries) Years() []int {
	years := make([]int, len(s.Rows))
	for i, row := range s.Rows {
		years[i] = row.Year
	}
	return years
}

// Validate checks the structural invariants of the series: at least one row,
// contiguous ascending years, and every rate within its declared range.
func (s *ScenarioSeries) Validate() error {
	if len(s.Rows) == 0 {
		return &InconsistentScenarioError{Reason: "module baseline has no rows"}
	}

	for i, row := range s.Rows {
		if i > 0 && row.Year != s.Rows[i-1].Year+1 {
			return &InconsistentScenarioError{
				Reason: "module baseline years are not contiguous at " + strconv.Itoa(row.Year),
			}
		}

		if err := checkPercent("mod_eff", row.Year, row.ModuleEfficiencyPct); err != nil {
			return err
		}
		if err := checkPercent("mod_degradation", row.Year, row.DegradationPctPerYear); err != nil {
			return err
		}
		if err := checkPercent("mod_EOL_collection_eff", row.Year, row.EOLCollectionEffPct); err != nil {
			return err
		}
		if err := checkPercent("mod_EOL_collected_recycled", row.Year, row.EOLCollectedRecycledPct); err != nil {
			return err
		}
		if err := checkFraction("mod_Repairing", row.Year, row.RepairFraction); err != nil {
			return err
		}
		if err := checkFraction("mod_Repowering", row.Year, row.RepoweringFraction); err != nil {
			return err
		}
		if row.LifetimeYears < 0 {
			return &InvalidRateError{Field: "mod_lifetime", Year: row.Year, Value: row.LifetimeYears, Min: 0, Max: 1000}
		}
	}

	return nil
}

func checkPercent(field string, year int, v float64) error {
	if v < 0 || v > 100 {
		return &InvalidRateError{Field: field, Year: year, Value: v, Min: 0, Max: 100}
	}
	return nil
}

func checkFraction(field string, year int, v float64) error {
	if v < 0 || v > 1 {
		return &InvalidRateError{Field: field, Year: year, Value: v, Min: 0, Max: 1}
	}
	return nil
}

// RawModuleRecord represents one data line of a module baseline CSV keyed by
// header name. Used during ingestion.
type RawModuleRecord struct {
	Values map[string]string
}

// moduleRequiredColumns lists the mandatory module baseline columns.
// mod_Repairing and mod_Repowering are optional and default to zero.
var moduleRequiredColumns = []string{
	ColYear,
	ColNewInstalledCapacity,
	ColModuleEfficiency,
	ColReliabilityT50,
	ColReliabilityT90,
	ColDegradation,
	ColLifetime,
	ColEOLCollectionEff,
	ColEOLCollectedRecycled,
}

// CheckModuleColumns verifies that every mandatory module column is present
// in the given header set.
func CheckModuleColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, col := range moduleRequiredColumns {
		if !present[col] {
			return &MissingColumnError{Column: col, Table: "module"}
		}
	}
	return nil
}

// ToModuleRow converts a raw record to a ModuleBaselineRow. Capacity is
// converted from MW to W at this boundary; absent optional repair/repowering
// values default to zero. An empty capacity cell is treated as zero
// installation for that year.
func (r *RawModuleRecord) ToModuleRow() (*ModuleBaselineRow, error) {
	year, err := r.intField(ColYear)
	if err != nil {
		return nil, err
	}

	row := &ModuleBaselineRow{Year: year}

	capacityMW, err := r.floatFieldDefault(ColNewInstalledCapacity, 0)
	if err != nil {
		return nil, err
	}
	row.NewInstalledCapacityW = capacityMW * 1e6

	fields := []struct {
		col      string
		dst      *float64
		optional bool
	}{
		{ColModuleEfficiency, &row.ModuleEfficiencyPct, false},
		{ColReliabilityT50, &row.ReliabilityT50Years, false},
		{ColReliabilityT90, &row.ReliabilityT90Years, false},
		{ColDegradation, &row.DegradationPctPerYear, false},
		{ColLifetime, &row.LifetimeYears, false},
		{ColRepairing, &row.RepairFraction, true},
		{ColRepowering, &row.RepoweringFraction, true},
		{ColEOLCollectionEff, &row.EOLCollectionEffPct, false},
		{ColEOLCollectedRecycled, &row.EOLCollectedRecycledPct, false},
	}
	for _, f := range fields {
		v, ok := r.Values[f.col]
		if !ok || strings.TrimSpace(v) == "" {
			if f.optional {
				*f.dst = 0
				continue
			}
			return nil, &MissingColumnError{Column: f.col, Table: "module"}
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, &InconsistentScenarioError{
				Reason: "non-numeric value " + v + " in column " + f.col,
			}
		}
		*f.dst = parsed
	}

	return row, nil
}

func (r *RawModuleRecord) intField(col string) (int, error) {
	v, ok := r.Values[col]
	if !ok {
		return 0, &MissingColumnError{Column: col, Table: "module"}
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &InconsistentScenarioError{Reason: "non-integer year " + v}
	}
	return n, nil
}

func (r *RawModuleRecord) floatFieldDefault(col string, def float64) (float64, error) {
	v, ok := r.Values[col]
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, &InconsistentScenarioError{
			Reason: "non-numeric value " + v + " in column " + col,
		}
	}
	return parsed, nil
}
