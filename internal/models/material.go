package models

import (
	"strconv"
	"strings"
)

// Baseline CSV column names for a material series.
const (
	ColMassPerM2               = "mat_massperm2"
	ColMFGEff                  = "mat_MFG_eff"
	ColMFGScrapRecycled        = "mat_MFG_scrap_recycled"
	ColMFGScrapRecyclingEff    = "mat_MFG_scrap_recycling_eff"
	ColMFGScrapRecycledIntoHQ  = "mat_MFG_scrap_Recycled_into_HQ"
	ColMFGScrapHQReused4MFG    = "mat_MFG_scrap_Recycled_into_HQ_Reused4MFG"
	ColEOLSentToRecycling      = "mat_EOL_collected_Recycled"
	ColEOLRecyclingEff         = "mat_EOL_Recycling_eff"
	ColEOLRecycledIntoHQ       = "mat_EOL_Recycled_into_HQ"
	ColEOLRecycledHQReused4MFG = "mat_EOL_RecycledHQ_Reused4MFG"
)

// MaterialBaselineRow represents one calendar year of a tracked material's
// baseline. Mass per area is in grams per square meter; all rate fields are
// percentages in [0,100].
type MaterialBaselineRow struct {
	Year                      int     `json:"year" db:"year"`
	MassPerM2                 float64 `json:"mat_massperm2" db:"mat_massperm2"`
	MFGEfficiencyPct          float64 `json:"mat_mfg_eff" db:"mat_mfg_eff"`
	MFGScrapRecycledPct       float64 `json:"mat_mfg_scrap_recycled" db:"mat_mfg_scrap_recycled"`
	MFGScrapRecyclingEffPct   float64 `json:"mat_mfg_scrap_recycling_eff" db:"mat_mfg_scrap_recycling_eff"`
	MFGScrapRecycledIntoHQPct float64 `json:"mat_mfg_scrap_recycled_into_hq" db:"mat_mfg_scrap_recycled_into_hq"`
	MFGScrapHQReused4MFGPct   float64 `json:"mat_mfg_scrap_hq_reused4mfg" db:"mat_mfg_scrap_hq_reused4mfg"`
	EOLSentToRecyclingPct     float64 `json:"mat_eol_collected_recycled" db:"mat_eol_collected_recycled"`
	EOLRecyclingEffPct        float64 `json:"mat_eol_recycling_eff" db:"mat_eol_recycling_eff"`
	EOLRecycledIntoHQPct      float64 `json:"mat_eol_recycled_into_hq" db:"mat_eol_recycled_into_hq"`
	EOLRecycledHQReused4MFGPct float64 `json:"mat_eol_recycledhq_reused4mfg" db:"mat_eol_recycledhq_reused4mfg"`
}

// MaterialSeries is the per-year baseline for one tracked material
// (glass, silicon, silver, copper, aluminum, ...). Read-only engine input.
type MaterialSeries struct {
	Material string
	Rows     []MaterialBaselineRow
}

// Validate checks rate ranges and year contiguity of the material series.
func (m *MaterialSeries) Validate() error {
	if len(m.Rows) == 0 {
		return &InconsistentScenarioError{Reason: "material baseline " + m.Material + " has no rows"}
	}

	for i, row := range m.Rows {
		if i > 0 && row.Year != m.Rows[i-1].Year+1 {
			return &InconsistentScenarioError{
				Reason: "material baseline " + m.Material + " years are not contiguous at " + strconv.Itoa(row.Year),
			}
		}
		if row.MassPerM2 < 0 {
			return &InvalidRateError{Field: ColMassPerM2, Year: row.Year, Value: row.MassPerM2, Min: 0, Max: 1e12}
		}

		rates := []struct {
			field string
			value float64
		}{
			{ColMFGEff, row.MFGEfficiencyPct},
			{ColMFGScrapRecycled, row.MFGScrapRecycledPct},
			{ColMFGScrapRecyclingEff, row.MFGScrapRecyclingEffPct},
			{ColMFGScrapRecycledIntoHQ, row.MFGScrapRecycledIntoHQPct},
			{ColMFGScrapHQReused4MFG, row.MFGScrapHQReused4MFGPct},
			{ColEOLSentToRecycling, row.EOLSentToRecyclingPct},
			{ColEOLRecyclingEff, row.EOLRecyclingEffPct},
			{ColEOLRecycledIntoHQ, row.EOLRecycledIntoHQPct},
			{ColEOLRecycledHQReused4MFG, row.EOLRecycledHQReused4MFGPct},
		}
		for _, r := range rates {
			if err := checkPercent(r.field, row.Year, r.value); err != nil {
				return err
			}
		}
	}

	return nil
}

// AlignedWith checks that the material series covers exactly the same years
// as the module series it will be combined with.
func (m *MaterialSeries) AlignedWith(s *ScenarioSeries) error {
	if len(m.Rows) != len(s.Rows) {
		return &InconsistentScenarioError{
			Reason: "material " + m.Material + " covers " + strconv.Itoa(len(m.Rows)) +
				" years, module baseline covers " + strconv.Itoa(len(s.Rows)),
		}
	}
	for i := range m.Rows {
		if m.Rows[i].Year != s.Rows[i].Year {
			return &InconsistentScenarioError{
				Reason: "material " + m.Material + " year " + strconv.Itoa(m.Rows[i].Year) +
					" does not match module year " + strconv.Itoa(s.Rows[i].Year),
			}
		}
	}
	return nil
}

// RawMaterialRecord represents one data line of a material baseline CSV
// keyed by header name.
type RawMaterialRecord struct {
	Values map[string]string
}

var materialRequiredColumns = []string{
	ColYear,
	ColMassPerM2,
	ColMFGEff,
	ColMFGScrapRecycled,
	ColMFGScrapRecyclingEff,
	ColMFGScrapRecycledIntoHQ,
	ColMFGScrapHQReused4MFG,
	ColEOLSentToRecycling,
	ColEOLRecyclingEff,
	ColEOLRecycledIntoHQ,
	ColEOLRecycledHQReused4MFG,
}

// CheckMaterialColumns verifies that every mandatory material column is
// present in the given header set.
func CheckMaterialColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, col := range materialRequiredColumns {
		if !present[col] {
			return &MissingColumnError{Column: col, Table: "material"}
		}
	}
	return nil
}

// ToMaterialRow converts a raw record to a MaterialBaselineRow.
func (r *RawMaterialRecord) ToMaterialRow() (*MaterialBaselineRow, error) {
	yearStr, ok := r.Values[ColYear]
	if !ok {
		return nil, &MissingColumnError{Column: ColYear, Table: "material"}
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil {
		return nil, &InconsistentScenarioError{Reason: "non-integer year " + yearStr}
	}

	row := &MaterialBaselineRow{Year: year}

	fields := []struct {
		col string
		dst *float64
	}{
		{ColMassPerM2, &row.MassPerM2},
		{ColMFGEff, &row.MFGEfficiencyPct},
		{ColMFGScrapRecycled, &row.MFGScrapRecycledPct},
		{ColMFGScrapRecyclingEff, &row.MFGScrapRecyclingEffPct},
		{ColMFGScrapRecycledIntoHQ, &row.MFGScrapRecycledIntoHQPct},
		{ColMFGScrapHQReused4MFG, &row.MFGScrapHQReused4MFGPct},
		{ColEOLSentToRecycling, &row.EOLSentToRecyclingPct},
		{ColEOLRecyclingEff, &row.EOLRecyclingEffPct},
		{ColEOLRecycledIntoHQ, &row.EOLRecycledIntoHQPct},
		{ColEOLRecycledHQReused4MFG, &row.EOLRecycledHQReused4MFGPct},
	}
	for _, f := range fields {
		v, ok := r.Values[f.col]
		if !ok || strings.TrimSpace(v) == "" {
			return nil, &MissingColumnError{Column: f.col, Table: "material"}
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
