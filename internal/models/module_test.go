package models

import (
	"errors"
	"testing"
)

// TestRawModuleRecord_ToModuleRow tests baseline record conversion,
// including the MW to W unit scaling and optional-column defaults.
func TestRawModuleRecord_ToModuleRow(t *testing.T) {
	fullRecord := func() map[string]string {
		return map[string]string{
			ColYear:                 "2020",
			ColNewInstalledCapacity: "100",
			ColModuleEfficiency:     "20.5",
			ColReliabilityT50:       "10",
			ColReliabilityT90:       "20",
			ColDegradation:          "0.8",
			ColLifetime:             "25",
			ColRepairing:            "0.15",
			ColRepowering:           "0.05",
			ColEOLCollectionEff:     "75",
			ColEOLCollectedRecycled: "60",
		}
	}

	tests := []struct {
		name        string
		mutate      func(map[string]string)
		wantErr     bool
		wantMissing string
		checkValues func(*testing.T, *ModuleBaselineRow)
	}{
		{
			name:   "valid record with all values",
			mutate: func(m map[string]string) {},
			checkValues: func(t *testing.T, row *ModuleBaselineRow) {
				if row.Year != 2020 {
					t.Errorf("Year = %v, want 2020", row.Year)
				}
				if row.NewInstalledCapacityW != 100e6 {
					t.Errorf("NewInstalledCapacityW = %v, want 1e8", row.NewInstalledCapacityW)
				}
				if row.ModuleEfficiencyPct != 20.5 {
					t.Errorf("ModuleEfficiencyPct = %v, want 20.5", row.ModuleEfficiencyPct)
				}
				if row.RepairFraction != 0.15 {
					t.Errorf("RepairFraction = %v, want 0.15", row.RepairFraction)
				}
			},
		},
		{
			name: "repair and repowering default to zero when absent",
			mutate: func(m map[string]string) {
				delete(m, ColRepairing)
				delete(m, ColRepowering)
			},
			checkValues: func(t *testing.T, row *ModuleBaselineRow) {
				if row.RepairFraction != 0 {
					t.Errorf("RepairFraction = %v, want 0", row.RepairFraction)
				}
				if row.RepoweringFraction != 0 {
					t.Errorf("RepoweringFraction = %v, want 0", row.RepoweringFraction)
				}
			},
		},
		{
			name: "empty capacity treated as zero installation",
			mutate: func(m map[string]string) {
				m[ColNewInstalledCapacity] = ""
			},
			checkValues: func(t *testing.T, row *ModuleBaselineRow) {
				if row.NewInstalledCapacityW != 0 {
					t.Errorf("NewInstalledCapacityW = %v, want 0", row.NewInstalledCapacityW)
				}
			},
		},
		{
			name: "missing mandatory column",
			mutate: func(m map[string]string) {
				delete(m, ColReliabilityT50)
			},
			wantErr:     true,
			wantMissing: ColReliabilityT50,
		},
		{
			name: "missing year",
			mutate: func(m map[string]string) {
				delete(m, ColYear)
			},
			wantErr:     true,
			wantMissing: ColYear,
		},
		{
			name: "non-numeric value",
			mutate: func(m map[string]string) {
				m[ColModuleEfficiency] = "twenty"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := fullRecord()
			tt.mutate(values)
			record := &RawModuleRecord{Values: values}

			row, err := record.ToModuleRow()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToModuleRow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantMissing != "" {
				var missing *MissingColumnError
				if !errors.As(err, &missing) {
					t.Fatalf("error = %v, want MissingColumnError", err)
				}
				if missing.Column != tt.wantMissing {
					t.Errorf("missing column = %v, want %v", missing.Column, tt.wantMissing)
				}
			}
			if !tt.wantErr && tt.checkValues != nil {
				tt.checkValues(t, row)
			}
		})
	}
}

func TestCheckModuleColumns(t *testing.T) {
	header := []string{
		ColYear, ColNewInstalledCapacity, ColModuleEfficiency,
		ColReliabilityT50, ColReliabilityT90, ColDegradation, ColLifetime,
		ColEOLCollectionEff, ColEOLCollectedRecycled,
	}
	if err := CheckModuleColumns(header); err != nil {
		t.Fatalf("CheckModuleColumns() error = %v, want nil", err)
	}

	// The optional repair/repowering columns are not required.
	if err := CheckModuleColumns(append(header, ColRepairing, ColRepowering)); err != nil {
		t.Fatalf("CheckModuleColumns() with optional columns error = %v", err)
	}

	incomplete := header[:len(header)-1]
	err := CheckModuleColumns(incomplete)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingColumnError", err)
	}
	if missing.Column != ColEOLCollectedRecycled {
		t.Errorf("missing column = %v, want %v", missing.Column, ColEOLCollectedRecycled)
	}
}

func TestScenarioSeriesValidate(t *testing.T) {
	valid := func() *ScenarioSeries {
		return &ScenarioSeries{
			Name: "test",
			Rows: []ModuleBaselineRow{
				{Year: 2020, ModuleEfficiencyPct: 20, EOLCollectionEffPct: 75, EOLCollectedRecycledPct: 60},
				{Year: 2021, ModuleEfficiencyPct: 20, EOLCollectionEffPct: 75, EOLCollectedRecycledPct: 60},
				{Year: 2022, ModuleEfficiencyPct: 20, EOLCollectionEffPct: 75, EOLCollectedRecycledPct: 60},
			},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*ScenarioSeries)
		wantErr  bool
		wantKind string
	}{
		{name: "valid series", mutate: func(s *ScenarioSeries) {}},
		{
			name:     "gap in years",
			mutate:   func(s *ScenarioSeries) { s.Rows[2].Year = 2025 },
			wantErr:  true,
			wantKind: "inconsistent",
		},
		{
			name:     "efficiency above 100",
			mutate:   func(s *ScenarioSeries) { s.Rows[1].ModuleEfficiencyPct = 101 },
			wantErr:  true,
			wantKind: "rate",
		},
		{
			name:     "repair fraction above 1",
			mutate:   func(s *ScenarioSeries) { s.Rows[0].RepairFraction = 1.5 },
			wantErr:  true,
			wantKind: "rate",
		},
		{
			name:     "negative collection efficiency",
			mutate:   func(s *ScenarioSeries) { s.Rows[0].EOLCollectionEffPct = -1 },
			wantErr:  true,
			wantKind: "rate",
		},
		{
			name:     "no rows",
			mutate:   func(s *ScenarioSeries) { s.Rows = nil },
			wantErr:  true,
			wantKind: "inconsistent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)

			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			switch tt.wantKind {
			case "inconsistent":
				var e *InconsistentScenarioError
				if !errors.As(err, &e) {
					t.Errorf("error = %v, want InconsistentScenarioError", err)
				}
			case "rate":
				var e *InvalidRateError
				if !errors.As(err, &e) {
					t.Errorf("error = %v, want InvalidRateError", err)
				}
			}
		})
	}
}
