package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcycle-platform/internal/models"
)

// growingScenario installs capacity every year, so every generation carries
// area and the cohort matrix is fully populated above the diagonal.
func growingScenario(startYear, numYears int) *models.ScenarioSeries {
	rows := make([]models.ModuleBaselineRow, numYears)
	for i := range rows {
		rows[i] = models.ModuleBaselineRow{
			Year:                    startYear + i,
			NewInstalledCapacityW:   float64(50+5*i) * 1e6,
			ModuleEfficiencyPct:     20,
			ReliabilityT50Years:     10,
			ReliabilityT90Years:     20,
			DegradationPctPerYear:   0.8,
			LifetimeYears:           25,
			RepairFraction:          0.1,
			RepoweringFraction:      0.2,
			EOLCollectionEffPct:     75,
			EOLCollectedRecycledPct: 60,
		}
	}
	return &models.ScenarioSeries{Name: "growing", Rows: rows}
}

func TestAggregateScenarioDisposalSplit(t *testing.T) {
	scn := growingScenario(2010, 15)
	result, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)
	require.Len(t, result.Yearly, 15)

	for _, row := range result.Yearly {
		assert.InDelta(t, row.CumulativeAreaDisposed,
			row.CumulativeAreaDisposedByFailure+row.CumulativeAreaDisposedByDegradation,
			1e-9, "year %d", row.Year)
	}
}

func TestAggregateScenarioMatchesTrajectories(t *testing.T) {
	scn := growingScenario(2010, 12)
	result, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)

	n := len(scn.Rows)
	for g := 0; g < n; g++ {
		traj, err := ProjectGeneration(scn, g, Params{}, nil)
		require.NoError(t, err)
		for y := 0; y < n; y++ {
			want := traj.DisposedByFailure[y] + traj.DisposedByDegradation[y]
			assert.Equal(t, want, result.Disposal.At(y, g),
				"disposal entry (year %d, generation %d)", y, g)
		}
	}
}

func TestAggregateScenarioUpperTriangular(t *testing.T) {
	scn := growingScenario(2010, 10)
	result, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)

	// A generation contributes exactly zero before its install year.
	for g := 0; g < result.Disposal.Size(); g++ {
		for y := 0; y < g; y++ {
			assert.Zero(t, result.Disposal.At(y, g),
				"entry (year %d, generation %d) before install", y, g)
		}
	}
}

func TestAggregateScenarioDeterministic(t *testing.T) {
	scn := growingScenario(2010, 20)

	first, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)
	second, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)

	// Generations run concurrently but the reduction is ordered, so two
	// runs agree bit for bit.
	assert.Equal(t, first.Yearly, second.Yearly)
}

func TestAggregateScenarioSkipsUnfittableGeneration(t *testing.T) {
	scn := growingScenario(2010, 10)
	scn.Rows[3].ReliabilityT50Years = 15
	scn.Rows[3].ReliabilityT90Years = 15

	sink := &DiagnosticList{}
	result, err := AggregateScenario(context.Background(), scn, Params{}, sink)
	require.NoError(t, err)

	var skips []Diagnostic
	for _, d := range sink.Items() {
		if d.Kind == DiagnosticGenerationSkipped {
			skips = append(skips, d)
		}
	}
	require.Len(t, skips, 1)
	assert.Equal(t, 3, skips[0].Generation)
	assert.Equal(t, 2013, skips[0].Year)

	// The skipped generation contributes nothing; the rest of the scenario
	// is still computed.
	for y := 0; y < result.Disposal.Size(); y++ {
		assert.Zero(t, result.Disposal.At(y, 3))
	}
	assert.Greater(t, result.Yearly[9].CumulativeActiveArea, 0.0)
}

func TestAggregateScenarioValidation(t *testing.T) {
	t.Run("non-contiguous years", func(t *testing.T) {
		scn := growingScenario(2010, 5)
		scn.Rows[3].Year = 2020

		_, err := AggregateScenario(context.Background(), scn, Params{}, nil)
		require.Error(t, err)
		var inconsistent *models.InconsistentScenarioError
		assert.ErrorAs(t, err, &inconsistent)
	})

	t.Run("rate out of range", func(t *testing.T) {
		scn := growingScenario(2010, 5)
		scn.Rows[2].EOLCollectionEffPct = 120

		_, err := AggregateScenario(context.Background(), scn, Params{}, nil)
		require.Error(t, err)
		var invalidRate *models.InvalidRateError
		assert.ErrorAs(t, err, &invalidRate)
	})

	t.Run("empty scenario", func(t *testing.T) {
		_, err := AggregateScenario(context.Background(), &models.ScenarioSeries{Name: "empty"}, Params{}, nil)
		require.Error(t, err)
	})
}

func TestAggregateScenarioWorkerCapMatchesUnbounded(t *testing.T) {
	scn := growingScenario(2010, 20)

	unbounded, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)
	capped, err := AggregateScenario(context.Background(), scn, Params{MaxWorkers: 2}, nil)
	require.NoError(t, err)

	assert.Equal(t, unbounded.Yearly, capped.Yearly)
	assert.Equal(t, unbounded.Diagnostics, capped.Diagnostics)
}

func TestAggregateScenarioDiagnosticsInGenerationOrder(t *testing.T) {
	// Every generation but the last trips the degenerate-cohort diagnostic,
	// so the stream exercises ordering across all worker goroutines.
	scn := growingScenario(2010, 8)
	for i := range scn.Rows {
		scn.Rows[i].ReliabilityT50Years = 1e250
		scn.Rows[i].ReliabilityT90Years = 2e250
	}

	sink := &DiagnosticList{}
	first, err := AggregateScenario(context.Background(), scn, Params{}, sink)
	require.NoError(t, err)
	second, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)

	require.Len(t, first.Diagnostics, 7)
	for i, d := range first.Diagnostics {
		assert.Equal(t, DiagnosticDegenerateCohort, d.Kind)
		assert.Equal(t, i, d.Generation, "diagnostic %d out of generation order", i)
	}
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
	assert.Equal(t, first.Diagnostics, sink.Items())
}

func TestAggregateScenarioCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateScenario(ctx, growingScenario(2010, 10), Params{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
