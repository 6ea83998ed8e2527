package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcycle-platform/internal/models"
)

func runEOL(t *testing.T, scn *models.ScenarioSeries) (*ScenarioResult, *EOLFlows) {
	t.Helper()
	result, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)
	flows, err := CascadeEOL(result.Disposal, scn)
	require.NoError(t, err)
	return result, flows
}

func TestCascadeEOLConservation(t *testing.T) {
	scn := growingScenario(2010, 15)
	result, flows := runEOL(t, scn)

	disposal := result.Disposal.YearTotals()
	collected := flows.Collected.YearTotals()
	notCollected := flows.NotCollected.YearTotals()
	recycled := flows.Recycled.YearTotals()
	notRecycled := flows.NotRecycled.YearTotals()

	for y := range disposal {
		if disposal[y] == 0 {
			assert.Zero(t, collected[y]+notCollected[y])
			continue
		}
		assert.InEpsilon(t, disposal[y], collected[y]+notCollected[y], 1e-9, "collection split year index %d", y)
		if collected[y] > 0 {
			assert.InEpsilon(t, collected[y], recycled[y]+notRecycled[y], 1e-9, "recycling split year index %d", y)
		}
	}
}

func TestCascadeEOLFillYearly(t *testing.T) {
	scn := growingScenario(2010, 12)
	result, flows := runEOL(t, scn)

	flows.FillYearly(result.Yearly)

	collected := flows.Collected.YearTotals()
	for y, row := range result.Yearly {
		assert.Equal(t, collected[y], row.EOLCollected)
		if row.CumulativeAreaDisposed > 0 {
			assert.InEpsilon(t, row.CumulativeAreaDisposed,
				row.EOLCollected+row.EOLNotCollected, 1e-9, "year %d", row.Year)
		}
	}
}

func TestCascadeEOLFullCollectionNoRecycling(t *testing.T) {
	scn := growingScenario(2010, 12)
	for i := range scn.Rows {
		scn.Rows[i].EOLCollectionEffPct = 100
		scn.Rows[i].EOLCollectedRecycledPct = 0
	}
	result, flows := runEOL(t, scn)

	disposal := result.Disposal.YearTotals()
	collected := flows.Collected.YearTotals()
	notCollected := flows.NotCollected.YearTotals()
	recycled := flows.Recycled.YearTotals()
	notRecycled := flows.NotRecycled.YearTotals()

	// Everything disposed is collected, nothing is recycled: the entire
	// stream lands in the not-recycled landfill column.
	for y := range disposal {
		assert.Equal(t, disposal[y], collected[y], "year index %d", y)
		assert.Zero(t, notCollected[y])
		assert.Zero(t, recycled[y])
		assert.Equal(t, collected[y], notRecycled[y])
	}
}

func TestCascadeEOLMismatchedScenario(t *testing.T) {
	scn := growingScenario(2010, 10)
	result, err := AggregateScenario(context.Background(), scn, Params{}, nil)
	require.NoError(t, err)

	short := growingScenario(2010, 6)
	_, err = CascadeEOL(result.Disposal, short)
	require.Error(t, err)
	var inconsistent *models.InconsistentScenarioError
	assert.ErrorAs(t, err, &inconsistent)
}
