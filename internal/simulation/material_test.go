package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcycle-platform/internal/models"
)

// glassSeries builds a material baseline aligned to the scenario with
// year-varying mass per area, so column-wise conversion is observable.
func glassSeries(scn *models.ScenarioSeries) *models.MaterialSeries {
	rows := make([]models.MaterialBaselineRow, len(scn.Rows))
	for i := range rows {
		rows[i] = models.MaterialBaselineRow{
			Year:                       scn.Rows[i].Year,
			MassPerM2:                  16000 - 100*float64(i),
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
	return &models.MaterialSeries{Material: "glass", Rows: rows}
}

func TestCascadeMaterialMassConservation(t *testing.T) {
	scn := growingScenario(2010, 15)
	result, flows := runEOL(t, scn)
	mat := glassSeries(scn)

	out, err := CascadeMaterial(flows, scn, mat, Params{})
	require.NoError(t, err)
	require.Len(t, out, 15)

	for y, row := range out {
		// Disposed mass for the year, converted per generation.
		disposedMass := 0.0
		for g := 0; g <= y; g++ {
			disposedMass += result.Disposal.At(y, g) * mat.Rows[g].MassPerM2
		}

		// Every unit of disposed or scrapped mass is either landfilled,
		// returned to other use, or reused in manufacturing.
		returned := row.TotalRecycledOU + row.EOLRecycledHQIntoMFG + row.MFGRecycledHQIntoMFG
		total := disposedMass + row.MFGScrap
		if total == 0 {
			assert.Zero(t, row.TotalLandfilled+returned)
			continue
		}
		assert.InEpsilon(t, total, row.TotalLandfilled+returned, 1e-9, "year %d", row.Year)
	}
}

func TestCascadeMaterialColumnWiseConversion(t *testing.T) {
	scn := singleCohortScenario(2020, 12, 100)
	_, flows := runEOL(t, scn)
	mat := glassSeries(scn)

	out, err := CascadeMaterial(flows, scn, mat, Params{})
	require.NoError(t, err)

	// Only generation 0 carries area, so every end-of-life mass flow uses
	// the install-year mass per m², not the disposal year's.
	installMass := mat.Rows[0].MassPerM2
	notCollected := flows.NotCollected.YearTotals()
	for y := 1; y < len(out); y++ {
		if notCollected[y] == 0 {
			continue
		}
		assert.InEpsilon(t, notCollected[y]*installMass, out[y].ModulesNotCollected, 1e-9,
			"year index %d", y)
	}
}

func TestCascadeMaterialEOLNetworkStages(t *testing.T) {
	scn := growingScenario(2010, 12)
	_, flows := runEOL(t, scn)
	mat := glassSeries(scn)

	out, err := CascadeMaterial(flows, scn, mat, Params{})
	require.NoError(t, err)

	recycledMass := flows.Recycled.ScaleByGeneration(func() []float64 {
		mass := make([]float64, len(mat.Rows))
		for g := range mat.Rows {
			mass[g] = mat.Rows[g].MassPerM2
		}
		return mass
	}()).YearTotals()

	for y, row := range out {
		if recycledMass[y] == 0 {
			continue
		}
		// Stage splits: sent vs kept, recovered vs lost, HQ vs OQ, reuse
		// vs other use.
		assert.InEpsilon(t, recycledMass[y]*0.80, row.EOLSentToRecycling, 1e-9)
		assert.InEpsilon(t, recycledMass[y]*0.20, row.EOLNotRecycledLandfilled, 1e-9)
		assert.InEpsilon(t, row.EOLSentToRecycling*0.65, row.EOLRecycled, 1e-9)
		assert.InEpsilon(t, row.EOLSentToRecycling*0.35, row.EOLRecycledLossesLandfilled, 1e-9)
		assert.InEpsilon(t, row.EOLRecycled*0.50, row.EOLRecycledIntoHQ, 1e-9)
		assert.InEpsilon(t, row.EOLRecycledIntoHQ*0.40, row.EOLRecycledHQIntoMFG, 1e-9)
	}
}

func TestCascadeMaterialScrapNetwork(t *testing.T) {
	scn := growingScenario(2010, 10)
	_, flows := runEOL(t, scn)
	mat := glassSeries(scn)

	out, err := CascadeMaterial(flows, scn, mat, Params{})
	require.NoError(t, err)

	for _, row := range out {
		require.Greater(t, row.Manufactured, 0.0)

		// Input covers manufacturing losses; scrap is the difference.
		assert.InEpsilon(t, row.Manufactured/0.95, row.ManufacturingInput, 1e-9)
		assert.InEpsilon(t, row.ManufacturingInput-row.Manufactured, row.MFGScrap, 1e-9)
		assert.InEpsilon(t, row.MFGScrap*0.40, row.MFGScrapSentToRecycling, 1e-9)
		assert.InEpsilon(t, row.MFGScrap*0.60, row.MFGScrapLandfilled, 1e-9)
		assert.InEpsilon(t, row.MFGScrapSentToRecycling*0.70, row.MFGScrapRecycled, 1e-9)

		// Residual demand after both recycling streams.
		assert.InEpsilon(t, row.ManufacturingInput-row.EOLRecycledHQIntoMFG-row.MFGRecycledHQIntoMFG,
			row.VirginStock, 1e-9)
	}
}

func TestCascadeMaterialPerfectManufacturing(t *testing.T) {
	scn := growingScenario(2010, 10)
	_, flows := runEOL(t, scn)
	mat := glassSeries(scn)
	for i := range mat.Rows {
		mat.Rows[i].MFGEfficiencyPct = 100
	}

	out, err := CascadeMaterial(flows, scn, mat, Params{})
	require.NoError(t, err)

	for _, row := range out {
		assert.Equal(t, row.Manufactured, row.ManufacturingInput)
		assert.Zero(t, row.MFGScrap)
		assert.Zero(t, row.MFGScrapSentToRecycling)
		assert.Zero(t, row.MFGScrapLandfilled)
		assert.Zero(t, row.MFGScrapRecycled)
		assert.Zero(t, row.MFGScrapRecycledLossesLandfilled)
		assert.Zero(t, row.MFGRecycledIntoHQ)
		assert.Zero(t, row.MFGRecycledIntoOQ)
		assert.Zero(t, row.MFGRecycledHQIntoMFG)
		assert.Zero(t, row.MFGRecycledHQIntoOU)
		assert.Zero(t, row.TotalMFGLandfilled)
	}
}

func TestCascadeMaterialValidation(t *testing.T) {
	scn := growingScenario(2010, 10)
	_, flows := runEOL(t, scn)

	t.Run("misaligned years", func(t *testing.T) {
		mat := glassSeries(growingScenario(2010, 6))
		_, err := CascadeMaterial(flows, scn, mat, Params{})
		require.Error(t, err)
		var inconsistent *models.InconsistentScenarioError
		assert.ErrorAs(t, err, &inconsistent)
	})

	t.Run("rate out of range", func(t *testing.T) {
		mat := glassSeries(scn)
		mat.Rows[4].EOLRecyclingEffPct = 130
		_, err := CascadeMaterial(flows, scn, mat, Params{})
		require.Error(t, err)
		var invalidRate *models.InvalidRateError
		assert.ErrorAs(t, err, &invalidRate)
	})

	t.Run("zero manufacturing efficiency with production", func(t *testing.T) {
		mat := glassSeries(scn)
		mat.Rows[0].MFGEfficiencyPct = 0
		_, err := CascadeMaterial(flows, scn, mat, Params{})
		require.Error(t, err)
		var invalidRate *models.InvalidRateError
		assert.ErrorAs(t, err, &invalidRate)
	})
}
