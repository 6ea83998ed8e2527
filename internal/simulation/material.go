package simulation

import (
	"pvcycle-platform/internal/models"
)

// CascadeMaterial converts the end-of-life module-area flows into one
// material's mass flows and runs the two recycling networks: the
// end-of-life network fed by disposed modules, and the manufacturing-scrap
// network fed by current-year production. It returns one row per year.
//
// Mass conversion is column-wise: each generation's area is multiplied by
// the mass-per-m² of its own install year, because material composition is
// fixed at manufacture time. The process rates that follow are row-wise by
// disposal year, like the module-level cascade.
func CascadeMaterial(flows *EOLFlows, scn *models.ScenarioSeries, mat *models.MaterialSeries, params Params) ([]models.MaterialFlowYearly, error) {
	if err := mat.Validate(); err != nil {
		return nil, err
	}
	if err := mat.AlignedWith(scn); err != nil {
		return nil, err
	}

	n := len(scn.Rows)
	massPerGen := make([]float64, n)
	for g, row := range mat.Rows {
		massPerGen[g] = row.MassPerM2
	}

	// Per-disposal-year rate vectors, scaled from percentages.
	sentRate := make([]float64, n)
	sentLoss := make([]float64, n)
	recEff := make([]float64, n)
	recLoss := make([]float64, n)
	hqRate := make([]float64, n)
	oqRate := make([]float64, n)
	reuseRate := make([]float64, n)
	otherRate := make([]float64, n)
	for y, row := range mat.Rows {
		sentRate[y] = row.EOLSentToRecyclingPct * 0.01
		sentLoss[y] = 1 - sentRate[y]
		recEff[y] = row.EOLRecyclingEffPct * 0.01
		recLoss[y] = 1 - recEff[y]
		hqRate[y] = row.EOLRecycledIntoHQPct * 0.01
		oqRate[y] = 1 - hqRate[y]
		reuseRate[y] = row.EOLRecycledHQReused4MFGPct * 0.01
		otherRate[y] = 1 - reuseRate[y]
	}

	// End-of-life network, in mass units from here on.
	recycledMass := flows.Recycled.ScaleByGeneration(massPerGen)
	notCollected := flows.NotCollected.ScaleByGeneration(massPerGen).YearTotals()
	notRecycled := flows.NotRecycled.ScaleByGeneration(massPerGen).YearTotals()

	sent := recycledMass.ScaleByYear(sentRate)
	notSent := recycledMass.ScaleByYear(sentLoss).YearTotals()
	recycledOK := sent.ScaleByYear(recEff)
	recycleLosses := sent.ScaleByYear(recLoss).YearTotals()
	hq := recycledOK.ScaleByYear(hqRate)
	oq := recycledOK.ScaleByYear(oqRate).YearTotals()
	hqIntoMFG := hq.ScaleByYear(reuseRate).YearTotals()
	hqIntoOU := hq.ScaleByYear(otherRate).YearTotals()

	sentTotals := sent.YearTotals()
	recycledTotals := recycledOK.YearTotals()
	hqTotals := hq.YearTotals()

	out := make([]models.MaterialFlowYearly, n)
	for y := 0; y < n; y++ {
		row := mat.Rows[y]

		// Manufacturing-scrap network, driven by the current year's
		// production independent of disposal.
		manufactured := installedArea(scn.Rows[y], params.irradiance()) * row.MassPerM2
		var input float64
		if manufactured > 0 {
			if row.MFGEfficiencyPct == 0 {
				return nil, &models.InvalidRateError{
					Field: models.ColMFGEff, Year: row.Year, Value: 0, Min: 0, Max: 100,
				}
			}
			input = manufactured / (row.MFGEfficiencyPct * 0.01)
		}
		scrap := input - manufactured
		scrapSent := scrap * row.MFGScrapRecycledPct * 0.01
		scrapLandfilled := scrap - scrapSent
		scrapRecycled := scrapSent * row.MFGScrapRecyclingEffPct * 0.01
		scrapLosses := scrapSent - scrapRecycled
		scrapHQ := scrapRecycled * row.MFGScrapRecycledIntoHQPct * 0.01
		scrapOQ := scrapRecycled - scrapHQ
		scrapHQIntoMFG := scrapHQ * row.MFGScrapHQReused4MFGPct * 0.01
		scrapHQIntoOU := scrapHQ - scrapHQIntoMFG

		totalEOLLandfilled := notCollected[y] + notRecycled[y] + notSent[y] + recycleLosses[y]
		totalMFGLandfilled := scrapLandfilled + scrapLosses

		out[y] = models.MaterialFlowYearly{
			Year: row.Year,

			ModulesNotCollected:         notCollected[y],
			ModulesNotRecycled:          notRecycled[y],
			EOLSentToRecycling:          sentTotals[y],
			EOLNotRecycledLandfilled:    notSent[y],
			EOLRecycled:                 recycledTotals[y],
			EOLRecycledLossesLandfilled: recycleLosses[y],
			EOLRecycledIntoHQ:           hqTotals[y],
			EOLRecycledIntoOQ:           oq[y],
			EOLRecycledHQIntoMFG:        hqIntoMFG[y],
			EOLRecycledHQIntoOU:         hqIntoOU[y],

			Manufactured:                     manufactured,
			ManufacturingInput:               input,
			MFGScrap:                         scrap,
			MFGScrapSentToRecycling:          scrapSent,
			MFGScrapLandfilled:               scrapLandfilled,
			MFGScrapRecycled:                 scrapRecycled,
			MFGScrapRecycledLossesLandfilled: scrapLosses,
			MFGRecycledIntoHQ:                scrapHQ,
			MFGRecycledIntoOQ:                scrapOQ,
			MFGRecycledHQIntoMFG:             scrapHQIntoMFG,
			MFGRecycledHQIntoOU:              scrapHQIntoOU,

			VirginStock:        input - hqIntoMFG[y] - scrapHQIntoMFG,
			TotalEOLLandfilled: totalEOLLandfilled,
			TotalMFGLandfilled: totalMFGLandfilled,
			TotalLandfilled:    totalEOLLandfilled + totalMFGLandfilled,
			TotalRecycledOU:    oq[y] + hqIntoOU[y] + scrapOQ + scrapHQIntoOU,
		}
	}

	return out, nil
}
