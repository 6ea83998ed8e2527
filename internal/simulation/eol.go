package simulation

import (
	"fmt"

	"pvcycle-platform/internal/models"
)

// EOLFlows holds the module-area flows of the end-of-life cascade, both as
// cohort matrices (kept for the material stage, which needs per-generation
// structure) and summed per disposal year.
//
// The cascade splits each year's disposal row-wise:
//
//	Collected    = Disposal * collectionEff
//	NotCollected = Disposal * (1 - collectionEff)
//	Recycled     = Collected * recycledRate
//	NotRecycled  = Collected * (1 - recycledRate)
//
// Rates apply at the year of disposal, uniformly across the generations
// disposed that year.
type EOLFlows struct {
	Collected    *CohortMatrix
	NotCollected *CohortMatrix
	Recycled     *CohortMatrix
	NotRecycled  *CohortMatrix
}

// CascadeEOL applies the collection and recycling splits to the disposal
// cohort matrix using the scenario's per-year rates.
func CascadeEOL(disposal *CohortMatrix, scn *models.ScenarioSeries) (*EOLFlows, error) {
	n := disposal.Size()
	if len(scn.Rows) != n {
		return nil, &models.InconsistentScenarioError{
			Reason: fmt.Sprintf("disposal matrix spans %d years, scenario has %d", n, len(scn.Rows)),
		}
	}

	collectionEff := make([]float64, n)
	collectionLoss := make([]float64, n)
	recycledRate := make([]float64, n)
	recycledLoss := make([]float64, n)
	for y, row := range scn.Rows {
		collectionEff[y] = row.EOLCollectionEffPct * 0.01
		collectionLoss[y] = 1 - collectionEff[y]
		recycledRate[y] = row.EOLCollectedRecycledPct * 0.01
		recycledLoss[y] = 1 - recycledRate[y]
	}

	collected := disposal.ScaleByYear(collectionEff)
	return &EOLFlows{
		Collected:    collected,
		NotCollected: disposal.ScaleByYear(collectionLoss),
		Recycled:     collected.ScaleByYear(recycledRate),
		NotRecycled:  collected.ScaleByYear(recycledLoss),
	}, nil
}

// FillYearly writes the cascade's per-year totals into the scenario output
// rows. yearly must be aligned to the matrix years.
func (f *EOLFlows) FillYearly(yearly []models.ScenarioYearly) {
	collected := f.Collected.YearTotals()
	notCollected := f.NotCollected.YearTotals()
	recycled := f.Recycled.YearTotals()
	notRecycled := f.NotRecycled.YearTotals()
	for y := range yearly {
		yearly[y].EOLCollected = collected[y]
		yearly[y].EOLNotCollected = notCollected[y]
		yearly[y].EOLRecycled = recycled[y]
		yearly[y].EOLNotRecycledLandfilled = notRecycled[y]
	}
}
