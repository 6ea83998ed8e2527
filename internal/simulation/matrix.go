package simulation

import (
	"fmt"

	"pvcycle-platform/internal/models"
)

// CohortMatrix is a generations × years grid of flows. Entry (g, y) is the
// flow in year index y attributable to the generation installed at year
// index g. The matrix is strictly upper triangular: a generation contributes
// exactly zero before its install year, and that invariant is checked at
// construction rather than left as a side effect of age clipping.
type CohortMatrix struct {
	years []int
	cells [][]float64
}

// NewCohortMatrix builds a matrix over the given calendar years and verifies
// the triangular invariant. cells must be square with one row per
// generation, aligned to years.
func NewCohortMatrix(years []int, cells [][]float64) (*CohortMatrix, error) {
	n := len(years)
	if len(cells) != n {
		return nil, &models.InconsistentScenarioError{
			Reason: fmt.Sprintf("cohort matrix has %d generations for %d years", len(cells), n),
		}
	}
	for g, row := range cells {
		if len(row) != n {
			return nil, &models.InconsistentScenarioError{
				Reason: fmt.Sprintf("cohort matrix generation %d has %d year entries, want %d", g, len(row), n),
			}
		}
		for y := 0; y < g; y++ {
			if row[y] != 0 {
				return nil, &models.InconsistentScenarioError{
					Reason: fmt.Sprintf("cohort matrix entry (generation %d, year %d) is %g before install year",
						g, years[y], row[y]),
				}
			}
		}
	}
	return &CohortMatrix{years: years, cells: cells}, nil
}

// Years returns the calendar years the matrix is indexed by.
func (m *CohortMatrix) Years() []int { return m.years }

// Size returns the number of years (and generations).
func (m *CohortMatrix) Size() int { return len(m.years) }

// At returns the flow for the given year and generation indexes.
func (m *CohortMatrix) At(yearIdx, genIdx int) float64 {
	return m.cells[genIdx][yearIdx]
}

// ScaleByYear returns a new matrix with every year column multiplied by the
// corresponding per-year factor. This is the pattern for process rates that
// improve over time and apply at the year of disposal, uniformly across all
// generations disposed that year.
func (m *CohortMatrix) ScaleByYear(factors []float64) *CohortMatrix {
	n := m.Size()
	cells := make([][]float64, n)
	for g := range m.cells {
		row := make([]float64, n)
		for y := g; y < n; y++ {
			row[y] = m.cells[g][y] * factors[y]
		}
		cells[g] = row
	}
	return &CohortMatrix{years: m.years, cells: cells}
}

// ScaleByGeneration returns a new matrix with every generation row
// multiplied by the corresponding per-generation factor. This is the pattern
// for quantities fixed at manufacture time, such as the mass of material per
// module area of each installation cohort.
func (m *CohortMatrix) ScaleByGeneration(factors []float64) *CohortMatrix {
	n := m.Size()
	cells := make([][]float64, n)
	for g := range m.cells {
		row := make([]float64, n)
		for y := g; y < n; y++ {
			row[y] = m.cells[g][y] * factors[g]
		}
		cells[g] = row
	}
	return &CohortMatrix{years: m.years, cells: cells}
}

// YearTotals sums the matrix over generations, producing one total per year.
func (m *CohortMatrix) YearTotals() []float64 {
	n := m.Size()
	totals := make([]float64, n)
	for g := range m.cells {
		for y := g; y < n; y++ {
			totals[y] += m.cells[g][y]
		}
	}
	return totals
}
