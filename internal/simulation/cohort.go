package simulation

import (
	"fmt"
	"math"

	"pvcycle-platform/internal/models"
)

// IrradianceSTC is the reference irradiance used to convert between
// installed capacity and module area, in W/m².
const IrradianceSTC = 1000.0

// Params bound one projection: the reference irradiance for capacity/area
// conversion and the number of generations projected concurrently. The zero
// value projects at standard test conditions with one worker per generation.
type Params struct {
	IrradianceWm2 float64
	MaxWorkers    int
}

func (p Params) irradiance() float64 {
	if p.IrradianceWm2 > 0 {
		return p.IrradianceWm2
	}
	return IrradianceSTC
}

// GenerationTrajectory holds one installation cohort's projected series,
// aligned by position to the scenario years. Entries before the install year
// are zero.
type GenerationTrajectory struct {
	Generation  int // index of the install year within the scenario years
	InstallYear int

	ActiveArea            []float64
	DisposedByFailure     []float64
	DisposedByDegradation []float64
	PowerW                []float64
}

// installedArea derives the initial module area of a year's installation
// from its capacity, efficiency, and the reference irradiance.
func installedArea(row models.ModuleBaselineRow, irradiance float64) float64 {
	if row.ModuleEfficiencyPct <= 0 {
		return 0
	}
	return row.NewInstalledCapacityW / (row.ModuleEfficiencyPct * 0.01) / irradiance
}

// ProjectGeneration projects a single generation's active area, disposal,
// and power output across the scenario years. It is a pure function of the
// scenario series: reliability parameters (t50/t90, lifetime, efficiency,
// degradation) are frozen at the install-year row, while repair and
// repowering rates are read from the calendar year they act in.
//
// Returns an InvalidKeypointsError when the generation's own reliability
// keypoints do not admit a Weibull fit; the caller decides whether to skip
// the generation or abort.
func ProjectGeneration(scn *models.ScenarioSeries, gen int, params Params, sink DiagnosticSink) (*GenerationTrajectory, error) {
	n := len(scn.Rows)
	if gen < 0 || gen >= n {
		return nil, &models.InconsistentScenarioError{
			Reason: fmt.Sprintf("generation index %d outside scenario of %d years", gen, n),
		}
	}

	install := scn.Rows[gen]
	wb, err := FitWeibull(install.ReliabilityT50Years, 0.50, install.ReliabilityT90Years, 0.90)
	if err != nil {
		return nil, err
	}

	// Ages before installation clip to zero, where the CDF is identically
	// zero, so pre-install years drop out of the recursion entirely.
	cdf := make([]float64, n)
	for j := range cdf {
		age := j - gen
		if age < 0 {
			age = 0
		}
		cdf[j] = wb.CDF(float64(age))
	}

	traj := &GenerationTrajectory{
		Generation:            gen,
		InstallYear:           install.Year,
		ActiveArea:            make([]float64, n),
		DisposedByFailure:     make([]float64, n),
		DisposedByDegradation: make([]float64, n),
		PowerW:                make([]float64, n),
	}

	irradiance := params.irradiance()
	initialArea := installedArea(install, irradiance)
	activeArea := initialArea
	efficiency := install.ModuleEfficiencyPct * 0.01
	degradationBase := 1 - install.DegradationPctPerYear/100
	// Fractional lifetimes floor to the last whole year the cohort completes,
	// matching the integer-age stepping of the recursion.
	eolIndex := math.Floor(install.LifetimeYears) + float64(gen)

	// Degradation accrues only across ages where the CDF has become
	// numerically nonzero, not the warm-up before failures start.
	live := -1
	for j := 0; j < n; j++ {
		if cdf[j] == 0 {
			continue
		}
		live++

		prev := activeArea
		activeArea = activeArea * (1 - cdf[j]*(1-scn.Rows[j].RepairFraction))
		traj.DisposedByFailure[j] = prev - activeArea

		// Nominal end of life: repowering keeps a fraction of the cohort,
		// the remainder is disposed as degraded.
		if float64(j) == eolIndex {
			beforeRepower := activeArea
			activeArea = activeArea * scn.Rows[j].RepoweringFraction
			traj.DisposedByDegradation[j] = beforeRepower - activeArea
		}

		traj.ActiveArea[j] = activeArea
		traj.PowerW[j] = activeArea * efficiency * irradiance * math.Pow(degradationBase, float64(live))
	}

	// The cohort appears at its install year: credit the initial area and
	// its nameplate power on top of the recursive series. When the CDF never
	// becomes nonzero before the horizon ends, the credit falls on the last
	// index; for any generation other than the final one that is a
	// degenerate reliability parameterization worth surfacing.
	installIdx := gen
	if live < 0 {
		installIdx = n - 1
		if gen < n-1 {
			record(sink, Diagnostic{
				Kind:       DiagnosticDegenerateCohort,
				Generation: gen,
				Year:       install.Year,
				Message: fmt.Sprintf("failure CDF never nonzero within %d-year horizon (t50=%g, t90=%g)",
					n-gen, install.ReliabilityT50Years, install.ReliabilityT90Years),
			})
		}
	}
	traj.ActiveArea[installIdx] += initialArea
	traj.PowerW[installIdx] += initialArea * efficiency * irradiance

	return traj, nil
}
