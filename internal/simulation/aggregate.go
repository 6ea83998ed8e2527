package simulation

import (
	"context"
	"errors"
	"sync"

	"gonum.org/v1/gonum/floats"

	"pvcycle-platform/internal/models"
)

// ScenarioResult is the scenario-level outcome of the reliability stage:
// generation-summed yearly series, the disposal cohort matrix feeding the
// end-of-life cascade, and any non-fatal diagnostics.
type ScenarioResult struct {
	Years       []int
	Yearly      []models.ScenarioYearly
	Disposal    *CohortMatrix
	Diagnostics []Diagnostic
}

// AggregateScenario projects every generation of the scenario and reduces
// the per-generation trajectories into scenario-level yearly totals.
//
// Generations are independent and are computed in parallel, capped at
// params.MaxWorkers when positive; the reduction runs in ascending generation
// order so neither the aggregate nor the diagnostic stream depends on
// completion order. A generation whose reliability keypoints fail to fit is
// skipped with a diagnostic; every other error aborts the scenario so a
// partial table is never returned.
func AggregateScenario(ctx context.Context, scn *models.ScenarioSeries, params Params, sink DiagnosticSink) (*ScenarioResult, error) {
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	n := len(scn.Rows)

	diags := &DiagnosticList{}
	fanout := teeSink(diags, sink)

	trajectories := make([]*GenerationTrajectory, n)
	genDiags := make([]*DiagnosticList, n)
	errs := make([]error, n)

	var sem chan struct{}
	if params.MaxWorkers > 0 {
		sem = make(chan struct{}, params.MaxWorkers)
	}

	var wg sync.WaitGroup
	for g := 0; g < n; g++ {
		wg.Add(1)
		genDiags[g] = &DiagnosticList{}
		go func(g int) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if err := ctx.Err(); err != nil {
				errs[g] = err
				return
			}
			trajectories[g], errs[g] = ProjectGeneration(scn, g, params, genDiags[g])
		}(g)
	}
	wg.Wait()

	activeArea := make([]float64, n)
	failure := make([]float64, n)
	degradation := make([]float64, n)
	power := make([]float64, n)
	disposalCells := make([][]float64, n)

	for g := 0; g < n; g++ {
		// Workers collected their diagnostics privately; replaying them here
		// keeps the stream in generation order.
		for _, d := range genDiags[g].Items() {
			fanout.Record(d)
		}
		if err := errs[g]; err != nil {
			var keypoints *models.InvalidKeypointsError
			if errors.As(err, &keypoints) {
				fanout.Record(Diagnostic{
					Kind:       DiagnosticGenerationSkipped,
					Generation: g,
					Year:       scn.Rows[g].Year,
					Message:    err.Error(),
				})
				disposalCells[g] = make([]float64, n)
				continue
			}
			return nil, err
		}

		traj := trajectories[g]
		floats.Add(activeArea, traj.ActiveArea)
		floats.Add(failure, traj.DisposedByFailure)
		floats.Add(degradation, traj.DisposedByDegradation)
		floats.Add(power, traj.PowerW)

		disposed := make([]float64, n)
		copy(disposed, traj.DisposedByFailure)
		floats.Add(disposed, traj.DisposedByDegradation)
		disposalCells[g] = disposed
	}

	disposal, err := NewCohortMatrix(scn.Years(), disposalCells)
	if err != nil {
		return nil, err
	}

	yearly := make([]models.ScenarioYearly, n)
	for y := 0; y < n; y++ {
		yearly[y] = models.ScenarioYearly{
			Year:                                scn.Rows[y].Year,
			CumulativeActiveArea:                activeArea[y],
			CumulativeAreaDisposedByFailure:     failure[y],
			CumulativeAreaDisposedByDegradation: degradation[y],
			CumulativeAreaDisposed:              failure[y] + degradation[y],
			CumulativePowerW:                    power[y],
		}
	}

	return &ScenarioResult{
		Years:       scn.Years(),
		Yearly:      yearly,
		Disposal:    disposal,
		Diagnostics: diags.Items(),
	}, nil
}

// teeSink fans diagnostics out to the internal collector and an optional
// caller-provided sink.
type tee struct {
	primary   DiagnosticSink
	secondary DiagnosticSink
}

func teeSink(primary, secondary DiagnosticSink) DiagnosticSink {
	return &tee{primary: primary, secondary: secondary}
}

func (t *tee) Record(d Diagnostic) {
	record(t.primary, d)
	record(t.secondary, d)
}
