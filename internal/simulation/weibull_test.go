package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcycle-platform/internal/models"
)

func TestFitWeibullRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		t1   float64
		cdf1 float64
		t2   float64
		cdf2 float64
	}{
		{name: "typical t50/t90", t1: 10, cdf1: 0.50, t2: 20, cdf2: 0.90},
		{name: "long-lived modules", t1: 30, cdf1: 0.50, t2: 40, cdf2: 0.90},
		{name: "reversed keypoint order", t1: 20, cdf1: 0.90, t2: 10, cdf2: 0.50},
		{name: "non-standard probabilities", t1: 8, cdf1: 0.25, t2: 25, cdf2: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, err := FitWeibull(tt.t1, tt.cdf1, tt.t2, tt.cdf2)
			require.NoError(t, err)
			assert.Greater(t, wb.Alpha, 0.0)
			assert.Greater(t, wb.Beta, 0.0)

			// The fitted CDF must pass exactly through both keypoints.
			assert.InDelta(t, tt.cdf1, wb.CDF(tt.t1), 1e-6)
			assert.InDelta(t, tt.cdf2, wb.CDF(tt.t2), 1e-6)
		})
	}
}

func TestFitWeibullInvalidKeypoints(t *testing.T) {
	tests := []struct {
		name string
		t1   float64
		cdf1 float64
		t2   float64
		cdf2 float64
	}{
		{name: "equal times", t1: 10, cdf1: 0.5, t2: 10, cdf2: 0.9},
		{name: "zero time", t1: 0, cdf1: 0.5, t2: 20, cdf2: 0.9},
		{name: "negative time", t1: -5, cdf1: 0.5, t2: 20, cdf2: 0.9},
		{name: "probability zero", t1: 10, cdf1: 0, t2: 20, cdf2: 0.9},
		{name: "probability one", t1: 10, cdf1: 0.5, t2: 20, cdf2: 1},
		{name: "probability above one", t1: 10, cdf1: 0.5, t2: 20, cdf2: 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitWeibull(tt.t1, tt.cdf1, tt.t2, tt.cdf2)
			require.Error(t, err)
			var keypoints *models.InvalidKeypointsError
			assert.ErrorAs(t, err, &keypoints)
		})
	}
}

func TestWeibullEvaluation(t *testing.T) {
	wb, err := FitWeibull(10, 0.50, 20, 0.90)
	require.NoError(t, err)

	assert.Zero(t, wb.CDF(0))
	assert.Zero(t, wb.CDF(-3))
	assert.Zero(t, wb.PDF(0))

	// CDF is a distribution function: monotone, bounded by [0,1].
	prev := 0.0
	for age := 1.0; age <= 60; age++ {
		c := wb.CDF(age)
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, 1.0)
		assert.GreaterOrEqual(t, wb.PDF(age), 0.0)
		prev = c
	}
}
