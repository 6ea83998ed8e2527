package simulation

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/stat/distuv"

	"pvcycle-platform/internal/models"
)

// imagResidualTol bounds the imaginary residual allowed when discarding the
// complex part of the closed-form shape parameter. For valid keypoints the
// result is mathematically real; anything beyond this is a degenerate fit.
const imagResidualTol = 1e-9

// Weibull holds the shape (alpha) and scale (beta) parameters of a
// two-parameter Weibull reliability law.
type Weibull struct {
	Alpha float64
	Beta  float64
}

// FitWeibull solves for the Weibull parameters whose CDF passes exactly
// through the two keypoints (t1, cdf1) and (t2, cdf2), typically
// (t50, 0.5) and (t90, 0.9).
//
// The closed form takes the logarithm of log(1-cdf), which is negative for
// cdf < 1, so the intermediate values live on the principal complex branch.
// The imaginary parts cancel for valid keypoints; the residual is checked
// against a tolerance instead of being silently discarded.
func FitWeibull(t1, cdf1, t2, cdf2 float64) (Weibull, error) {
	if t1 <= 0 || t2 <= 0 {
		return Weibull{}, &models.InvalidKeypointsError{
			T1: t1, CDF1: cdf1, T2: t2, CDF2: cdf2,
			Reason: "keypoint times must be positive",
		}
	}
	if t1 == t2 {
		return Weibull{}, &models.InvalidKeypointsError{
			T1: t1, CDF1: cdf1, T2: t2, CDF2: cdf2,
			Reason: "keypoint times must differ",
		}
	}
	if cdf1 <= 0 || cdf1 >= 1 || cdf2 <= 0 || cdf2 >= 1 {
		return Weibull{}, &models.InvalidKeypointsError{
			T1: t1, CDF1: cdf1, T2: t2, CDF2: cdf2,
			Reason: "cumulative probabilities must lie in (0,1)",
		}
	}

	// Principal-branch logs of log(1-cdf); negative arguments land at
	// ln|x| + i*pi.
	l1 := cmplx.Log(complex(math.Log(1-cdf1), 0))
	l2 := cmplx.Log(complex(math.Log(1-cdf2), 0))

	alphaC := (l1 - l2) / complex(math.Log(t1)-math.Log(t2), 0)
	if res := math.Abs(imag(alphaC)); res > imagResidualTol*math.Max(1, cmplx.Abs(alphaC)) {
		return Weibull{}, &models.InvalidKeypointsError{
			T1: t1, CDF1: cdf1, T2: t2, CDF2: cdf2,
			Reason: "non-negligible imaginary residual in shape parameter",
		}
	}

	beta := cmplx.Abs(cmplx.Exp(
		(complex(math.Log(t2), 0)*(complex(0, math.Pi)+l1) +
			complex(math.Log(t1), 0)*(complex(0, -math.Pi)-l2)) / (l1 - l2)))

	alpha := real(alphaC)
	if alpha <= 0 || beta <= 0 || math.IsNaN(alpha) || math.IsNaN(beta) {
		return Weibull{}, &models.InvalidKeypointsError{
			T1: t1, CDF1: cdf1, T2: t2, CDF2: cdf2,
			Reason: "fit produced non-positive parameters",
		}
	}

	return Weibull{Alpha: alpha, Beta: beta}, nil
}

// CDF returns the cumulative failure probability at the given age.
func (w Weibull) CDF(age float64) float64 {
	if age <= 0 {
		return 0
	}
	return distuv.Weibull{K: w.Alpha, Lambda: w.Beta}.CDF(age)
}

// PDF returns the failure density at the given age.
func (w Weibull) PDF(age float64) float64 {
	if age <= 0 {
		return 0
	}
	return distuv.Weibull{K: w.Alpha, Lambda: w.Beta}.Prob(age)
}
