package models

import "fmt"

// MissingColumnError reports a mandatory baseline column that is absent from
// an input table. The engine fails fast with the column name rather than
// producing silent NaNs downstream.
type MissingColumnError struct {
	Column string
	Table  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing mandatory column %q in %s baseline", e.Column, e.Table)
}

// IsTransient returns false as schema errors are permanent
func (e *MissingColumnError) IsTransient() bool {
	return false
}

// InvalidRateError reports a rate or fraction outside its declared range.
// Percentages must lie in [0,100], fractions in [0,1].
type InvalidRateError struct {
	Field string
	Year  int
	Value float64
	Min   float64
	Max   float64
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid rate %s=%g for year %d, expected [%g,%g]",
		e.Field, e.Value, e.Year, e.Min, e.Max)
}

// InconsistentScenarioError reports structural problems in the scenario
// tables: non-contiguous years, a generation outside the year range, or
// module/material series of mismatched shape.
type InconsistentScenarioError struct {
	Reason string
}

func (e *InconsistentScenarioError) Error() string {
	return "inconsistent scenario: " + e.Reason
}

// InvalidKeypointsError reports a degenerate Weibull fit: bad keypoint
// inputs, or a non-negligible imaginary residual in the closed-form solution.
type InvalidKeypointsError struct {
	T1     float64
	CDF1   float64
	T2     float64
	CDF2   float64
	Reason string
}

func (e *InvalidKeypointsError) Error() string {
	return fmt.Sprintf("invalid Weibull keypoints (%g, %g), (%g, %g): %s",
		e.T1, e.CDF1, e.T2, e.CDF2, e.Reason)
}
