package impactor

import (
	"errors"
	"fmt"
)

// ErrNoIntercept is returned when an orbit never comes within tolerance of
// Earth's orbital radius, or when the relative velocity at the crossing is
// degenerate. Callers should fall back to directly supplied entry parameters.
var ErrNoIntercept = errors.New("no Earth intercept within tolerance")

// ConvergenceError reports that the Kepler equation solver exhausted its
// iteration budget. The eccentric anomaly estimate it carries is still the
// best available and the associated state remains usable.
type ConvergenceError struct {
	Iterations int
	Estimate   float64 // last eccentric anomaly estimate, radians
	Residual   float64 // |E - e sinE - M| at the last iteration
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("kepler solver did not converge after %d iterations (residual %.3e)", e.Iterations, e.Residual)
}

// CovarianceError reports an unusable orbital covariance matrix: missing
// element labels, a non-square layout, or a matrix that is not positive
// semi-definite even after one jitter retry. Fatal for a Monte Carlo request.
type CovarianceError struct {
	Reason string
}

func (e CovarianceError) Error() string {
	return "covariance: " + e.Reason
}

// ValidationError reports an out-of-range physical parameter. Rejected before
// any computation begins.
type ValidationError struct {
	Param  string
	Value  float64
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Param, e.Value, e.Reason)
}
