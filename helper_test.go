package impactor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	eps = 1e-3
)

func floatEqual(a, b float64) (bool, error) {
	if !scalar.EqualWithinRel(a, b, eps) {
		return false, fmt.Errorf("difference of %3.10f", math.Abs(a-b))
	}
	return true, nil
}

func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !scalar.EqualWithinRel(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// anglesEqual returns whether two angles in degrees are equal modulo a turn.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Abs(a - b)
	if diff < eps || math.Abs(diff-360) < eps {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10f degrees", diff)
}
