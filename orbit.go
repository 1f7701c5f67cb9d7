package impactor

import (
	"fmt"
	"math"
)

const (
	// keplerε is the eccentric anomaly convergence tolerance in radians.
	keplerε = 1e-8
	// keplerMaxIter is the Newton-Raphson iteration budget.
	keplerMaxIter = 100
)

// OrbitalElements defines a heliocentric orbit via its Keplerian elements.
// Distances are in AU and angles in degrees, matching how orbit-determination
// sources publish them. Values are immutable once constructed.
type OrbitalElements struct {
	a, e, i, Ω, ω, m float64
}

// NewElements validates and returns heliocentric orbital elements.
// a is in AU, all angles in degrees.
func NewElements(a, e, i, Ω, ω, M float64) (OrbitalElements, error) {
	if a <= 0 {
		return OrbitalElements{}, ValidationError{"semi-major axis", a, "must be strictly positive (AU)"}
	}
	if e < 0 || e >= 1 {
		return OrbitalElements{}, ValidationError{"eccentricity", e, "must be in [0, 1)"}
	}
	return OrbitalElements{a, e, i, Ω, ω, M}, nil
}

// Elements returns the six Keplerian elements (AU and degrees).
func (el OrbitalElements) Elements() (a, e, i, Ω, ω, M float64) {
	return el.a, el.e, el.i, el.Ω, el.ω, el.m
}

// Perihelion returns the perihelion distance in km.
func (el OrbitalElements) Perihelion() float64 {
	return el.a * AU * (1 - el.e)
}

// Aphelion returns the aphelion distance in km.
func (el OrbitalElements) Aphelion() float64 {
	return el.a * AU * (1 + el.e)
}

// PeriodYears returns the orbital period in years via Kepler's third law.
func (el OrbitalElements) PeriodYears() float64 {
	return math.Pow(el.a, 1.5)
}

// withMeanAnomaly returns a copy of these elements at a different mean anomaly
// (degrees). Used by the intercept sweep and the path sampler.
func (el OrbitalElements) withMeanAnomaly(M float64) OrbitalElements {
	el.m = M
	return el
}

// String implements the Stringer interface.
func (el OrbitalElements) String() string {
	return fmt.Sprintf("a=%.4f AU e=%.4f i=%.3f Ω=%.3f ω=%.3f M=%.3f", el.a, el.e, el.i, el.Ω, el.ω, el.m)
}

// StateVector is a heliocentric position (km) and velocity (km/s).
// Derived and immutable: recomputed on every query, never cached across
// requests.
type StateVector struct {
	R []float64 `json:"position_km"`
	V []float64 `json:"velocity_km_s"`
}

// RNorm returns the heliocentric distance in km.
func (s StateVector) RNorm() float64 {
	return norm(s.R)
}

// VNorm returns the heliocentric speed in km/s.
func (s StateVector) VNorm() float64 {
	return norm(s.V)
}

// solveKepler solves Kepler's equation M = E - e sinE for the eccentric
// anomaly E by Newton-Raphson from the initial guess E₀ = M. A non-nil error
// means the iteration budget ran out; E is then the last estimate, which
// remains the best available (cf. Vallado, algorithm 2).
func solveKepler(M, e float64) (float64, error) {
	E := M
	for iter := 0; iter < keplerMaxIter; iter++ {
		f := E - e*math.Sin(E) - M
		fPrime := 1 - e*math.Cos(E)
		ENew := E - f/fPrime
		if math.Abs(ENew-E) < keplerε {
			return ENew, nil
		}
		E = ENew
	}
	return E, ConvergenceError{keplerMaxIter, E, math.Abs(E - e*math.Sin(E) - M)}
}

// ToState converts the orbital elements to a heliocentric state vector.
// A non-nil error is always a ConvergenceError warning: the state is still
// the best estimate and remains usable.
func (el OrbitalElements) ToState() (StateVector, error) {
	aKm := el.a * AU
	e := el.e
	i := Deg2rad(el.i)
	Ω := Deg2rad(el.Ω)
	ω := Deg2rad(el.ω)
	M := Deg2rad(el.m)

	E, warn := solveKepler(M, e)

	// True anomaly via the half-angle atan2 identity.
	sinE2, cosE2 := math.Sincos(E / 2)
	ν := 2 * math.Atan2(math.Sqrt(1+e)*sinE2, math.Sqrt(1-e)*cosE2)

	r := aKm * (1 - e*math.Cos(E))

	// Position and velocity in the orbital plane. The velocity uses the
	// angular momentum h = sqrt(μ a (1-e²)) scaled by 1/r; this matches the
	// circular-orbit limit exactly and is the approximation the calibration
	// scenarios are built on.
	h := math.Sqrt(Sun.μ * aKm * (1 - e*e))
	sinν, cosν := math.Sincos(ν)
	rPQW := []float64{r * cosν, r * sinν, 0}
	vPQW := []float64{-(h / r) * sinν, (h / r) * (e + cosν), 0}

	R := PQW2ECI(i, ω, Ω, rPQW)
	V := PQW2ECI(i, ω, Ω, vPQW)
	return StateVector{R, V}, warn
}
