package impactor

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestElementsValidation(t *testing.T) {
	if _, err := NewElements(-1.2, 0.1, 0, 0, 0, 0); err == nil {
		t.Fatal("negative semi-major axis accepted")
	} else if _, ok := err.(ValidationError); !ok {
		t.Fatalf("wrong error type: %T", err)
	}
	if _, err := NewElements(1.2, 1.0, 0, 0, 0, 0); err == nil {
		t.Fatal("parabolic eccentricity accepted")
	}
	if _, err := NewElements(1.2, -0.1, 0, 0, 0, 0); err == nil {
		t.Fatal("negative eccentricity accepted")
	}
	if _, err := NewElements(2.77, 0.0785, 10.6, 80.3, 73.6, 60.0); err != nil {
		t.Fatalf("Ceres-like elements rejected: %s", err)
	}
}

func TestApsides(t *testing.T) {
	for _, e := range []float64{0, 0.1, 0.5, 0.9, 0.99} {
		el, err := NewElements(1.8, e, 5, 10, 20, 0)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinRel(el.Perihelion(), 1.8*AU*(1-e), 1e-6) {
			t.Fatalf("e=%f: perihelion %f", e, el.Perihelion())
		}
		if !scalar.EqualWithinRel(el.Aphelion(), 1.8*AU*(1+e), 1e-6) {
			t.Fatalf("e=%f: aphelion %f", e, el.Aphelion())
		}
	}
}

func TestPeriodYears(t *testing.T) {
	el, _ := NewElements(4, 0.1, 0, 0, 0, 0)
	if ok, err := floatEqual(el.PeriodYears(), 8); !ok {
		t.Fatalf("Kepler third law broken: %s", err)
	}
}

func TestKeplerSolver(t *testing.T) {
	for _, e := range []float64{0, 0.05, 0.3, 0.7, 0.95} {
		for M := 0.0; M < 2*math.Pi; M += 0.3 {
			E, err := solveKepler(M, e)
			if err != nil {
				t.Fatalf("e=%f M=%f: %s", e, M, err)
			}
			if !scalar.EqualWithinAbs(E-e*math.Sin(E), M, 1e-7) {
				t.Fatalf("e=%f M=%f: residual %e", e, M, math.Abs(E-e*math.Sin(E)-M))
			}
		}
	}
}

func TestToStateCircular(t *testing.T) {
	el, _ := NewElements(1, 0, 0, 0, 0, 90)
	state, err := el.ToState()
	if err != nil {
		t.Fatalf("unexpected warning: %s", err)
	}
	if ok, err := floatEqual(state.RNorm(), AU); !ok {
		t.Fatalf("circular orbit radius: %s", err)
	}
	// Vis-viva for a circular orbit.
	if ok, err := floatEqual(state.VNorm(), math.Sqrt(Sun.GM()/AU)); !ok {
		t.Fatalf("circular orbit speed: %s", err)
	}
	// M=90° on a circular equatorial orbit sits on the +Y axis. The zero
	// components only vanish to rounding, so compare absolutely.
	u := unit(state.R)
	for k, want := range []float64{0, 1, 0} {
		if !scalar.EqualWithinAbs(u[k], want, 1e-12) {
			t.Fatalf("position direction off: %+v", u)
		}
	}
}

func TestToStateApsides(t *testing.T) {
	el, _ := NewElements(2.5, 0.4, 12, 45, 90, 0)
	// Distances over a full revolution stay within [perihelion, aphelion].
	for M := 0.0; M < 360; M += 15 {
		state, err := el.withMeanAnomaly(M).ToState()
		if err != nil {
			t.Fatalf("M=%f: %s", M, err)
		}
		r := state.RNorm()
		if r < el.Perihelion()*(1-1e-9) || r > el.Aphelion()*(1+1e-9) {
			t.Fatalf("M=%f: r=%f outside [%f, %f]", M, r, el.Perihelion(), el.Aphelion())
		}
	}
	// Perihelion at M=0, aphelion at M=180.
	peri, _ := el.ToState()
	if !scalar.EqualWithinRel(peri.RNorm(), el.Perihelion(), 1e-6) {
		t.Fatalf("perihelion distance %f, want %f", peri.RNorm(), el.Perihelion())
	}
	apo, _ := el.withMeanAnomaly(180).ToState()
	if !scalar.EqualWithinRel(apo.RNorm(), el.Aphelion(), 1e-6) {
		t.Fatalf("aphelion distance %f, want %f", apo.RNorm(), el.Aphelion())
	}
}

func TestToStateClosedOrbit(t *testing.T) {
	// A full revolution in mean anomaly comes back to the starting state.
	el, _ := NewElements(1.3, 0.25, 8, 120, 250, 33)
	start, err := el.ToState()
	if err != nil {
		t.Fatal(err)
	}
	wrapped, err := el.withMeanAnomaly(el.m + 360).ToState()
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := floatEqual(start.RNorm(), wrapped.RNorm()); !ok {
		t.Fatalf("round trip distance drifted: %s", err)
	}
	if !vectorsEqual(start.R, wrapped.R) || !vectorsEqual(start.V, wrapped.V) {
		t.Fatal("round trip state drifted")
	}
}

func TestRotationInclination(t *testing.T) {
	// A polar orbit sampled at the ascending node stays in the node direction;
	// a quarter revolution later the position is out of the ecliptic.
	el, _ := NewElements(1, 0, 90, 0, 0, 90)
	state, err := el.ToState()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(state.R[1], 0, 1) {
		t.Fatalf("polar orbit leaked into the Y axis: %+v", state.R)
	}
	if math.Abs(state.R[2]) < 0.9*AU {
		t.Fatalf("polar orbit did not climb out of the ecliptic: %+v", state.R)
	}
}
