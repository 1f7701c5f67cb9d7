package impactor

import (
	"math"
	"testing"
)

func TestInterceptCircularCoorbital(t *testing.T) {
	// An orbit identical to Earth's crosses at every sample; the tie-break
	// keeps the first sweep index.
	el, err := NewElements(1, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	sol, err := FindEarthIntercept(el)
	if err != nil {
		t.Fatalf("no intercept on a co-orbital: %s", err)
	}
	if sol.MeanAnomaly != 0 {
		t.Fatalf("tie-break picked M=%f, want 0", sol.MeanAnomaly)
	}
	if sol.Residual > 1e-6 {
		t.Fatalf("residual %f km on an exact crossing", sol.Residual)
	}
	// Co-moving geometry: the relative speed is the tiny vis-viva vs mean
	// speed mismatch, in the ecliptic plane.
	if sol.EntryVelocity > 0.1 {
		t.Fatalf("entry velocity %f km/s on a co-orbital", sol.EntryVelocity)
	}
	if sol.EntryAngle != 0 {
		t.Fatalf("entry angle %f on an in-plane encounter", sol.EntryAngle)
	}
}

func TestInterceptEccentricCrosser(t *testing.T) {
	// A slightly eccentric 1 AU orbit passes within tolerance of Earth's
	// radius near quadrature.
	el, _ := NewElements(1, 0.0001, 3, 40, 60, 0)
	sol, err := FindEarthIntercept(el)
	if err != nil {
		t.Fatalf("crosser missed: %s", err)
	}
	if sol.Residual > interceptToleranceKm {
		t.Fatalf("retained residual %f exceeds the tolerance", sol.Residual)
	}
	if sol.Latitude < -90 || sol.Latitude > 90 {
		t.Fatalf("latitude %f out of range", sol.Latitude)
	}
	if sol.Azimuth < 0 || sol.Azimuth >= 360 {
		t.Fatalf("azimuth %f out of range", sol.Azimuth)
	}
	if len(sol.RelativeVelocity) != 3 {
		t.Fatalf("malformed relative velocity %+v", sol.RelativeVelocity)
	}
}

func TestInterceptMissDistant(t *testing.T) {
	// A main-belt orbit never comes near 1 AU.
	el, _ := NewElements(3, 0, 10, 80, 70, 0)
	if _, err := FindEarthIntercept(el); err != ErrNoIntercept {
		t.Fatalf("expected ErrNoIntercept, got %v", err)
	}
	// Same story well inside Earth's orbit.
	el, _ = NewElements(0.5, 0, 0, 0, 0, 0)
	if _, err := FindEarthIntercept(el); err != ErrNoIntercept {
		t.Fatalf("expected ErrNoIntercept, got %v", err)
	}
}

func TestResolveImpactLocation(t *testing.T) {
	// A straight-down arrival maps to the south pole of the velocity frame.
	loc := ResolveImpactLocation([]float64{0, 0, -10}, 45, nil)
	if ok, err := floatEqual(loc.Latitude, -90); !ok {
		t.Fatalf("latitude: %s", err)
	}
	if loc.Angle != 45 {
		t.Fatalf("angle not carried: %f", loc.Angle)
	}
	// In-plane diagonal arrival.
	loc = ResolveImpactLocation([]float64{1, 1, 0}, 30, nil)
	if ok, err := floatEqual(loc.Longitude, 45); !ok {
		t.Fatalf("longitude: %s", err)
	}
	if math.Abs(loc.Latitude) > 1e-9 {
		t.Fatalf("latitude leaked: %f", loc.Latitude)
	}
	// An explicit target overrides the geometry.
	target := &ImpactLocation{Latitude: 48.85, Longitude: 2.35}
	loc = ResolveImpactLocation([]float64{1, 1, 0}, 30, target)
	if loc.Latitude != 48.85 || loc.Longitude != 2.35 {
		t.Fatalf("target ignored: %+v", loc)
	}
	if loc.Azimuth != azimuthOf([]float64{1, 1, 0}) {
		t.Fatalf("azimuth should come from the velocity even with a target")
	}
}
