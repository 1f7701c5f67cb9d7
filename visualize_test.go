package impactor

import "testing"

func TestOrbitPathFullOrbit(t *testing.T) {
	el, _ := NewElements(2, 0.3, 15, 40, 60, 0)
	path := GenerateOrbitPath(el, PathOptions{FullOrbit: true})
	if len(path.Points) != 360 {
		t.Fatalf("full orbit sampled %d points", len(path.Points))
	}
	if !path.FullOrbit {
		t.Fatal("full orbit flag dropped")
	}
	if path.CollisionDetected || path.CollisionIndex != -1 {
		t.Fatal("collision flagged without the check enabled")
	}
	if ok, err := floatEqual(path.PeriodYears, 2.8284); !ok {
		t.Fatalf("period: %s", err)
	}
	// AU-scaled samples stay within the orbit's radial bounds.
	for _, pt := range path.Points {
		if pt.DistanceFromSun < 2*0.7*(1-1e-9) || pt.DistanceFromSun > 2*1.3*(1+1e-9) {
			t.Fatalf("point %d at %f AU outside the apsides", pt.Index, pt.DistanceFromSun)
		}
	}
	// Mean anomalies are uniform.
	if path.Points[90].MeanAnomaly != 90 {
		t.Fatalf("sample 90 at M=%f", path.Points[90].MeanAnomaly)
	}
}

func TestOrbitPathDefaultResolution(t *testing.T) {
	el, _ := NewElements(1.5, 0.1, 5, 0, 0, 0)
	path := GenerateOrbitPath(el, PathOptions{})
	if len(path.Points) != 100 {
		t.Fatalf("default resolution sampled %d points", len(path.Points))
	}
	path = GenerateOrbitPath(el, PathOptions{NumPoints: 24})
	if len(path.Points) != 24 {
		t.Fatalf("explicit resolution sampled %d points", len(path.Points))
	}
}

func TestOrbitPathCollision(t *testing.T) {
	// Earth sits at (1, 0, 0) AU; a circular co-orbital starting at M=0
	// collides immediately.
	el, _ := NewElements(1, 0, 0, 0, 0, 0)
	path := GenerateOrbitPath(el, PathOptions{NumPoints: 100, CheckCollision: true})
	if !path.CollisionDetected {
		t.Fatal("collision missed")
	}
	if path.CollisionIndex != 0 {
		t.Fatalf("collision at index %d, want 0", path.CollisionIndex)
	}
	// The path is truncated at the collision marker.
	if len(path.Points) != 1 {
		t.Fatalf("path carries %d points past the collision", len(path.Points))
	}
	if !path.Points[0].IsCollisionZone {
		t.Fatal("collision point not flagged")
	}
}

func TestOrbitPathNoCollision(t *testing.T) {
	el, _ := NewElements(2, 0.1, 10, 30, 45, 0)
	path := GenerateOrbitPath(el, PathOptions{NumPoints: 180, CheckCollision: true})
	if path.CollisionDetected {
		t.Fatalf("phantom collision at index %d", path.CollisionIndex)
	}
	if len(path.Points) != 180 {
		t.Fatalf("truncated to %d points without a collision", len(path.Points))
	}
}
