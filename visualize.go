package impactor

import "math"

// collisionAltitudeKm pads Earth's radius for the along-path collision check.
const collisionAltitudeKm = 100.0

// OrbitPathPoint is one heliocentric sample of a plotted orbit, in AU.
type OrbitPathPoint struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Z               float64 `json:"z"`
	Index           int     `json:"index"`
	MeanAnomaly     float64 `json:"mean_anomaly_deg"`
	DistanceFromSun float64 `json:"distance_from_sun_au"`
	IsCollisionZone bool    `json:"is_collision_zone"`
}

// OrbitPath is a sampled orbit for visualization, truncated at the first
// collision when collision checking is on.
type OrbitPath struct {
	Points            []OrbitPathPoint `json:"points"`
	CollisionDetected bool             `json:"collision_detected"`
	CollisionIndex    int              `json:"collision_index"` // -1 when none
	PeriodYears       float64          `json:"period_years"`
	FullOrbit         bool             `json:"full_orbit"`
}

// PathOptions tunes GenerateOrbitPath.
type PathOptions struct {
	// NumPoints is the sample count; 0 selects 100, and FullOrbit raises it
	// to at least 360 (1° resolution).
	NumPoints      int
	CheckCollision bool
	FullOrbit      bool
}

// GenerateOrbitPath samples the orbit uniformly in mean anomaly over one full
// revolution and converts each sample to heliocentric AU coordinates. With
// CheckCollision set, each point is tested against Earth held fixed at
// (1, 0, 0) AU; the path is truncated at the first hit so a renderer can end
// the trace at the collision marker.
func GenerateOrbitPath(el OrbitalElements, opts PathOptions) *OrbitPath {
	total := opts.NumPoints
	if total <= 0 {
		total = 100
	}
	if opts.FullOrbit && total < 360 {
		total = 360
	}

	threshold := (Earth.Radius + collisionAltitudeKm) / AU

	path := &OrbitPath{
		Points:         make([]OrbitPathPoint, 0, total),
		CollisionIndex: -1,
		PeriodYears:    el.PeriodYears(),
		FullOrbit:      opts.FullOrbit,
	}

	for n := 0; n < total; n++ {
		M := 360 * float64(n) / float64(total)
		// Convergence warnings keep the best-estimate state, good enough for
		// a plot.
		state, _ := el.withMeanAnomaly(M).ToState()
		x := state.R[0] / AU
		y := state.R[1] / AU
		z := state.R[2] / AU
		point := OrbitPathPoint{
			X:               x,
			Y:               y,
			Z:               z,
			Index:           n,
			MeanAnomaly:     M,
			DistanceFromSun: state.RNorm() / AU,
		}
		if opts.CheckCollision {
			// Cheap radial gate first, full 3-D distance only near 1 AU.
			if math.Abs(point.DistanceFromSun-1) < 0.05 {
				dx, dy, dz := x-1, y, z
				if math.Sqrt(dx*dx+dy*dy+dz*dz) < threshold {
					point.IsCollisionZone = true
				}
			}
		}
		path.Points = append(path.Points, point)
		if point.IsCollisionZone {
			path.CollisionDetected = true
			path.CollisionIndex = n
			break
		}
	}
	return path
}
