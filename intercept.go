package impactor

import "math"

const (
	// interceptToleranceKm is the maximum residual distance between the orbit
	// and Earth's orbital radius for a crossing to count.
	interceptToleranceKm = 5000.0
	// interceptSweepStepDeg is the mean anomaly sweep resolution (181 samples).
	interceptSweepStepDeg = 2
	// minRelativeSpeed guards against a degenerate co-moving encounter.
	minRelativeSpeed = 1e-6 // km/s
)

// InterceptSolution describes the crossing of an asteroid orbit with Earth's
// orbital radius and the entry kinematics derived from it.
type InterceptSolution struct {
	EntryVelocity    float64   `json:"entry_velocity_km_s"`
	EntryAngle       float64   `json:"entry_angle_deg"` // from horizontal
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Azimuth          float64   `json:"azimuth_deg"`
	MeanAnomaly      float64   `json:"mean_anomaly_deg"` // at the crossing
	Residual         float64   `json:"distance_to_orbit_km"`
	RelativeVelocity []float64 `json:"relative_velocity_vector"` // km/s
}

// FindEarthIntercept sweeps the orbit's mean anomaly over [0°, 360°] in 2°
// steps and retains the sample whose heliocentric distance is closest to
// 1 AU (ties broken by the first sweep index). It returns ErrNoIntercept when
// the best residual exceeds the tolerance.
//
// Earth's position is approximated as the same radial direction scaled to
// 1 AU, and its velocity as the perpendicular to that radius at 29.78 km/s.
// This is a documented simplification, not a true ephemeris, and must be
// preserved: the calibration scenarios depend on it.
func FindEarthIntercept(el OrbitalElements) (*InterceptSolution, error) {
	var bestState StateVector
	bestDiff := math.Inf(1)
	bestM := 0.0

	for step := 0; step <= 360; step += interceptSweepStepDeg {
		// Kepler convergence warnings are non-fatal here: the best-estimate
		// state is still a valid sweep sample.
		state, _ := el.withMeanAnomaly(float64(step)).ToState()
		diff := math.Abs(state.RNorm() - EarthOrbitRadius)
		if diff < bestDiff {
			bestDiff = diff
			bestState = state
			bestM = float64(step)
		}
	}

	if bestDiff > interceptToleranceKm {
		return nil, ErrNoIntercept
	}

	distance := bestState.RNorm()
	if distance == 0 {
		return nil, ErrNoIntercept
	}

	// Earth estimate: co-linear with the asteroid radius vector.
	direction := unit(bestState.R)
	relPos := make([]float64, 3)
	for i := 0; i < 3; i++ {
		relPos[i] = bestState.R[i] - direction[i]*EarthOrbitRadius
	}
	relPosNorm := norm(relPos)
	if relPosNorm < 1.0 {
		relPosNorm = 1.0
	}

	// Earth velocity estimate: perpendicular to the radius vector, in the
	// ecliptic plane, at the mean orbital speed.
	earthVel := cross([]float64{0, 0, 1}, bestState.R)
	if norm(earthVel) == 0 {
		earthVel = []float64{0, 30.0, 0}
	} else {
		earthVel = unit(earthVel)
		for i := 0; i < 3; i++ {
			earthVel[i] *= EarthOrbitalSpeed
		}
	}

	relVel := make([]float64, 3)
	for i := 0; i < 3; i++ {
		relVel[i] = bestState.V[i] - earthVel[i]
	}
	relSpeed := norm(relVel)
	if relSpeed < minRelativeSpeed {
		return nil, ErrNoIntercept
	}

	sinEntry := math.Abs(relVel[2]) / relSpeed
	if sinEntry > 1 {
		sinEntry = 1
	}

	return &InterceptSolution{
		EntryVelocity:    relSpeed,
		EntryAngle:       Rad2deg(math.Asin(sinEntry)),
		Latitude:         math.Asin(relPos[2]/relPosNorm) / deg2rad,
		Longitude:        math.Atan2(relPos[1], relPos[0]) / deg2rad,
		Azimuth:          azimuthOf(relVel),
		MeanAnomaly:      bestM,
		Residual:         bestDiff,
		RelativeVelocity: relVel,
	}, nil
}

// azimuthOf returns the arrival azimuth in [0°, 360°) of a velocity vector.
func azimuthOf(v []float64) float64 {
	return pmod(math.Atan2(v[0], v[1])/deg2rad, 360)
}

// ImpactLocation resolves a surface latitude, longitude and azimuth from a
// velocity vector in the Earth-centered frame. When an explicit target is
// supplied it wins over the geometric resolution.
type ImpactLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Angle     float64 `json:"impact_angle_deg"`
	Azimuth   float64 `json:"azimuth_deg"`
}

// ResolveImpactLocation derives an impact location from a velocity vector and
// impact angle. target may be nil; when set, its coordinates are used as-is.
func ResolveImpactLocation(velocity []float64, angle float64, target *ImpactLocation) ImpactLocation {
	loc := ImpactLocation{Angle: angle, Azimuth: azimuthOf(velocity)}
	if target != nil {
		loc.Latitude = target.Latitude
		loc.Longitude = target.Longitude
		return loc
	}
	v := unit(velocity)
	loc.Latitude = math.Asin(v[2]) / deg2rad
	loc.Longitude = math.Atan2(v[1], v[0]) / deg2rad
	return loc
}
