package impactor

import (
	"math"

	"github.com/ChristopherRabotin/ode"
)

const (
	// DefaultEntryAltitude is where the atmosphere starts mattering, in km.
	DefaultEntryAltitude = 100.0
	// DefaultStartAltitude is where the approach phase starts, in km.
	DefaultStartAltitude = 10000.0

	seaLevelDensity = 1.225  // kg/m^3
	scaleHeight     = 8500.0 // m
	dragCd          = 1.0
	surfaceGravity  = 9.81 // m/s^2

	approachStep     = 1.0 // s
	approachMaxSteps = 600
	entryStep        = 0.1 // s
	entryMaxSteps    = 1200

	// fragmentationPressure is the dynamic pressure threshold above which a
	// small body breaks up (airburst).
	fragmentationPressure = 1e6 // Pa
	// fragmentationMaxDiameter: bodies at least this large punch through.
	fragmentationMaxDiameter = 100.0 // m
)

// EntryPhase labels the descent state machine.
type EntryPhase uint8

// The guarded phase transitions are APPROACH → ENTRY → {AIRBURST | IMPACT}.
const (
	PhaseApproach EntryPhase = iota
	PhaseEntry
	PhaseAirburst
	PhaseImpact
)

func (p EntryPhase) String() string {
	switch p {
	case PhaseApproach:
		return "APPROACH"
	case PhaseEntry:
		return "ENTRY"
	case PhaseAirburst:
		return "AIRBURST"
	case PhaseImpact:
		return "IMPACT"
	default:
		return "UNKNOWN"
	}
}

// TrajectoryPoint is one sample of a descent integration. The sequence is
// append-only and produced by a single run; it is not restartable.
type TrajectoryPoint struct {
	Time               float64 `json:"time"`                   // s
	Altitude           float64 `json:"altitude_km"`            // km
	Velocity           float64 `json:"velocity_km_s"`          // km/s
	HorizontalDistance float64 `json:"horizontal_distance_km"` // km remaining to the impact point
	DynamicPressure    float64 `json:"dynamic_pressure_pa"`    // Pa
	AtmosphericDensity float64 `json:"atmospheric_density"`    // kg/m^3
}

// EntryProfile is the outcome of a full descent integration.
type EntryProfile struct {
	Points           []TrajectoryPoint `json:"trajectory"`
	ImpactVelocity   float64           `json:"impact_velocity_km_s"` // 0 if it never reached the ground
	ImpactDistance   float64           `json:"impact_distance_km"`   // total downrange distance
	EntryAngle       float64           `json:"entry_angle_deg"`
	Fragmented       bool              `json:"fragmented"`
	AirburstAltitude float64           `json:"airburst_altitude_km"` // 0 on ground impact
	FinalPhase       EntryPhase        `json:"-"`
}

// entrySimulation integrates the ENTRY phase. It is an ode.Integrable over
// the state [altitude m, velocity m/s, downrange m], driven by the RK4
// solver with a fixed 0.1 s step.
type entrySimulation struct {
	mass, area, diameter float64
	sinγ, cosγ           float64
	state                []float64
	elapsed              float64
	steps                int
	phase                EntryPhase
	stalled              bool // velocity bled to zero before the ground
	points               *[]TrajectoryPoint
}

// GetState gets the state.
func (s *entrySimulation) GetState() []float64 {
	return s.state
}

// SetState records the next state, appends a trajectory sample and evaluates
// the guarded transitions out of ENTRY.
func (s *entrySimulation) SetState(t float64, f []float64) {
	s.state = f
	s.steps++
	s.elapsed += entryStep
	h, v := f[0], f[1]
	ρ := atmosphericDensity(h)
	q := 0.5 * ρ * v * v
	*s.points = append(*s.points, TrajectoryPoint{
		Time:               s.elapsed,
		Altitude:           math.Max(h, 0) / 1000,
		Velocity:           v / 1000,
		HorizontalDistance: f[2] / 1000,
		DynamicPressure:    q,
		AtmosphericDensity: ρ,
	})
	switch {
	case q > fragmentationPressure && s.diameter < fragmentationMaxDiameter:
		s.phase = PhaseAirburst
	case h <= 0:
		s.phase = PhaseImpact
	case v <= 0:
		s.stalled = true
	}
}

// Stop returns whether the entry integration is over.
func (s *entrySimulation) Stop(t float64) bool {
	return s.phase != PhaseEntry || s.stalled || s.steps >= entryMaxSteps
}

// Func does the math: exponential-atmosphere drag plus the gravity component
// along the flight path, at a frozen flight path angle.
func (s *entrySimulation) Func(t float64, f []float64) []float64 {
	h, v := f[0], f[1]
	ρ := atmosphericDensity(h)
	drag := 0.5 * dragCd * s.area * ρ * v * v
	vDot := -drag/s.mass - surfaceGravity*s.sinγ
	return []float64{-v * s.sinγ, vDot, v * s.cosγ}
}

func atmosphericDensity(h float64) float64 {
	if h < 0 {
		h = 0
	}
	return seaLevelDensity * math.Exp(-h/scaleHeight)
}

// PropagateEntry integrates a descent from the default start altitude through
// atmospheric entry to the ground (or airburst). Velocity in km/s, angle in
// degrees from horizontal, diameter in m, density in kg/m^3.
func PropagateEntry(velocity, angle, diameter, density float64) (*EntryProfile, error) {
	return PropagateEntryFrom(velocity, angle, diameter, density, DefaultEntryAltitude, DefaultStartAltitude)
}

// PropagateEntryFrom is PropagateEntry with explicit entry and start
// altitudes (km).
func PropagateEntryFrom(velocity, angle, diameter, density, entryAltitude, startAltitude float64) (*EntryProfile, error) {
	if velocity <= 0 {
		return nil, ValidationError{"velocity", velocity, "must be strictly positive (km/s)"}
	}
	if angle < 0 || angle > 90 {
		return nil, ValidationError{"entry angle", angle, "must be in [0, 90] degrees"}
	}
	if diameter <= 0 {
		return nil, ValidationError{"diameter", diameter, "must be strictly positive (m)"}
	}
	if density <= 0 {
		return nil, ValidationError{"density", density, "must be strictly positive (kg/m^3)"}
	}
	if startAltitude < entryAltitude {
		return nil, ValidationError{"start altitude", startAltitude, "must be above the entry altitude"}
	}

	γ := Deg2rad(angle)
	sinγ, cosγ := math.Sincos(γ)
	radius := diameter / 2
	mass := density * (4.0 / 3.0) * math.Pi * radius * radius * radius
	area := math.Pi * radius * radius

	points := make([]TrajectoryPoint, 0, approachMaxSteps+entryMaxSteps)

	// APPROACH: ballistic coast above the atmosphere at constant velocity.
	h := startAltitude * 1000
	v := velocity * 1000
	x := 0.0
	elapsed := 0.0
	for steps := 0; h > entryAltitude*1000 && steps < approachMaxSteps; steps++ {
		points = append(points, TrajectoryPoint{
			Time:               elapsed,
			Altitude:           h / 1000,
			Velocity:           v / 1000,
			HorizontalDistance: x / 1000,
		})
		x += v * cosγ * approachStep
		h -= v * sinγ * approachStep
		elapsed += approachStep
	}

	// ENTRY: drag plus gravity, fine timestep, guarded exits.
	sim := &entrySimulation{
		mass:     mass,
		area:     area,
		diameter: diameter,
		sinγ:     sinγ,
		cosγ:     cosγ,
		state:    []float64{h, v, x},
		elapsed:  elapsed,
		phase:    PhaseEntry,
		points:   &points,
	}
	ode.NewRK4(0, entryStep, sim).Solve() // Blocking.

	h, v, x = sim.state[0], sim.state[1], sim.state[2]

	profile := &EntryProfile{
		Points:         points,
		ImpactDistance: x / 1000,
		EntryAngle:     angle,
		Fragmented:     sim.phase == PhaseAirburst,
		FinalPhase:     sim.phase,
	}
	if h <= 0 {
		profile.ImpactVelocity = v / 1000
	} else {
		profile.AirburstAltitude = h / 1000
	}

	// Visualization convention: the horizontal series counts down to 0 at the
	// impact point (distance remaining, not distance traveled).
	maxDist := profile.ImpactDistance
	for i := range profile.Points {
		profile.Points[i].HorizontalDistance = maxDist - profile.Points[i].HorizontalDistance
	}
	return profile, nil
}
