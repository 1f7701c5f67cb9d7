package impactor

import (
	"math"
	"runtime"
	"sync"
)

const (
	// targetDensity is the average crustal density of the impacted surface.
	targetDensity = 2500.0 // kg/m^3
	// craterK and craterα are the Holsapple-Housen gravity-regime scaling
	// constants.
	craterK = 1.88
	craterα = 0.22
	// joulesPerMegaton converts kinetic energy to TNT equivalent.
	joulesPerMegaton = 4.184e15
	// thermalFluxThreshold is the 1st-degree-burn flux in J/m^2
	// (Glasstone & Dolan).
	thermalFluxThreshold = 6300.0
)

// AsteroidBody describes the impactor. Immutable input.
type AsteroidBody struct {
	Diameter float64 `json:"diameter"` // m
	Density  float64 `json:"density"`  // kg/m^3
	Angle    float64 `json:"angle"`    // degrees from horizontal, [0, 90]
}

// Validate rejects out-of-range physical parameters before any computation.
func (b AsteroidBody) Validate() error {
	if b.Diameter <= 0 {
		return ValidationError{"diameter", b.Diameter, "must be strictly positive (m)"}
	}
	if b.Density <= 0 {
		return ValidationError{"density", b.Density, "must be strictly positive (kg/m^3)"}
	}
	if b.Angle < 0 || b.Angle > 90 {
		return ValidationError{"impact angle", b.Angle, "must be in [0, 90] degrees"}
	}
	return nil
}

// Mass returns the body mass in kg under the spherical assumption.
func (b AsteroidBody) Mass() float64 {
	r := b.Diameter / 2
	return b.Density * (4.0 / 3.0) * math.Pi * r * r * r
}

// ImpactEffects quantifies the ground effects of an impact. Pure function
// output of ComputeEffects.
type ImpactEffects struct {
	CraterDiameter     float64 `json:"crater_diameter"`       // m
	CraterDepth        float64 `json:"crater_depth"`          // m
	KineticEnergy      float64 `json:"kinetic_energy_joules"` // J
	EnergyMT           float64 `json:"energy_mt_tnt"`
	SeismicMagnitude   float64 `json:"seismic_magnitude"`
	SeismicEnergy      float64 `json:"seismic_energy_ergs"`
	ThermalRadius      float64 `json:"thermal_radius_km"`
	OverpressureRadius float64 `json:"overpressure_radius_km"`
	Mass               float64 `json:"mass_kg"`
}

// ComputeEffects converts asteroid kinematics into crater, energy and seismic
// effects via π-group crater scaling (Holsapple & Housen), USGS seismic
// scaling and Glasstone-Dolan blast scaling. Deterministic pure function:
// diameter in m, velocity in km/s, density in kg/m^3, angle in degrees.
func ComputeEffects(diameter, velocity, density, angle float64) (ImpactEffects, error) {
	body := AsteroidBody{diameter, density, angle}
	if err := body.Validate(); err != nil {
		return ImpactEffects{}, err
	}
	if velocity <= 0 {
		return ImpactEffects{}, ValidationError{"velocity", velocity, "must be strictly positive (km/s)"}
	}

	vms := velocity * 1000
	radius := diameter / 2
	mass := body.Mass()
	kinetic := 0.5 * mass * vms * vms

	// π-group dimensional analysis, gravity regime.
	π2 := surfaceGravity * radius * math.Sin(Deg2rad(angle)) / (vms * vms)
	πR := craterK * math.Pow(π2, -craterα)
	craterRadius := πR * radius * math.Cbrt(density/targetDensity)
	craterDiameter := 2 * craterRadius

	energyMT := kinetic / joulesPerMegaton
	energyErgs := kinetic * 1e7

	magnitude := 0.0
	if energyErgs > 0 {
		magnitude = (2.0/3.0)*math.Log10(energyErgs) - 10.7
		magnitude = math.Max(0, math.Min(magnitude, 12))
	}

	// ~30% of the kinetic energy radiates thermally.
	thermalRadiusKm := math.Sqrt(0.3*kinetic/(4*math.Pi*thermalFluxThreshold)) / 1000

	return ImpactEffects{
		CraterDiameter:     craterDiameter,
		CraterDepth:        craterDiameter * 0.1,
		KineticEnergy:      kinetic,
		EnergyMT:           energyMT,
		SeismicMagnitude:   magnitude,
		SeismicEnergy:      energyErgs,
		ThermalRadius:      thermalRadiusKm,
		OverpressureRadius: 2.15 * math.Cbrt(energyMT), // 1 psi
		Mass:               mass,
	}, nil
}

// ImpactCase is one input of a batch evaluation.
type ImpactCase struct {
	Body     AsteroidBody `json:"body"`
	Velocity float64      `json:"velocity"` // km/s
}

// ComputeEffectsBatch evaluates N independent impact cases. The cases have no
// cross-input dependency, so they are fanned out across workers; results are
// positionally identical to a sequential loop. workers <= 0 selects
// GOMAXPROCS. The first validation failure aborts the batch.
func ComputeEffectsBatch(cases []ImpactCase, workers int) ([]ImpactEffects, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cases) {
		workers = len(cases)
	}
	results := make([]ImpactEffects, len(cases))
	if len(cases) == 0 {
		return results, nil
	}

	var wg sync.WaitGroup
	idxChan := make(chan int, len(cases))
	errChan := make(chan error, len(cases))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxChan {
				c := cases[i]
				effects, err := ComputeEffects(c.Body.Diameter, c.Velocity, c.Body.Density, c.Body.Angle)
				if err != nil {
					errChan <- err
					continue
				}
				results[i] = effects
			}
		}()
	}
	for i := range cases {
		idxChan <- i
	}
	close(idxChan)
	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}
	return results, nil
}
