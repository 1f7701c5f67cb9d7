package impactor

import "fmt"

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// EarthOrbitalSpeed is the mean heliocentric speed of Earth in km/s.
	EarthOrbitalSpeed = 29.78
	// EarthOrbitRadius is Earth's orbital radius in km (circular approximation).
	EarthOrbitRadius = 1.0 * AU
)

// CelestialObject defines a celestial object.
// Only the Sun and Earth are needed here: asteroid orbits are heliocentric and
// the intercept geometry only uses Earth's radius and mean orbital speed.
type CelestialObject struct {
	Name   string
	Radius float64 // km
	a      float64 // semi-major axis of the body's own orbit, km
	μ      float64 // gravitational parameter, km^3/s^2
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (c CelestialObject) GM() float64 {
	return c.μ
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.a == b.a && c.μ == b.μ
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch name {
	case "Sun", "sun":
		return Sun, nil
	case "Earth", "earth":
		return Earth, nil
	default:
		return CelestialObject{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 695700, -1, 1.32712440017987e11}

// Earth is home.
var Earth = CelestialObject{"Earth", 6378.1363, 149598023, 3.98600433e5}
