package entry

import (
	"fmt"
	"math"
	"strings"
)

const (
	// coldSpaceTemp is the cosmic background temperature in Kelvin, returned
	// above the atmosphere ceiling.
	coldSpaceTemp = 2.725
	// soundSpeedTempFloor keeps the speed of sound real at extreme altitudes.
	soundSpeedTempFloor = 10.0
)

// Planet defines a celestial body and its exponential atmosphere.
// All lengths in meters, densities in kg/m3, temperatures in Kelvin.
type Planet struct {
	Name        string
	Radius      float64
	μ           float64    // gravitational parameter, m^3/s^2
	ρ0          float64    // surface density
	p0          float64    // surface pressure, Pa
	scaleHeight float64    // density e-folding altitude
	ceiling     float64    // atmosphere ceiling: vacuum above
	t0          float64    // surface temperature
	lapse       [3]float64 // lapse rates of the three temperature segments, K/m
	breaks      [2]float64 // altitudes of the segment boundaries
	γ           float64    // ratio of specific heats of the atmosphere gas
	gasR        float64    // specific gas constant, J/(kg.K)
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (p Planet) GM() float64 {
	return p.μ
}

// SurfaceGravity returns the gravitational acceleration at the surface.
func (p Planet) SurfaceGravity() float64 {
	return p.μ / (p.Radius * p.Radius)
}

// String implements the Stringer interface.
func (p Planet) String() string {
	return p.Name + " body"
}

// Density returns the atmospheric density at the given altitude.
func (p Planet) Density(altitude float64) float64 {
	if altitude >= p.ceiling {
		return 0
	}
	return p.ρ0 * math.Exp(-altitude/p.scaleHeight)
}

// Pressure returns the atmospheric pressure at the given altitude, following
// the same exponential profile as the density.
func (p Planet) Pressure(altitude float64) float64 {
	if altitude >= p.ceiling {
		return 0
	}
	return p.p0 * math.Exp(-altitude/p.scaleHeight)
}

// Temperature returns the atmospheric temperature at the given altitude from
// a three-segment piecewise-linear lapse model. Each segment starts at the
// previous segment's end value, so the profile is continuous by construction.
func (p Planet) Temperature(altitude float64) float64 {
	if altitude >= p.ceiling {
		return coldSpaceTemp
	}
	if altitude < 0 {
		altitude = 0
	}
	t := p.t0
	base := 0.0
	for i, brk := range p.breaks {
		if altitude <= brk {
			return t + p.lapse[i]*(altitude-base)
		}
		t += p.lapse[i] * (brk - base)
		base = brk
	}
	return t + p.lapse[2]*(altitude-base)
}

// SoundSpeed returns the speed of sound at the given altitude. The
// temperature is floored to keep the square root real at the approximation
// limits of the lapse model.
func (p Planet) SoundSpeed(altitude float64) float64 {
	t := math.Max(soundSpeedTempFloor, p.Temperature(altitude))
	return math.Sqrt(p.γ * p.gasR * t)
}

// PlanetFromString returns the planet from its name.
func PlanetFromString(name string) (Planet, error) {
	switch strings.ToLower(name) {
	case "mars":
		return Mars, nil
	default:
		return Planet{}, fmt.Errorf("undefined planet '%s'", name)
	}
}

// Mars is the vacation place.
// μ and radius from Curtis, Orbital Mechanics for Engineering Students, App. A;
// atmosphere from the Glenn Mars engineering model (exponential density,
// two-segment lapse) extended with a thin mesosphere segment.
var Mars = Planet{
	Name:        "Mars",
	Radius:      3396e3,
	μ:           4.2828e13,
	ρ0:          0.020,
	p0:          699.0,
	scaleHeight: 11100,
	ceiling:     200e3,
	t0:          242.15,
	lapse:       [3]float64{-0.000998, -0.00222, -0.00045},
	breaks:      [2]float64{7000, 40000},
	γ:           1.29,
	gasR:        188.92,
}

// Vehicle defines an entry vehicle. The drag coefficient is folded into the
// reference area, so RefArea is Cd*A.
type Vehicle struct {
	Name    string
	Mass    float64 // kg
	RefArea float64 // Cd*A, m^2
	LD      float64 // lift-to-drag ratio
	Beta    float64 // ballistic coefficient m/(Cd*A), kg/m^2
}

// VehicleFromString returns the vehicle from its name.
func VehicleFromString(name string) (Vehicle, error) {
	switch strings.ToLower(name) {
	case "msl", "default":
		return MSLClass, nil
	default:
		return Vehicle{}, fmt.Errorf("undefined vehicle '%s'", name)
	}
}

// MSLClass is an MSL-class entry vehicle (Li and Jiang 2014).
var MSLClass = Vehicle{Name: "MSL", Mass: 3300, RefArea: 3300. / 115., LD: 0.24, Beta: 115}
