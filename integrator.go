package entry

import (
	"fmt"
	"math"
	"sort"
)

// BankProfile provides the commanded bank angle in degrees at a given time.
type BankProfile interface {
	BankAngle(t float64) float64
}

// ConstantBank is a fixed bank angle in degrees for all time.
type ConstantBank float64

// BankAngle implements the BankProfile interface.
func (b ConstantBank) BankAngle(t float64) float64 {
	return float64(b)
}

// BankKeyframe is one point of a piecewise-linear bank schedule.
type BankKeyframe struct {
	Time    float64
	BankDeg float64
}

// BankSchedule is a keyframe list sorted by time, linearly interpolated
// between neighbors and clamped to the end values outside the keyframe range.
type BankSchedule []BankKeyframe

// BankAngle implements the BankProfile interface.
func (b BankSchedule) BankAngle(t float64) float64 {
	if len(b) == 0 {
		return 0
	}
	if t <= b[0].Time {
		return b[0].BankDeg
	}
	if t >= b[len(b)-1].Time {
		return b[len(b)-1].BankDeg
	}
	i := sort.Search(len(b), func(i int) bool { return b[i].Time > t }) - 1
	u := (t - b[i].Time) / (b[i+1].Time - b[i].Time)
	return lerp(b[i].BankDeg, b[i+1].BankDeg, u)
}

// Integrator propagates an entry trajectory forward from initial conditions
// with semi-implicit Euler under bank-angle steering. Deterministic: the same
// inputs reproduce the same trajectory bit for bit.
type Integrator struct {
	Planet  Planet
	Vehicle Vehicle
	Step    float64 // seconds
}

// Integrate propagates from the given inertial position and velocity for the
// requested duration and returns the resulting trajectory, including the
// initial state as the first sample.
func (ig Integrator) Integrate(r0, v0 []float64, duration float64, profile BankProfile) *Trajectory {
	if ig.Step <= 0 {
		panic("integrator Step must be positive")
	}
	if profile == nil {
		profile = ConstantBank(0)
	}
	n := int(duration/ig.Step) + 1
	samples := make([]TrajectorySample, 0, n)

	pos := append([]float64(nil), r0...)
	vel := append([]float64(nil), v0...)
	t := 0.0
	samples = append(samples, ig.sampleAt(t, pos, vel, profile.BankAngle(t)))

	for len(samples) < n {
		bankDeg := profile.BankAngle(t)
		accel := ig.Acceleration(pos, vel, bankDeg)
		// Semi-implicit Euler: velocity first, then position from the new velocity.
		vel = add(vel, scaled(accel, ig.Step))
		pos = add(pos, scaled(vel, ig.Step))
		t += ig.Step
		for i := 0; i < 3; i++ {
			if math.IsNaN(pos[i]) || math.IsNaN(vel[i]) {
				panic(fmt.Errorf("NaN state @ t=%f\nR=%+v\tV=%+v", t, pos, vel))
			}
		}
		samples = append(samples, ig.sampleAt(t, pos, vel, profile.BankAngle(t)))
	}
	return NewTrajectory(samples, ig.Planet.Radius)
}

// Acceleration returns the total acceleration (gravity, drag, lift) on the
// vehicle at the given inertial state and bank angle in degrees.
func (ig Integrator) Acceleration(pos, vel []float64, bankDeg float64) []float64 {
	r := Norm(pos)
	altitude := r - ig.Planet.Radius
	ρ := ig.Planet.Density(altitude)
	vMag := Norm(vel)

	q := 0.5 * ρ * vMag * vMag
	drag := q * ig.Vehicle.RefArea
	bank := bankDeg * deg2rad
	lift := drag * ig.Vehicle.LD * math.Sin(math.Abs(bank))

	// Inverse-square gravity from the surface value.
	gravity := scaled(Unit(pos), -ig.Planet.SurfaceGravity()*(ig.Planet.Radius/r)*(ig.Planet.Radius/r))

	vHat := Unit(vel)
	dragAccel := scaled(vHat, -drag/ig.Vehicle.Mass)
	liftAccel := scaled(ig.liftDirection(pos, vel, bank), lift/ig.Vehicle.Mass)
	return add(gravity, dragAccel, liftAccel)
}

// liftDirection builds the lift unit vector: the in-plane normal to the
// velocity, rotated about the velocity by the bank angle in radians.
func (ig Integrator) liftDirection(pos, vel []float64, bank float64) []float64 {
	vHat := Unit(vel)
	var base []float64
	if Norm(vel) < zeroTol {
		// Degenerate velocity: fall back to local up, re-orthogonalized
		// against the velocity direction.
		up := Unit(pos)
		proj := sub(up, scaled(vHat, Dot(up, vHat)))
		if Norm(proj) > zeroTol {
			base = Unit(proj)
		} else {
			base = orthogonalTo(vHat)
		}
	} else {
		h := Unit(Cross(pos, vel)) // orbital-plane normal
		base = Unit(Cross(h, vHat))
		if Norm(base) < zeroTol {
			// Radial flight: no orbital plane to speak of.
			base = orthogonalTo(vHat)
		}
	}
	return RotAbout(vHat, bank, base)
}

// sampleAt emits a sample with all derived scalar fields computed from the state.
func (ig Integrator) sampleAt(t float64, pos, vel []float64, bankDeg float64) TrajectorySample {
	return TrajectorySample{
		Time:        t,
		Position:    append([]float64(nil), pos...),
		Velocity:    append([]float64(nil), vel...),
		Altitude:    Norm(pos) - ig.Planet.Radius,
		VelocityMag: Norm(vel),
		BankAngle:   bankDeg,
	}
}
