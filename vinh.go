package entry

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/ode"
)

const (
	// vinhTimeLimit is the hard propagation limit in seconds.
	vinhTimeLimit = 1000.0
)

// VinhPropagator integrates the planetary entry equations of motion in
// spherical state [r, longitude, latitude, V, flight path angle, heading]
// (Vinh, Hypersonic and Planetary Entry Flight Mechanics), driven by the RK4
// solver. It stops at the terminal radius (parachute deployment) or at the
// hard time limit, whichever comes first.
type VinhPropagator struct {
	Planet         Planet
	Vehicle        Vehicle
	Step           float64
	TerminalRadius float64
	Bank           BankProfile

	state   []float64
	elapsed float64
	times   []float64
	states  [][]float64
}

// NewVinhPropagator returns a propagator terminating at the configured
// parachute-deployment altitude with the configured step and bank command.
func NewVinhPropagator(cfg PhysicsConfig, bank BankProfile) *VinhPropagator {
	if bank == nil {
		bank = ConstantBank(cfg.Entry.BankDeg)
	}
	return &VinhPropagator{
		Planet:         cfg.Planet,
		Vehicle:        cfg.Vehicle,
		Step:           cfg.Step,
		TerminalRadius: cfg.Planet.Radius + cfg.Limits.ParachuteAltitude,
		Bank:           bank,
	}
}

// Propagate integrates from the provided entry state and returns the
// trajectory in inertial Cartesian coordinates on the propagation time grid,
// with velocities from central differences and the endpoints trimmed.
func (vp *VinhPropagator) Propagate(init EntryState) (*Trajectory, error) {
	if vp.Step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %f", vp.Step)
	}
	if init.R <= vp.TerminalRadius {
		return nil, fmt.Errorf("initial radius %.1f m already below terminal radius %.1f m", init.R, vp.TerminalRadius)
	}
	vp.state = []float64{init.R, init.Longitude, init.Latitude, init.V, init.FPA, init.Heading}
	vp.elapsed = 0
	vp.times = []float64{0}
	vp.states = [][]float64{append([]float64(nil), vp.state...)}

	ode.NewRK4(0, vp.Step, vp).Solve()

	if len(vp.times) < 3 {
		return nil, fmt.Errorf("propagation produced only %d states", len(vp.times))
	}
	return vp.toTrajectory(), nil
}

// GetState implements the ode.Integrable interface.
func (vp *VinhPropagator) GetState() []float64 {
	return append([]float64(nil), vp.state...)
}

// SetState implements the ode.Integrable interface and records the history.
func (vp *VinhPropagator) SetState(t float64, s []float64) {
	vp.state = append([]float64(nil), s...)
	vp.elapsed += vp.Step
	vp.times = append(vp.times, vp.elapsed)
	vp.states = append(vp.states, append([]float64(nil), s...))
}

// Stop implements the ode.Integrable interface.
func (vp *VinhPropagator) Stop(t float64) bool {
	return vp.state[0] <= vp.TerminalRadius || vp.elapsed >= vinhTimeLimit
}

// Func implements the ode.Integrable interface: the entry equations of motion.
func (vp *VinhPropagator) Func(t float64, x []float64) []float64 {
	r := x[0]
	φ := x[2]
	v := x[3]
	γ := x[4]
	ψ := x[5]

	μ := vp.Planet.GM()
	β := vp.Vehicle.Beta
	ld := vp.Vehicle.LD
	bank := vp.Bank.BankAngle(t) * deg2rad
	ρ := vp.Planet.Density(r - vp.Planet.Radius)

	sγ, cγ := math.Sincos(γ)
	sψ, cψ := math.Sincos(ψ)
	r2 := r * r

	xDot := []float64{
		v * sγ,                        // radius
		v * cγ * cψ / (r * math.Cos(φ)), // longitude
		v * cγ * sψ / r,               // latitude
		-ρ*v*v/(2*β) - μ*sγ/r2,        // velocity
		v*cγ/r + ρ*v*ld*math.Cos(bank)/(2*β) - μ*cγ/(v*r2), // flight path angle
		ρ*v*ld*math.Sin(bank)/(2*β*cγ) - v*cγ*cψ*math.Tan(φ)/r, // heading
	}
	for i, f := range xDot {
		if math.IsNaN(f) {
			panic(fmt.Errorf("xDot[%d]=NaN @ t=%f state=%+v", i, t, x))
		}
	}
	return xDot
}

// toTrajectory converts the recorded spherical states to inertial Cartesian
// samples. Velocities come from central differences over the fixed time
// grid, with one-sided differences at the ends; both endpoints are then
// trimmed so every returned sample carries a central-difference velocity.
func (vp *VinhPropagator) toTrajectory() *Trajectory {
	n := len(vp.times)
	pos := make([][]float64, n)
	for i, s := range vp.states {
		pos[i] = EntryState{R: s[0], Longitude: s[1], Latitude: s[2]}.Cartesian()
	}
	vel := make([][]float64, n)
	vel[0] = scaled(sub(pos[1], pos[0]), 1/vp.Step)
	vel[n-1] = scaled(sub(pos[n-1], pos[n-2]), 1/vp.Step)
	for i := 1; i < n-1; i++ {
		vel[i] = scaled(sub(pos[i+1], pos[i-1]), 1/(2*vp.Step))
	}

	samples := make([]TrajectorySample, 0, n-2)
	for i := 1; i < n-1; i++ {
		samples = append(samples, TrajectorySample{
			Time:        vp.times[i],
			Position:    pos[i],
			Velocity:    vel[i],
			Altitude:    vp.states[i][0] - vp.Planet.Radius,
			VelocityMag: Norm(vel[i]),
			BankAngle:   vp.Bank.BankAngle(vp.times[i]),
		})
	}
	return NewTrajectory(samples, vp.Planet.Radius)
}
