package entry

import (
	"sort"
)

const (
	// velocityLookahead is the finite-difference lookahead of VelocityAt, in seconds.
	velocityLookahead = 0.1
)

// TrajectorySample is one instant of vehicle state. Position and Velocity are
// inertial body-centered vectors in meters and meters per second; Altitude,
// VelocityMag and DistToTarget are caches derived from them and are
// recomputed after any position edit, never set independently.
type TrajectorySample struct {
	Time         float64
	Position     []float64
	Velocity     []float64
	Altitude     float64
	VelocityMag  float64
	DistToTarget float64
	BankAngle    float64
}

// Trajectory is an ordered, time-indexed buffer of samples owned by a single
// simulation session. The current index splits it into an immutable past and
// a mutable future; only the future may be rewritten by a deflection.
type Trajectory struct {
	samples     []TrajectorySample
	bodyRadius  float64
	target      []float64 // nil when no landing target is set
	current     int
	fallbackDir []float64 // direction returned by VelocityAt on a degenerate difference
}

// NewTrajectory wraps the provided samples, which must be sorted by strictly
// increasing time. Derived scalar fields are trusted as provided.
func NewTrajectory(samples []TrajectorySample, bodyRadius float64) *Trajectory {
	return &Trajectory{samples: samples, bodyRadius: bodyRadius}
}

// NewTrajectoryFromRaw builds a trajectory from a raw loader table of times
// and positions, deriving velocities by forward finite difference (backward
// for the final sample) and recomputing all scalar caches.
func NewTrajectoryFromRaw(times []float64, positions [][]float64, bodyRadius float64) *Trajectory {
	n := len(times)
	samples := make([]TrajectorySample, n)
	for i := 0; i < n; i++ {
		samples[i] = TrajectorySample{Time: times[i], Position: positions[i]}
	}
	traj := &Trajectory{samples: samples, bodyRadius: bodyRadius}
	for i := range samples {
		var vel []float64
		switch {
		case n == 1:
			vel = []float64{0, 0, 0}
		case i == n-1:
			dt := times[i] - times[i-1]
			vel = scaled(sub(positions[i], positions[i-1]), 1/dt)
		default:
			dt := times[i+1] - times[i]
			vel = scaled(sub(positions[i+1], positions[i]), 1/dt)
		}
		traj.samples[i].Velocity = vel
		traj.refreshDerived(i)
	}
	return traj
}

// Len returns the number of samples.
func (traj *Trajectory) Len() int {
	return len(traj.samples)
}

// At returns a copy of the i-th sample.
func (traj *Trajectory) At(i int) TrajectorySample {
	return copySample(traj.samples[i])
}

// Samples returns a copy of the full sample list, e.g. for drawing path geometry.
func (traj *Trajectory) Samples() []TrajectorySample {
	out := make([]TrajectorySample, len(traj.samples))
	for i, s := range traj.samples {
		out[i] = copySample(s)
	}
	return out
}

// BodyRadius returns the radius used for altitude computation.
func (traj *Trajectory) BodyRadius() float64 {
	return traj.bodyRadius
}

// SetTarget sets the landing target used for the DistToTarget cache and
// refreshes that cache on every sample.
func (traj *Trajectory) SetTarget(target []float64) {
	traj.target = target
	for i := range traj.samples {
		traj.samples[i].DistToTarget = traj.distToTarget(traj.samples[i].Position)
	}
}

// SetFallbackDirection sets the unit direction VelocityAt returns when the
// finite difference degenerates. When unset, the direction opposite the
// queried position (descending) is used.
func (traj *Trajectory) SetFallbackDirection(dir []float64) {
	traj.fallbackDir = Unit(dir)
}

// SetCurrentTime moves the past/future split to the last sample at or before t.
func (traj *Trajectory) SetCurrentTime(t float64) {
	traj.current = traj.indexAtOrBefore(t)
}

// CurrentIndex returns the index of the past/future split.
func (traj *Trajectory) CurrentIndex() int {
	return traj.current
}

// indexAtOrBefore returns the last index whose time is <= t (0 if t precedes
// the first sample).
func (traj *Trajectory) indexAtOrBefore(t float64) int {
	i := sort.Search(len(traj.samples), func(i int) bool {
		return traj.samples[i].Time > t
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// Sample interpolates the trajectory at time t. The query time is clamped to
// the sample bounds, never extrapolated. Position and velocity use a cubic
// eased parameter; the scalar caches interpolate linearly.
func (traj *Trajectory) Sample(t float64) TrajectorySample {
	if len(traj.samples) == 0 {
		return TrajectorySample{}
	}
	if len(traj.samples) < 2 {
		return copySample(traj.samples[0])
	}
	first, last := traj.samples[0].Time, traj.samples[len(traj.samples)-1].Time
	if t <= first {
		return copySample(traj.samples[0])
	}
	if t >= last {
		return copySample(traj.samples[len(traj.samples)-1])
	}
	i := traj.indexAtOrBefore(t)
	a, b := traj.samples[i], traj.samples[i+1]
	u := (t - a.Time) / (b.Time - a.Time)
	s := cubicEase(u)
	return TrajectorySample{
		Time:         t,
		Position:     lerpVec(a.Position, b.Position, s),
		Velocity:     lerpVec(a.Velocity, b.Velocity, s),
		Altitude:     lerp(a.Altitude, b.Altitude, u),
		VelocityMag:  lerp(a.VelocityMag, b.VelocityMag, u),
		DistToTarget: lerp(a.DistToTarget, b.DistToTarget, u),
		BankAngle:    lerp(a.BankAngle, b.BankAngle, u),
	}
}

// VelocityAt returns the direction of travel at time t from a short
// position lookahead. When the difference is degenerate (e.g. at the final
// sample), the configured fallback direction is returned instead.
func (traj *Trajectory) VelocityAt(t float64) []float64 {
	here := traj.Sample(t)
	ahead := traj.Sample(t + velocityLookahead)
	v := scaled(sub(ahead.Position, here.Position), 1/velocityLookahead)
	if Norm(v) > zeroTol {
		return v
	}
	if traj.fallbackDir != nil {
		return traj.fallbackDir
	}
	return scaled(Unit(here.Position), -1)
}

// refreshDerived recomputes the scalar caches of sample i from its position
// and velocity.
func (traj *Trajectory) refreshDerived(i int) {
	s := &traj.samples[i]
	s.Altitude = Norm(s.Position) - traj.bodyRadius
	s.VelocityMag = Norm(s.Velocity)
	s.DistToTarget = traj.distToTarget(s.Position)
}

func (traj *Trajectory) distToTarget(pos []float64) float64 {
	if traj.target == nil {
		return 0
	}
	return distance(pos, traj.target)
}

// cubicEase maps the linear fraction t to a smoothed interpolation parameter.
func cubicEase(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec(a, b []float64, t float64) []float64 {
	return []float64{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}

func copySample(s TrajectorySample) TrajectorySample {
	out := s
	out.Position = append([]float64(nil), s.Position...)
	out.Velocity = append([]float64(nil), s.Velocity...)
	return out
}
