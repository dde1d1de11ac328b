package entry

import (
	"os"
	"sync"

	kitlog "github.com/go-kit/kit/log"
)

// EntrySession owns one trajectory and its phase state from entry interface
// to teardown. The trajectory is a single-writer resource: the lock spans
// each whole mutate-then-recompute sequence, so a query never observes a
// half-recomputed suffix.
type EntrySession struct {
	Machine PhaseMachine

	mu     sync.Mutex
	traj   *Trajectory
	state  *PhaseState
	logger kitlog.Logger
}

// NewEntrySession starts a session over the provided trajectory and phase table.
func NewEntrySession(traj *Trajectory, machine PhaseMachine) *EntrySession {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "session")
	return &EntrySession{Machine: machine, traj: traj, state: NewPhaseState(), logger: klog}
}

// SetLogger changes the session logger.
func (es *EntrySession) SetLogger(l kitlog.Logger) {
	es.logger = l
}

// Trajectory returns the session trajectory handle.
func (es *EntrySession) Trajectory() *Trajectory {
	return es.traj
}

// Sample interpolates the trajectory at time t.
func (es *EntrySession) Sample(t float64) TrajectorySample {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.traj.Sample(t)
}

// Update advances playback to time t: moves the past/future split, runs the
// phase machine on the interpolated state and returns the resulting diff.
func (es *EntrySession) Update(t float64) UpdateResult {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.traj.SetCurrentTime(t)
	s := es.traj.Sample(t)
	res := es.Machine.Update(es.state, s)
	if res.PhaseChanged {
		es.logger.Log("level", "info", "phase", es.Machine.Phases[res.NewPhase].Name, "t", s.Time, "altitude(m)", s.Altitude)
	}
	if res.InvalidTransition != nil {
		es.logger.Log("level", "warning", "invalid transition", res.InvalidTransition.Reason, "t", s.Time)
	}
	for _, ev := range res.NewlyFired {
		es.logger.Log("level", "info", "event", ev, "t", s.Time)
	}
	if res.Status == StatusFailure && res.FailureReason != "" {
		es.logger.Log("level", "critical", "status", res.Status, "reason", res.FailureReason, "t", s.Time)
	}
	return res
}

// Deflect applies a steering deflection to the portion of the trajectory
// after cutTime. The lock spans the displacement and the recomputation pass.
func (es *EntrySession) Deflect(cutTime, lateral, radial, finalPercent float64) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.traj.ApplyDeflection(cutTime, lateral, radial, finalPercent)
}

// Status returns the current mission status.
func (es *EntrySession) Status() MissionStatus {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.state.Status
}

// FailureReason returns the stored failure reason, empty unless failed.
func (es *EntrySession) FailureReason() string {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.state.FailureReason
}

// Phase returns the current phase definition and the mission progress fraction.
func (es *EntrySession) Phase() (PhaseDefinition, float64) {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.Machine.Phases[es.state.Current], es.Machine.Progress(es.state.Current)
}
