package entry

import (
	"strings"
	"testing"
)

// exampleMachine is the three-phase entry scenario: thresholds on time for
// entry interface and parachute deployment, on altitude for peak heating.
func exampleMachine() PhaseMachine {
	return PhaseMachine{Phases: []PhaseDefinition{
		{Name: "EntryInterface", TimeThreshold: 0, AltitudeThreshold: NoThreshold()},
		{Name: "PeakHeating", TimeThreshold: NoThreshold(), AltitudeThreshold: 60000},
		{Name: "ParachuteDeploy", TimeThreshold: 260.65, AltitudeThreshold: NoThreshold()},
	}}
}

func exampleTrajectory() *Trajectory {
	times := []float64{0, 130, 260.65}
	alts := []float64{132000, 66000, 13462.9}
	positions := make([][]float64, len(times))
	for i := range times {
		positions[i] = []float64{Mars.Radius + alts[i], 0, 0}
	}
	return NewTrajectoryFromRaw(times, positions, Mars.Radius)
}

func TestClassifyExampleScenario(t *testing.T) {
	pm := exampleMachine()
	traj := exampleTrajectory()
	if got := pm.Classify(traj.Sample(200)); got != 1 {
		t.Fatalf("t=200 must classify as PeakHeating, got %s", pm.Phases[got].Name)
	}
	if got := pm.Classify(traj.Sample(260.65)); got != 2 {
		t.Fatalf("t=260.65 must classify as ParachuteDeploy, got %s", pm.Phases[got].Name)
	}
	if got := pm.Classify(traj.Sample(0)); got != 0 {
		t.Fatalf("t=0 must classify as EntryInterface, got %s", pm.Phases[got].Name)
	}
}

func TestClassifyIdempotentAndMonotonic(t *testing.T) {
	pm := exampleMachine()
	traj := exampleTrajectory()
	prev := 0
	for q := 0.0; q <= 260.65; q += 5 {
		s := traj.Sample(q)
		a, b := pm.Classify(s), pm.Classify(s)
		if a != b {
			t.Fatalf("classification not idempotent at t=%f", q)
		}
		if a < prev {
			t.Fatalf("classification went backward at t=%f: %d -> %d", q, prev, a)
		}
		prev = a
	}
}

func TestValidateTransition(t *testing.T) {
	pm := exampleMachine()
	pm.Phases[0].EndConditions = []NamedPredicate{
		{"descending", func(s TrajectorySample) bool { return s.Altitude < 132000 }},
	}
	pm.Phases[1].StartConditions = []NamedPredicate{
		{"in atmosphere", func(s TrajectorySample) bool { return s.Altitude < Mars.ceiling }},
	}
	ok := pm.ValidateTransition(0, 1, TrajectorySample{Time: 130, Altitude: 66000})
	if !ok.Valid {
		t.Fatalf("expected a valid transition, got: %s", ok.Reason)
	}
	bad := pm.ValidateTransition(0, 1, TrajectorySample{Time: 130, Altitude: 140000})
	if bad.Valid || !strings.Contains(bad.Reason, "descending") {
		t.Fatalf("expected the end condition to fail, got %+v", bad)
	}
}

func TestUpdateReportsInvalidTransitionButProceeds(t *testing.T) {
	pm := exampleMachine()
	pm.Phases[1].StartConditions = []NamedPredicate{
		{"never", func(s TrajectorySample) bool { return false }},
	}
	ps := NewPhaseState()
	res := pm.Update(ps, TrajectorySample{Time: 100, Altitude: 50000})
	if !res.PhaseChanged || res.NewPhase != 1 {
		t.Fatal("classification must proceed despite the failed guard")
	}
	if res.InvalidTransition == nil || res.InvalidTransition.Valid {
		t.Fatal("the failed guard must be reported")
	}
}

func TestEventsFireOncePerVisit(t *testing.T) {
	pm := exampleMachine()
	pm.Phases[1].Events = []NamedPredicate{
		{"peak heating", func(s TrajectorySample) bool { return true }},
	}
	ps := NewPhaseState()
	first := pm.Update(ps, TrajectorySample{Time: 100, Altitude: 50000})
	if len(first.NewlyFired) != 1 || first.NewlyFired[0] != "peak heating" {
		t.Fatalf("expected the event to fire on phase entry, got %v", first.NewlyFired)
	}
	second := pm.Update(ps, TrajectorySample{Time: 110, Altitude: 45000})
	if len(second.NewlyFired) != 0 {
		t.Fatal("an event must fire at most once per phase visit")
	}
}

func TestFailureIsSticky(t *testing.T) {
	pm := exampleMachine()
	pm.Phases[1].Failures = []FailureCondition{
		{"heat shield structural limit exceeded", func(s TrajectorySample) bool { return s.VelocityMag > 5000 }},
	}
	ps := NewPhaseState()
	res := pm.Update(ps, TrajectorySample{Time: 100, Altitude: 50000, VelocityMag: 6000})
	if res.Status != StatusFailure || res.FailureReason != "heat shield structural limit exceeded" {
		t.Fatalf("expected a failure, got %+v", res)
	}
	// Subsequent benign updates must not clear the terminal status.
	res = pm.Update(ps, TrajectorySample{Time: 120, Altitude: 40000, VelocityMag: 100})
	if res.Status != StatusFailure {
		t.Fatal("failure status must be sticky")
	}
	if res.FailureReason != "heat shield structural limit exceeded" {
		t.Fatal("failure reason must be retained")
	}
}

func TestSuccessIsSticky(t *testing.T) {
	pm := exampleMachine()
	pm.Phases = append(pm.Phases, PhaseDefinition{
		Name: "Touchdown", TimeThreshold: NoThreshold(), AltitudeThreshold: 0, Terminal: true,
	})
	ps := NewPhaseState()
	res := pm.Update(ps, TrajectorySample{Time: 300, Altitude: -1, VelocityMag: 2})
	if res.Status != StatusSuccess {
		t.Fatalf("touchdown must set success, got %s", res.Status)
	}
	res = pm.Update(ps, TrajectorySample{Time: 301, Altitude: -1, VelocityMag: 2})
	if res.Status != StatusSuccess {
		t.Fatal("success status must be sticky")
	}
}

func TestDefaultPhasesCrashLanding(t *testing.T) {
	cfg := DefaultConfig()
	pm := PhaseMachine{Phases: DefaultPhases(cfg)}
	ps := NewPhaseState()
	// Ground impact above the landing speed limit: failure wins over the
	// terminal success of the touchdown phase.
	res := pm.Update(ps, TrajectorySample{Time: 400, Altitude: -0.5, VelocityMag: 80})
	if res.Status != StatusFailure {
		t.Fatalf("crash landing must fail the mission, got %s", res.Status)
	}
	if !strings.Contains(res.FailureReason, "landing impact") {
		t.Fatalf("unexpected failure reason: %s", res.FailureReason)
	}
}

func TestDefaultPhasesNominalTouchdown(t *testing.T) {
	cfg := DefaultConfig()
	pm := PhaseMachine{Phases: DefaultPhases(cfg)}
	ps := NewPhaseState()
	res := pm.Update(ps, TrajectorySample{Time: 400, Altitude: -0.5, VelocityMag: 5})
	if res.Status != StatusSuccess {
		t.Fatalf("soft touchdown must succeed, got %s (%s)", res.Status, res.FailureReason)
	}
}

func TestProgress(t *testing.T) {
	pm := exampleMachine()
	if pm.Progress(0) != 0 {
		t.Fatal("first phase must report zero progress")
	}
	if pm.Progress(len(pm.Phases)-1) != 1 {
		t.Fatal("last phase must report full progress")
	}
}

func TestMissionStatusString(t *testing.T) {
	if StatusActive.String() != "active" || StatusSuccess.String() != "success" || StatusFailure.String() != "failure" {
		t.Fatal("status stringer fail")
	}
	assertPanic(t, func() { _ = MissionStatus(99).String() })
}
