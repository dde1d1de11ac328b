package entry

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"
)

func exampleSession() *EntrySession {
	es := NewEntrySession(exampleTrajectory(), exampleMachine())
	es.SetLogger(kitlog.NewNopLogger())
	return es
}

func TestSessionUpdateDiff(t *testing.T) {
	es := exampleSession()
	res := es.Update(0)
	if res.NewPhase != 0 {
		t.Fatalf("playback start must sit in EntryInterface, got %d", res.NewPhase)
	}
	res = es.Update(200)
	if !res.PhaseChanged || res.NewPhase != 1 {
		t.Fatalf("expected the PeakHeating transition, got %+v", res)
	}
	// No change between consecutive updates inside the same phase.
	res = es.Update(210)
	if res.PhaseChanged {
		t.Fatal("no transition expected inside the same phase")
	}
	def, progress := es.Phase()
	if def.Name != "PeakHeating" {
		t.Fatalf("phase accessor fail: %s", def.Name)
	}
	if progress != 0.5 {
		t.Fatalf("progress fail: %f", progress)
	}
}

func TestSessionStatusSticky(t *testing.T) {
	es := exampleSession()
	es.Machine.Phases[1].Failures = []FailureCondition{
		{"guidance divergence", func(s TrajectorySample) bool { return true }},
	}
	es.Update(0)
	res := es.Update(200)
	if res.Status != StatusFailure {
		t.Fatalf("expected a failure, got %s", res.Status)
	}
	if es.Status() != StatusFailure || es.FailureReason() != "guidance divergence" {
		t.Fatal("session must retain the terminal status and reason")
	}
	// The status survives further playback.
	es.Update(260.65)
	if es.Status() != StatusFailure {
		t.Fatal("failure status must be sticky across updates")
	}
}

func TestSessionDeflectKeepsPastIntact(t *testing.T) {
	es := exampleSession()
	before := es.Trajectory().Samples()
	es.Update(130)
	es.Deflect(130, 1, 0, 0.1)
	for i := 0; i <= es.Trajectory().CurrentIndex(); i++ {
		if !vectorsIdentical(es.Trajectory().At(i).Position, before[i].Position) {
			t.Fatalf("deflection through the session mutated past sample %d", i)
		}
	}
	// The future portion did move.
	last := es.Trajectory().Len() - 1
	if vectorsIdentical(es.Trajectory().At(last).Position, before[last].Position) {
		t.Fatal("deflection through the session must displace the future")
	}
}

func TestSessionConcurrentSampleSafe(t *testing.T) {
	es := exampleSession()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			es.Sample(float64(i))
		}
		close(done)
	}()
	for i := 0; i < 100; i++ {
		es.Update(float64(i))
	}
	<-done
}
