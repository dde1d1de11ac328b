package entry

import (
	"fmt"
	"math"
)

// MissionStatus is the overall session outcome.
type MissionStatus uint8

const (
	// StatusActive means the mission is in progress.
	StatusActive MissionStatus = iota
	// StatusSuccess is sticky: set at touchdown, never cleared.
	StatusSuccess
	// StatusFailure is sticky: set by the first critical condition, never cleared.
	StatusFailure
)

// String implements the Stringer interface.
func (s MissionStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	}
	panic("cannot stringify unknown mission status")
}

// Predicate evaluates a condition against an instantaneous vehicle state.
type Predicate func(s TrajectorySample) bool

// NamedPredicate pairs a predicate with a name for diagnostics and event records.
type NamedPredicate struct {
	Name string
	Cond Predicate
}

// FailureCondition is a critical-failure predicate with its human-readable reason.
type FailureCondition struct {
	Reason string
	Cond   Predicate
}

// PhaseDefinition is one static per-mission phase table entry. Entry into the
// phase is marked by the time and/or altitude thresholds: the phase is
// entered once the state time reaches TimeThreshold or the altitude drops to
// AltitudeThreshold. A NaN threshold is disabled; both disabled means the
// phase is always entered (used for the initial phase).
type PhaseDefinition struct {
	Name              string
	Description       string
	TimeThreshold     float64
	AltitudeThreshold float64
	StartConditions   []NamedPredicate
	EndConditions     []NamedPredicate
	Events            []NamedPredicate
	Failures          []FailureCondition
	Terminal          bool // entering this phase completes the mission
}

// entered returns whether the state satisfies this phase's entry thresholds.
func (p PhaseDefinition) entered(s TrajectorySample) bool {
	if !math.IsNaN(p.TimeThreshold) && s.Time >= p.TimeThreshold {
		return true
	}
	if !math.IsNaN(p.AltitudeThreshold) && s.Altitude <= p.AltitudeThreshold {
		return true
	}
	return math.IsNaN(p.TimeThreshold) && math.IsNaN(p.AltitudeThreshold)
}

// NoThreshold disables a phase threshold.
func NoThreshold() float64 {
	return math.NaN()
}

// PhaseState is the mutable session state of the phase machine.
type PhaseState struct {
	Current       int
	EnteredAt     float64
	Status        MissionStatus
	FailureReason string
	fired         map[string]bool // events already fired during this phase visit
}

// NewPhaseState returns the initial state: first phase, mission active.
func NewPhaseState() *PhaseState {
	return &PhaseState{fired: make(map[string]bool)}
}

// TransitionCheck is the result of a transition guard evaluation.
type TransitionCheck struct {
	Valid  bool
	Reason string
}

// UpdateResult is the diff returned by each Update call, replacing callback
// registration: the caller inspects it instead of being called back.
type UpdateResult struct {
	PhaseChanged      bool
	NewPhase          int
	NewlyFired        []string
	Status            MissionStatus
	FailureReason     string
	InvalidTransition *TransitionCheck // set when a phase change failed its guard
}

// PhaseMachine classifies vehicle states against an ordered phase table.
type PhaseMachine struct {
	Phases []PhaseDefinition
}

// Classify returns the index of the last phase whose entry thresholds the
// state satisfies. It is a pure function of the state, so it is idempotent
// and scrub-safe: seeking backward in time reclassifies correctly.
func (pm PhaseMachine) Classify(s TrajectorySample) int {
	for i := len(pm.Phases) - 1; i > 0; i-- {
		if pm.Phases[i].entered(s) {
			return i
		}
	}
	return 0
}

// ValidateTransition checks every end condition of the from phase and every
// start condition of the to phase against the state. It is a diagnostic
// guard: an invalid transition is reported, never blocked.
func (pm PhaseMachine) ValidateTransition(from, to int, s TrajectorySample) TransitionCheck {
	for _, cond := range pm.Phases[from].EndConditions {
		if !cond.Cond(s) {
			return TransitionCheck{Valid: false, Reason: fmt.Sprintf("%s end condition '%s' unmet", pm.Phases[from].Name, cond.Name)}
		}
	}
	for _, cond := range pm.Phases[to].StartConditions {
		if !cond.Cond(s) {
			return TransitionCheck{Valid: false, Reason: fmt.Sprintf("%s start condition '%s' unmet", pm.Phases[to].Name, cond.Name)}
		}
	}
	return TransitionCheck{Valid: true}
}

// Progress returns the mission progress fraction for the given phase index.
func (pm PhaseMachine) Progress(idx int) float64 {
	if len(pm.Phases) < 2 {
		return 1
	}
	return float64(idx) / float64(len(pm.Phases)-1)
}

// Update advances the phase state from the provided vehicle state and
// returns the resulting diff. Event predicates fire at most once per phase
// visit; critical-failure predicates are evaluated on every call regardless
// of event state. A terminal status is sticky: once set, later updates never
// change it, although classification and event bookkeeping continue.
func (pm PhaseMachine) Update(ps *PhaseState, s TrajectorySample) UpdateResult {
	res := UpdateResult{NewPhase: ps.Current}

	phase := pm.Classify(s)
	if phase != ps.Current {
		if check := pm.ValidateTransition(ps.Current, phase, s); !check.Valid {
			res.InvalidTransition = &check
		}
		ps.Current = phase
		ps.EnteredAt = s.Time
		ps.fired = make(map[string]bool)
		res.PhaseChanged = true
		res.NewPhase = phase
	}

	def := pm.Phases[ps.Current]
	for _, ev := range def.Events {
		if ps.fired[ev.Name] {
			continue
		}
		if ev.Cond(s) {
			ps.fired[ev.Name] = true
			res.NewlyFired = append(res.NewlyFired, ev.Name)
		}
	}

	if ps.Status == StatusActive {
		for _, fc := range def.Failures {
			if fc.Cond(s) {
				ps.Status = StatusFailure
				ps.FailureReason = fc.Reason
				break
			}
		}
	}
	if ps.Status == StatusActive && def.Terminal {
		ps.Status = StatusSuccess
	}

	res.Status = ps.Status
	res.FailureReason = ps.FailureReason
	return res
}
