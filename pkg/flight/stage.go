package flight

import (
	"strings"
	"time"
)

// Coarse flight stages shown in the status line and recorded as session
// events. Derived from successive snapshots, not stored in State.
const (
	StageParked   = "parked"
	StageRolling  = "rolling"
	StageTakeOff  = "take-off"
	StageAirborne = "airborne"
	StageClimb    = "climb"
	StageCruise   = "cruise"
	StageDescend  = "descend"
	StageLanded   = "landed"
)

// StageSample is the per-tick input to the stage machine.
type StageSample struct {
	OnGround      bool
	Velocity      float64
	VerticalSpeed float64
	IsFlying      bool
}

// StageMachine refines per-tick samples into a stable flight stage. A
// candidate stage must repeat before it is committed, which keeps single
// noisy ticks (altitude brushing zero during a bounce, a transient
// vertical-speed spike) from flapping the displayed stage.
type StageMachine struct {
	current        string
	candidate      string
	confirmations  int
	wasAirborne    bool
	lastVelocity   float64
	isAccelerating bool
	isDecelerating bool
	lastTransition map[string]time.Time
}

// NewStageMachine creates a stage machine in an uninitialized state.
func NewStageMachine() *StageMachine {
	return &StageMachine{
		lastTransition: make(map[string]time.Time),
	}
}

const (
	stageRollSpeed   = 20.0 // ground roll fast enough to be a departure or arrival
	stageParkedSpeed = 1.0
	stageClimbRate   = 1.5
	stageDescendRate = -1.5
	stageLevelBand   = 1.0
	stageTrendDelta  = 0.5
)

// Update evaluates one sample and returns the refined stage.
func (m *StageMachine) Update(now time.Time, s StageSample) string {
	if m.current != "" {
		m.isAccelerating = s.Velocity > m.lastVelocity+stageTrendDelta
		m.isDecelerating = s.Velocity < m.lastVelocity-stageTrendDelta
	}
	m.lastVelocity = s.Velocity

	// First tick commits directly, no hysteresis.
	if m.current == "" {
		if s.OnGround {
			m.current = StageParked
		} else {
			m.current = StageAirborne
			m.wasAirborne = true
		}
		return m.current
	}

	candidate := m.detectCandidate(s)

	// Two consecutive detections commit a change.
	switch {
	case candidate == m.current:
		m.candidate = ""
		m.confirmations = 0
	case candidate == m.candidate:
		m.confirmations++
		if m.confirmations >= 1 {
			m.current = candidate
			m.lastTransition[m.current] = now
			m.candidate = ""
			m.confirmations = 0
		}
	default:
		m.candidate = candidate
		m.confirmations = 0
	}

	if !s.OnGround {
		m.wasAirborne = true
	}
	if m.current == StageParked {
		m.wasAirborne = false
	}

	return m.current
}

// Current returns the committed stage.
func (m *StageMachine) Current() string {
	return m.current
}

// LastTransition returns when the machine last entered the given stage.
func (m *StageMachine) LastTransition(stage string) time.Time {
	return m.lastTransition[stage]
}

// Reset returns the machine to its uninitialized state.
func (m *StageMachine) Reset() {
	m.current = ""
	m.candidate = ""
	m.confirmations = 0
	m.wasAirborne = false
	m.lastVelocity = 0
	m.isAccelerating = false
	m.isDecelerating = false
	m.lastTransition = make(map[string]time.Time)
}

func (m *StageMachine) detectCandidate(s StageSample) string {
	if s.OnGround {
		return m.detectGroundCandidate(s)
	}
	return m.detectAirborneCandidate(s)
}

func (m *StageMachine) detectGroundCandidate(s StageSample) string {
	// Standing still always reads as parked, which also releases the
	// arrival state after a landing rollout.
	if s.Velocity < stageParkedSpeed {
		return StageParked
	}

	// Back on the surface after flight: arrival roll.
	if m.wasAirborne {
		if m.isDecelerating || s.Velocity < stageRollSpeed {
			return StageLanded
		}
	}

	if s.Velocity > stageRollSpeed && m.isAccelerating {
		return StageTakeOff
	}

	if m.current == StageTakeOff || m.current == StageLanded {
		return m.current
	}
	return StageRolling
}

func (m *StageMachine) detectAirborneCandidate(s StageSample) string {
	if s.VerticalSpeed > stageClimbRate {
		return StageClimb
	}
	if s.VerticalSpeed < stageDescendRate {
		return StageDescend
	}
	if s.VerticalSpeed > -stageLevelBand && s.VerticalSpeed < stageLevelBand {
		return StageCruise
	}

	switch m.current {
	case StageAirborne, StageClimb, StageCruise, StageDescend, StageTakeOff:
		return m.current
	}
	return StageAirborne
}

// FormatStage returns a human-readable title for a stage constant.
func FormatStage(s string) string {
	if s == "" {
		return "Unknown"
	}
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[0:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// FlightDuration returns seconds since the last take-off transition, or 0
// if the aircraft has not departed.
func (m *StageMachine) FlightDuration(now time.Time) float64 {
	t, ok := m.lastTransition[StageTakeOff]
	if !ok || t.IsZero() {
		return 0
	}
	return now.Sub(t).Seconds()
}
