// Package flight owns the mutable simulation state and its per-tick
// transitions: numeric integration of altitude, distance and time, plus the
// three autopilot control laws (altitude hold, autoland, auto-mission) that
// correct angle of attack and velocity in place. Exactly one goroutine may
// drive a State; the engine package serializes all writes onto its tick
// loop.
package flight

import "liftlab/pkg/aero"

// Angle-of-attack authority ranges. Direct input is accepted within the
// wider range; the landing law restricts itself to the narrower one.
const (
	MinAngleOfAttack = -5.0
	MaxAngleOfAttack = 25.0

	// MaxVelocity caps throttle ramps (m/s).
	MaxVelocity = 650.0
)

// State is the complete mutable simulation state: aircraft parameters,
// session accumulators and autopilot flags. Mode flags are mutually
// exclusive, enforced by SetMode at the toggle boundary; the mission law
// may still flip AltitudeHold internally while it runs.
type State struct {
	// Aircraft parameters, user-adjustable unless an autopilot owns them.
	Weight        float64       `json:"weight"`
	WingSpan      float64       `json:"wingSpan"`
	ChordLength   float64       `json:"chordLength"`
	Velocity      float64       `json:"velocity"`
	HeadWind      float64       `json:"headWind"`
	AngleOfAttack float64       `json:"angleOfAttack"`
	WingType      aero.WingType `json:"wingType"`

	// Session accumulators.
	Altitude         float64 `json:"altitude"`
	DistanceTraveled float64 `json:"distanceTraveled"`
	FlightTime       float64 `json:"flightTime"`

	// Autopilot flags and the landing sub-state.
	AltitudeHold bool         `json:"altitudeHold"`
	Autoland     bool         `json:"autoland"`
	AutoMission  bool         `json:"autoMission"`
	LandingPhase LandingPhase `json:"landingPhase"`
}

// NewState returns the default session: the airliner preset at rest on the
// runway with a 4 degree resting pitch.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores the default preset and zeroes all session accumulators
// and mode flags.
func (s *State) Reset() {
	*s = State{LandingPhase: PhaseInactive}
	DefaultPreset().Apply(s)
}

// AeroInputs assembles the model inputs for the current state at the given
// air density.
func (s *State) AeroInputs(density float64) aero.Inputs {
	return aero.Inputs{
		Weight:        s.Weight,
		WingSpan:      s.WingSpan,
		ChordLength:   s.ChordLength,
		Velocity:      s.Velocity,
		HeadWind:      s.HeadWind,
		AngleOfAttack: s.AngleOfAttack,
		WingType:      s.WingType,
		AirDensity:    density,
	}
}

// OnGround reports whether the aircraft is at (or clamped to) the surface.
func (s *State) OnGround() bool {
	return s.Altitude <= 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
