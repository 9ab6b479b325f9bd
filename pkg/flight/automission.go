package flight

import "liftlab/pkg/aero"

// Auto-mission runs on its own fixed-period tick (50 ms by default),
// independent of the render loop, and flies a canned profile: full-throttle
// takeoff, constant-pitch climb, then a speed-managed cruise at the
// mission ceiling.
const (
	// MissionTickInterval is the fixed control period of the mission law.
	MissionTickIntervalMs = 50

	rotationAltitude = 50.0
	rotationAoA      = 12.0
	takeoffRampStep  = 1.5

	cruiseFloorAltitude = 9900.0
	climbSpeedStep      = 1.0
	// CruiseSpeed is 700 km/h expressed in m/s.
	CruiseSpeed      = 700.0 / 3.6
	cruiseEasingRate = 0.10
)

// MissionPhase names the current segment of the auto-mission profile,
// derived from altitude the same way the landing phase is.
type MissionPhase string

const (
	MissionTakeoff MissionPhase = "takeoff"
	MissionClimb   MissionPhase = "climb"
	MissionCruise  MissionPhase = "cruise"
)

// missionPhaseFor derives the mission segment from altitude alone.
func missionPhaseFor(altitude float64) MissionPhase {
	switch {
	case altitude < rotationAltitude:
		return MissionTakeoff
	case altitude < cruiseFloorAltitude:
		return MissionClimb
	default:
		return MissionCruise
	}
}

// StepMission applies one mission tick. Called from the fixed 50 ms timer,
// never from the render loop. The law owns velocity and pitch while
// active, and force-toggles the altitude-hold flag: off during the climb
// so the constant-pitch attitude stands, on in cruise to hold the ceiling.
// That internal toggle is not a user mode change and does not go through
// SetMode.
func (s *State) StepMission(res aero.Results) {
	if !s.AutoMission {
		return
	}

	switch missionPhaseFor(s.Altitude) {
	case MissionTakeoff:
		s.Velocity += takeoffRampStep
		if s.Velocity > MaxVelocity {
			s.Velocity = MaxVelocity
		}
		if res.IsFlying {
			s.AngleOfAttack = rotationAoA
		}

	case MissionClimb:
		s.Velocity = approach(s.Velocity, CruiseSpeed, climbSpeedStep)
		s.AngleOfAttack = rotationAoA
		s.AltitudeHold = false

	case MissionCruise:
		s.Velocity += (CruiseSpeed - s.Velocity) * cruiseEasingRate
		s.AltitudeHold = true
	}
}

// MissionPhaseNow reports the segment the mission law would apply at the
// current altitude, for display purposes.
func (s *State) MissionPhaseNow() MissionPhase {
	return missionPhaseFor(s.Altitude)
}

// approach moves cur toward target by at most step, in either direction.
func approach(cur, target, step float64) float64 {
	switch {
	case cur < target-step:
		return cur + step
	case cur > target+step:
		return cur - step
	default:
		return target
	}
}

// StepAutopilot applies the render-tick control laws in their fixed order:
// altitude hold first, then autoland. The two are mutually exclusive at
// the toggle boundary, so at most one acts per tick; the mission law runs
// on its own timer and is not stepped here.
func (s *State) StepAutopilot(res aero.Results, density float64) {
	if s.AltitudeHold {
		s.stepAltitudeHold(res, density)
	}
	if s.Autoland {
		s.stepAutoland(res)
	}
}
