package flight

import "liftlab/pkg/aero"

// LandingPhase is the autoland sub-state. It is not stored across ticks:
// the active phase is re-derived from altitude every tick so the displayed
// status and the applied control law can never disagree.
type LandingPhase string

const (
	PhaseInactive   LandingPhase = "inactive"
	PhaseGlideslope LandingPhase = "glideslope"
	PhaseFlare      LandingPhase = "flare"
	PhaseTouchdown  LandingPhase = "touchdown"
)

const (
	flareAltitude     = 15.0
	touchdownAltitude = 0.5

	// Glideslope descent targets (m/s): steep segment above 50 m, shallow
	// segment below.
	steepDescentAlt  = 50.0
	steepDescentRate = -6.0
	finalDescentRate = -2.0
	glideslopeGain   = 0.08

	// Flare: pitch relaxes toward the flare attitude while speed bleeds
	// off 1% per tick.
	flareTargetAoA   = 8.5
	flareApproachAoA = 0.10
	flareSpeedDecay  = 0.99

	// Touchdown: fixed braking attitude and deceleration.
	touchdownAoA      = 2.0
	brakingPerTick    = 2.5
	approachSpeed     = 75.0
	approachSpeedStep = 0.4

	landingMinAoA = -2.0
	landingMaxAoA = 15.0
)

// landingPhaseFor derives the phase from altitude alone.
func landingPhaseFor(altitude float64) LandingPhase {
	switch {
	case altitude > flareAltitude:
		return PhaseGlideslope
	case altitude > touchdownAltitude:
		return PhaseFlare
	default:
		return PhaseTouchdown
	}
}

// stepAutoland applies one tick of the landing sequence. The phase is
// derived from altitude, the pitch law follows the phase, and the approach
// speed regulation runs concurrently until the wheels are down. Touchdown
// brakes to a standstill and then clears the mode.
func (s *State) stepAutoland(res aero.Results) {
	phase := landingPhaseFor(s.Altitude)
	s.LandingPhase = phase

	switch phase {
	case PhaseGlideslope:
		targetRate := finalDescentRate
		if s.Altitude > steepDescentAlt {
			targetRate = steepDescentRate
		}
		currentRate := ClimbRate(res, s.Weight)
		s.AngleOfAttack += (targetRate - currentRate) * glideslopeGain
		s.regulateApproachSpeed()

	case PhaseFlare:
		s.AngleOfAttack += (flareTargetAoA - s.AngleOfAttack) * flareApproachAoA
		s.Velocity *= flareSpeedDecay
		s.regulateApproachSpeed()

	case PhaseTouchdown:
		s.AngleOfAttack = touchdownAoA
		s.Velocity -= brakingPerTick
		if s.Velocity <= 0 {
			s.Velocity = 0
			s.Autoland = false
			s.LandingPhase = PhaseInactive
			return
		}
	}

	s.AngleOfAttack = clamp(s.AngleOfAttack, landingMinAoA, landingMaxAoA)
}

// regulateApproachSpeed walks velocity toward the approach target in fixed
// steps. Deliberately uncoupled from the pitch law.
func (s *State) regulateApproachSpeed() {
	switch {
	case s.Velocity > approachSpeed+approachSpeedStep:
		s.Velocity -= approachSpeedStep
	case s.Velocity < approachSpeed-approachSpeedStep:
		s.Velocity += approachSpeedStep
	default:
		s.Velocity = approachSpeed
	}
}
