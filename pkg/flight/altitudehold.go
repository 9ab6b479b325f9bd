package flight

import "liftlab/pkg/aero"

const (
	// holdMinAirspeed gates the law: below this airspeed there is not
	// enough control authority to hold altitude.
	holdMinAirspeed = 10.0

	// holdApproachRate is the first-order lag factor. Moving only a small
	// fraction toward the target each tick damps the pitch oscillation an
	// instantaneous proportional target would cause.
	holdApproachRate = 0.02

	holdMinTargetAoA = -5.0
	holdMaxTargetAoA = 15.0
)

// stepAltitudeHold nudges the angle of attack toward the pitch that makes
// lift equal weight at the current airspeed and density. Runs every render
// tick while the hold flag is set, the aircraft is flying and airspeed is
// above the control threshold.
func (s *State) stepAltitudeHold(res aero.Results, density float64) {
	if !res.IsFlying || res.TotalAirspeed <= holdMinAirspeed {
		return
	}

	targetCL := res.WeightForce / (0.5 * density * res.TotalAirspeed * res.TotalAirspeed * res.WingArea)
	targetAoA := clamp(aero.AngleOfAttackFor(targetCL, s.WingType), holdMinTargetAoA, holdMaxTargetAoA)

	s.AngleOfAttack += (targetAoA - s.AngleOfAttack) * holdApproachRate
}
