package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlab/pkg/aero"
)

func TestAltitudeHoldInactiveWhenNotFlying(t *testing.T) {
	s := NewState()
	s.Velocity = 50 // rolling, not flying
	s.AltitudeHold = true

	res := evaluate(s)
	require.False(t, res.IsFlying)

	before := s.AngleOfAttack
	s.StepAutopilot(res, aero.SeaLevelDensity)
	assert.Equal(t, before, s.AngleOfAttack)
}

func TestAltitudeHoldInactiveBelowControlSpeed(t *testing.T) {
	s := NewState()
	s.AltitudeHold = true
	before := s.AngleOfAttack

	// Synthetic results: flying but with almost no airspeed.
	res := aero.Results{IsFlying: true, TotalAirspeed: 10, WingArea: 845.35, WeightForce: 1}
	s.StepAutopilot(res, aero.SeaLevelDensity)
	assert.Equal(t, before, s.AngleOfAttack)
}

func TestAltitudeHoldStepsTowardLevelPitch(t *testing.T) {
	s := flyingState(t)
	s.AltitudeHold = true

	res := evaluate(s)
	density := aero.DensityAt(s.Altitude)

	targetCL := res.WeightForce / (0.5 * density * res.TotalAirspeed * res.TotalAirspeed * res.WingArea)
	target := aero.AngleOfAttackFor(targetCL, s.WingType)
	require.InDelta(t, target, clamp(target, -5, 15), 1e-9, "target inside authority for this case")

	before := s.AngleOfAttack
	s.StepAutopilot(res, density)
	assert.InDelta(t, before+(target-before)*0.02, s.AngleOfAttack, 1e-9)
}

func TestAltitudeHoldTargetClamped(t *testing.T) {
	s := NewState()
	s.AltitudeHold = true
	s.AngleOfAttack = 0
	s.WingType = aero.WingSymmetric

	// Heavy and slow: the level-flight coefficient implies an absurd
	// pitch; the law must aim at 15 degrees, not beyond.
	res := aero.Results{
		IsFlying:      true,
		TotalAirspeed: 30,
		WingArea:      100,
		WeightForce:   5e6,
	}
	s.StepAutopilot(res, aero.SeaLevelDensity)
	assert.InDelta(t, (15.0-0.0)*0.02, s.AngleOfAttack, 1e-9)

	// Feather-light and fast with a high-camber wing: the implied
	// coefficient is near zero, which for this wing sits below the -5
	// degree floor.
	s.AngleOfAttack = 0
	s.WingType = aero.WingFlatBottom
	res.WeightForce = 1
	res.TotalAirspeed = 300
	s.StepAutopilot(res, aero.SeaLevelDensity)
	assert.InDelta(t, (-5.0-0.0)*0.02, s.AngleOfAttack, 1e-9)
}

// Holding altitude over many ticks: the climb rate must settle toward
// zero as the pitch converges on the level-flight attitude.
func TestAltitudeHoldConverges(t *testing.T) {
	s := flyingState(t)
	s.Altitude = 2000
	res := evaluate(s)
	require.NoError(t, s.SetMode(ModeAltitudeHold, true, res))

	const dt = 1.0 / 60
	for i := 0; i < 20000; i++ {
		res = evaluate(s)
		s.Integrate(res, dt)
		s.StepAutopilot(res, aero.DensityAt(s.Altitude))
	}

	finalRate := ClimbRate(evaluate(s), s.Weight)
	assert.InDelta(t, 0, finalRate, 1.0, "climb rate settles near zero")
	assert.Positive(t, s.Altitude)
}
