package flight

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlab/pkg/aero"
)

// evaluate runs the aerodynamic model for the state at the density of its
// current altitude, the way the engine does each tick.
func evaluate(s *State) aero.Results {
	return aero.Compute(s.AeroInputs(aero.DensityAt(s.Altitude)))
}

func TestMassDampingFloor(t *testing.T) {
	assert.Equal(t, 10000.0, MassDamping(100))
	assert.Equal(t, 10000.0, MassDamping(250000))
	assert.Equal(t, 23000.0, MassDamping(575000))
}

func TestIntegrateClimbsWhenLiftExceedsWeight(t *testing.T) {
	s := NewState()
	s.Velocity = 220

	res := evaluate(s)
	require.True(t, res.IsFlying)

	s.Integrate(res, 0.016)
	assert.Positive(t, s.Altitude)
	assert.InDelta(t, ClimbRate(res, s.Weight)*0.016, s.Altitude, 1e-9)
}

func TestIntegrateAltitudeNeverNegative(t *testing.T) {
	s := NewState()
	s.Velocity = 10 // far below takeoff speed: lift << weight
	s.Altitude = 0.5

	res := evaluate(s)
	require.Negative(t, ClimbRate(res, s.Weight))

	// A huge dt would integrate far below ground without the clamp.
	s.Integrate(res, 100)
	assert.Equal(t, 0.0, s.Altitude)
}

func TestIntegrateAltitudeNonNegativeForRandomSteps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewState()
	for i := 0; i < 2000; i++ {
		s.Velocity = rng.Float64() * 300
		s.AngleOfAttack = -5 + rng.Float64()*30
		res := evaluate(s)
		s.Integrate(res, rng.Float64()*0.1)
		require.GreaterOrEqual(t, s.Altitude, 0.0, "step %d", i)
	}
}

func TestIntegrateMissionCeiling(t *testing.T) {
	s := NewState()
	s.Velocity = 400
	s.AngleOfAttack = 12
	s.Altitude = 9999
	s.AutoMission = true

	res := evaluate(s)
	require.Positive(t, ClimbRate(res, s.Weight))

	s.Integrate(res, 10)
	assert.Equal(t, MissionCeiling, s.Altitude)

	// Without the mission flag the same step may overshoot the ceiling.
	s2 := NewState()
	s2.Velocity = 400
	s2.AngleOfAttack = 12
	s2.Altitude = 9999
	s2.Integrate(evaluate(s2), 10)
	assert.Greater(t, s2.Altitude, MissionCeiling)
}

func TestIntegrateDistanceAccumulates(t *testing.T) {
	s := NewState()
	s.Velocity = 100

	res := evaluate(s)
	s.Integrate(res, 1)
	s.Integrate(res, 0.5)
	assert.InDelta(t, 150, s.DistanceTraveled, 1e-9)
}

func TestIntegrateFlightTimeGating(t *testing.T) {
	s := NewState()

	// Standing still on the runway: no flight time.
	res := evaluate(s)
	s.Integrate(res, 5)
	assert.Zero(t, s.FlightTime)

	// Rolling: time accumulates even though not flying.
	s.Velocity = 10
	res = evaluate(s)
	s.Integrate(res, 5)
	assert.InDelta(t, 5, s.FlightTime, 1e-9)

	// Airborne with zero ground speed (wind tunnel case): still counts.
	s2 := NewState()
	s2.Velocity = 0
	s2.HeadWind = 250
	s2.AngleOfAttack = 10
	res2 := evaluate(s2)
	require.True(t, res2.IsFlying)
	s2.Integrate(res2, 3)
	assert.InDelta(t, 3, s2.FlightTime, 1e-9)
}

func TestIntegrateZeroDtIsNoOp(t *testing.T) {
	s := NewState()
	s.Velocity = 220
	before := *s

	s.Integrate(evaluate(s), 0)
	assert.Equal(t, before, *s)

	// Negative dt is treated as zero, not integrated backwards.
	s.Integrate(evaluate(s), -1)
	assert.Equal(t, before, *s)
}

func TestResetRoundTrip(t *testing.T) {
	s := NewState()
	s.Velocity = 300
	s.Altitude = 5000
	s.DistanceTraveled = 120000
	s.FlightTime = 600
	s.AngleOfAttack = 9
	s.AltitudeHold = true
	s.LandingPhase = PhaseFlare

	s.Reset()

	def := DefaultPreset()
	assert.Zero(t, s.Altitude)
	assert.Zero(t, s.DistanceTraveled)
	assert.Zero(t, s.FlightTime)
	assert.Zero(t, s.Velocity)
	assert.Equal(t, def.AngleOfAttack, s.AngleOfAttack)
	assert.Equal(t, def.Weight, s.Weight)
	assert.Equal(t, aero.WingAirbus, s.WingType)
	assert.False(t, s.AltitudeHold)
	assert.False(t, s.Autoland)
	assert.False(t, s.AutoMission)
	assert.Equal(t, PhaseInactive, s.LandingPhase)
}

func TestPresets(t *testing.T) {
	all := Presets()
	require.NotEmpty(t, all)
	assert.Equal(t, "airbus", all[0].Name, "default preset listed first")

	p, err := PresetByName("fighter")
	require.NoError(t, err)
	assert.Equal(t, aero.WingThin, p.WingType)

	_, err = PresetByName("zeppelin")
	assert.Error(t, err)

	s := NewState()
	s.Velocity = 200
	s.Altitude = 1000
	p.Apply(s)
	assert.Equal(t, p.Weight, s.Weight)
	assert.Zero(t, s.Velocity, "preset application brings the aircraft to rest")
	assert.Equal(t, 1000.0, s.Altitude, "session accumulators untouched")
}
