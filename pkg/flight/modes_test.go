package flight

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flyingState returns a state airborne and fast enough for every mode's
// activation precondition.
func flyingState(t *testing.T) *State {
	t.Helper()
	s := NewState()
	s.Velocity = 220
	s.Altitude = 1000
	require.True(t, evaluate(s).IsFlying)
	return s
}

func TestModeMutualExclusionAllPairs(t *testing.T) {
	modes := []Mode{ModeAltitudeHold, ModeAutoland, ModeMission}

	for _, first := range modes {
		for _, second := range modes {
			if first == second {
				continue
			}
			t.Run(fmt.Sprintf("%s_then_%s", first, second), func(t *testing.T) {
				s := flyingState(t)
				res := evaluate(s)

				require.NoError(t, s.SetMode(first, true, res))
				require.NoError(t, s.SetMode(second, true, res))

				assert.True(t, s.Active(second))
				assert.False(t, s.Active(first), "enabling %s must clear %s", second, first)

				active := 0
				for _, m := range modes {
					if s.Active(m) {
						active++
					}
				}
				assert.Equal(t, 1, active)
			})
		}
	}
}

func TestModeDisableIsUnconditional(t *testing.T) {
	s := flyingState(t)
	res := evaluate(s)

	require.NoError(t, s.SetMode(ModeAutoland, true, res))
	require.True(t, s.Autoland)

	// Disabling works regardless of altitude or lift.
	s.Altitude = 0
	s.Velocity = 0
	require.NoError(t, s.SetMode(ModeAutoland, false, evaluate(s)))
	assert.False(t, s.Autoland)
	assert.Equal(t, PhaseInactive, s.LandingPhase)
}

func TestAutolandActivationPrecondition(t *testing.T) {
	s := NewState() // parked: not flying, altitude 0
	res := evaluate(s)

	err := s.SetMode(ModeAutoland, true, res)
	require.ErrorIs(t, err, ErrNotFlyable)
	assert.False(t, s.Autoland)

	// Above the surface it may engage even without lift (glide down).
	s.Altitude = 100
	require.NoError(t, s.SetMode(ModeAutoland, true, evaluate(s)))
	assert.True(t, s.Autoland)
}

func TestEnablingModeResetsLandingSubState(t *testing.T) {
	s := flyingState(t)
	res := evaluate(s)

	require.NoError(t, s.SetMode(ModeAutoland, true, res))
	s.stepAutoland(res)
	require.Equal(t, PhaseGlideslope, s.LandingPhase)

	require.NoError(t, s.SetMode(ModeMission, true, res))
	assert.Equal(t, PhaseInactive, s.LandingPhase, "in-progress landing state resets")
	assert.False(t, s.Autoland)
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"altitude-hold", "autoland", "mission"} {
		m, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, Mode(name), m)
	}
	_, err := ParseMode("hover")
	assert.Error(t, err)
}

func TestActiveModesReportsMissionHoldCombination(t *testing.T) {
	s := flyingState(t)
	res := evaluate(s)

	require.NoError(t, s.SetMode(ModeMission, true, res))

	// The cruise segment force-enables the hold flag internally.
	s.Altitude = MissionCeiling
	s.StepMission(evaluate(s))

	assert.ElementsMatch(t, []Mode{ModeAltitudeHold, ModeMission}, s.ActiveModes())
}
