package flight

import (
	"errors"
	"fmt"

	"liftlab/pkg/aero"
)

// Mode identifies one of the three autopilot policies.
type Mode string

const (
	ModeAltitudeHold Mode = "altitude-hold"
	ModeAutoland     Mode = "autoland"
	ModeMission      Mode = "mission"
)

// ErrNotFlyable is returned when autoland is requested on the ground with
// no lift available; engaging it there would do nothing useful.
var ErrNotFlyable = errors.New("autoland requires the aircraft to be flying or above the surface")

// ParseMode validates a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAltitudeHold, ModeAutoland, ModeMission:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown autopilot mode %q", s)
}

// Active reports whether the given mode flag is set.
func (s *State) Active(m Mode) bool {
	switch m {
	case ModeAltitudeHold:
		return s.AltitudeHold
	case ModeAutoland:
		return s.Autoland
	case ModeMission:
		return s.AutoMission
	}
	return false
}

// SetMode toggles an autopilot mode. Enabling one disables the other two
// and resets any in-progress landing sub-state; disabling is unconditional
// and immediate. res must be the model results of the current tick; they
// gate autoland activation (cannot engage while grounded without lift).
func (s *State) SetMode(m Mode, on bool, res aero.Results) error {
	if !on {
		switch m {
		case ModeAltitudeHold:
			s.AltitudeHold = false
		case ModeAutoland:
			s.Autoland = false
			s.LandingPhase = PhaseInactive
		case ModeMission:
			s.AutoMission = false
		default:
			return fmt.Errorf("unknown autopilot mode %q", m)
		}
		return nil
	}

	switch m {
	case ModeAltitudeHold:
		s.AltitudeHold = true
		s.Autoland = false
		s.AutoMission = false
	case ModeAutoland:
		if !res.IsFlying && s.Altitude <= 0 {
			return ErrNotFlyable
		}
		s.Autoland = true
		s.AltitudeHold = false
		s.AutoMission = false
	case ModeMission:
		s.AutoMission = true
		s.AltitudeHold = false
		s.Autoland = false
	default:
		return fmt.Errorf("unknown autopilot mode %q", m)
	}
	if !s.Autoland {
		s.LandingPhase = PhaseInactive
	}
	return nil
}

// ActiveModes returns the names of the currently set mode flags. At most
// one user-toggled mode is active, but the mission law may have switched
// altitude hold on internally, so two flags can be set at once.
func (s *State) ActiveModes() []Mode {
	var out []Mode
	if s.AltitudeHold {
		out = append(out, ModeAltitudeHold)
	}
	if s.Autoland {
		out = append(out, ModeAutoland)
	}
	if s.AutoMission {
		out = append(out, ModeMission)
	}
	return out
}
