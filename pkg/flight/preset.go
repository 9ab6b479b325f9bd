package flight

import (
	"fmt"
	"sort"

	"liftlab/pkg/aero"
)

// Preset is a named aircraft configuration. Applying a preset replaces the
// aircraft parameters but leaves session accumulators and mode flags alone.
type Preset struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Weight        float64       `json:"weight"`
	WingSpan      float64       `json:"wingSpan"`
	ChordLength   float64       `json:"chordLength"`
	AngleOfAttack float64       `json:"angleOfAttack"`
	WingType      aero.WingType `json:"wingType"`
}

// Apply writes the preset's aircraft parameters into the state and brings
// the aircraft to a standstill.
func (p Preset) Apply(s *State) {
	s.Weight = p.Weight
	s.WingSpan = p.WingSpan
	s.ChordLength = p.ChordLength
	s.AngleOfAttack = p.AngleOfAttack
	s.WingType = p.WingType
	s.Velocity = 0
	s.HeadWind = 0
}

var presets = map[string]Preset{
	"airbus": {
		Name:          "airbus",
		Description:   "Four-engine heavy airliner",
		Weight:        575000,
		WingSpan:      79.75,
		ChordLength:   10.6,
		AngleOfAttack: 4,
		WingType:      aero.WingAirbus,
	},
	"trainer": {
		Name:          "trainer",
		Description:   "Single-engine light trainer",
		Weight:        1100,
		WingSpan:      11,
		ChordLength:   1.5,
		AngleOfAttack: 4,
		WingType:      aero.WingFlatBottom,
	},
	"fighter": {
		Name:          "fighter",
		Description:   "Supersonic interceptor",
		Weight:        19700,
		WingSpan:      13.05,
		ChordLength:   4.9,
		AngleOfAttack: 2,
		WingType:      aero.WingThin,
	},
	"glider": {
		Name:          "glider",
		Description:   "High-aspect-ratio sailplane",
		Weight:        600,
		WingSpan:      18,
		ChordLength:   0.9,
		AngleOfAttack: 5,
		WingType:      aero.WingCambered,
	},
	"stealth": {
		Name:          "stealth",
		Description:   "Low-observable strike aircraft",
		Weight:        23800,
		WingSpan:      13.2,
		ChordLength:   5.2,
		AngleOfAttack: 3,
		WingType:      aero.WingStealth,
	},
}

// DefaultPreset returns the airliner configuration every new session
// starts from.
func DefaultPreset() Preset {
	return presets["airbus"]
}

// PresetByName looks up a preset.
func PresetByName(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}

// Presets returns all presets sorted by name, default first.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == "airbus" {
			return true
		}
		if out[j].Name == "airbus" {
			return false
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MatchPreset reports which preset the state's airframe parameters came
// from, if any. Angle of attack and speeds are ignored: they move during
// flight without changing the aircraft.
func MatchPreset(s *State) (string, bool) {
	for name, p := range presets {
		if nearly(s.Weight, p.Weight) &&
			nearly(s.WingSpan, p.WingSpan) &&
			nearly(s.ChordLength, p.ChordLength) &&
			s.WingType == p.WingType {
			return name, true
		}
	}
	return "", false
}

func nearly(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
