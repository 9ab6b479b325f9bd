package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support extended units (d, w) in YAML/JSON.
type Duration time.Duration

// Common durations.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ParseDuration parses a duration string, supporting d and w on top of
// the standard units. Strings without d/w go through time.ParseDuration
// so composites like "2h45m" keep their stdlib semantics.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if strings.ContainsAny(s, "dw") {
		return parseExtendedDuration(s)
	}

	return time.ParseDuration(s)
}

var unitMap = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  Day,
	"w":  Week,
}

func parseExtendedDuration(s string) (time.Duration, error) {
	var total time.Duration

	re := regexp.MustCompile(`([0-9.]+)([a-zµ]+)`)
	matches := re.FindAllStringSubmatch(s, -1)

	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	for _, match := range matches {
		valStr := match[1]
		unitStr := match[2]

		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in duration: %s", valStr)
		}

		base, ok := unitMap[unitStr]
		if !ok {
			return 0, fmt.Errorf("unknown unit: %s", unitStr)
		}

		total += time.Duration(val * float64(base))
	}

	return total, nil
}

// Speed represents a speed in meters per second.
type Speed float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Speed) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		// Try decoding as number (if user just wrote 10)
		var f float64
		if errNum := value.Decode(&f); errNum == nil {
			*v = Speed(f)
			return nil
		}
		return err
	}

	spd, err := ParseSpeed(s)
	if err != nil {
		return err
	}
	*v = Speed(spd)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Speed) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("%.2fm/s", float64(v)), nil
}

// ParseSpeed parses a speed string in m/s, km/h or kt. Unitless values
// are taken as m/s.
func ParseSpeed(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	var mult float64
	var numStr string

	switch {
	case strings.HasSuffix(s, "km/h"):
		mult = 1.0 / 3.6
		numStr = strings.TrimSuffix(s, "km/h")
	case strings.HasSuffix(s, "kph"):
		mult = 1.0 / 3.6
		numStr = strings.TrimSuffix(s, "kph")
	case strings.HasSuffix(s, "m/s"):
		mult = 1
		numStr = strings.TrimSuffix(s, "m/s")
	case strings.HasSuffix(s, "kts"):
		mult = 0.514444
		numStr = strings.TrimSuffix(s, "kts")
	case strings.HasSuffix(s, "kt"):
		mult = 0.514444
		numStr = strings.TrimSuffix(s, "kt")
	default:
		mult = 1
		numStr = s
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid speed number: %w", err)
	}

	return val * mult, nil
}
