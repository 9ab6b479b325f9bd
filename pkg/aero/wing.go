package aero

import "fmt"

// WingType identifies the airfoil family of the simulated wing. Each type
// carries a baseline lift-coefficient offset at zero angle of attack.
type WingType string

const (
	WingSymmetric  WingType = "symmetric"
	WingCambered   WingType = "cambered"
	WingFlatBottom WingType = "flat-bottom"
	WingThin       WingType = "thin"
	WingAirbus     WingType = "airbus"
	WingStealth    WingType = "stealth"
)

// WingTypes lists all supported wing types in display order.
func WingTypes() []WingType {
	return []WingType{
		WingAirbus,
		WingCambered,
		WingFlatBottom,
		WingSymmetric,
		WingThin,
		WingStealth,
	}
}

// BaseLiftCoefficient returns the zero-alpha lift coefficient offset for
// the wing type. Cambered profiles (including the airliner wing) share the
// default camber offset.
func (w WingType) BaseLiftCoefficient() float64 {
	switch w {
	case WingSymmetric:
		return 0.0
	case WingFlatBottom:
		return 0.55
	case WingThin:
		return 0.15
	case WingStealth:
		return 0.12
	default:
		return 0.45
	}
}

// Valid reports whether the wing type is one of the supported values.
func (w WingType) Valid() bool {
	switch w {
	case WingSymmetric, WingCambered, WingFlatBottom, WingThin, WingAirbus, WingStealth:
		return true
	}
	return false
}

// ParseWingType validates a user-supplied wing type string.
func ParseWingType(s string) (WingType, error) {
	w := WingType(s)
	if !w.Valid() {
		return "", fmt.Errorf("unknown wing type %q", s)
	}
	return w, nil
}
