package aero

import "math"

// Standard atmosphere constants.
const (
	// StandardGravity is the standard acceleration of free fall (m/s²).
	StandardGravity = 9.80665

	// SeaLevelDensity is the ISA air density at mean sea level (kg/m³).
	SeaLevelDensity = 1.225

	// MinDensity floors the density model so force calculations stay
	// bounded at extreme altitudes.
	MinDensity = 0.35

	// densityLapse and densityExponent describe the ISA troposphere
	// density profile rho = rho0 * (1 - L*h)^n.
	densityLapse    = 2.25577e-5
	densityExponent = 4.256
)

// DensityAt returns the air density (kg/m³) at the given altitude (m)
// using the ISA troposphere power law, floored at MinDensity. Altitudes
// below sea level evaluate as sea level.
func DensityAt(altitudeM float64) float64 {
	if altitudeM < 0 {
		altitudeM = 0
	}
	base := 1 - densityLapse*altitudeM
	if base < 0 {
		return MinDensity
	}
	rho := SeaLevelDensity * math.Pow(base, densityExponent)
	if rho < MinDensity {
		return MinDensity
	}
	return rho
}
