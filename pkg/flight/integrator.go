package flight

import (
	"math"

	"liftlab/pkg/aero"
)

const (
	// minMassDamping floors the inertia proxy so very light aircraft do
	// not produce explosive climb rates.
	minMassDamping     = 10000.0
	massDampingDivisor = 25.0

	// MissionCeiling is the altitude clamp applied while auto-mission is
	// active (m).
	MissionCeiling = 10000.0
)

// MassDamping is the empirical inertia proxy dividing net force into a
// climb rate.
func MassDamping(weight float64) float64 {
	return math.Max(minMassDamping, weight/massDampingDivisor)
}

// ClimbRate converts the current force balance into a vertical rate (m/s).
func ClimbRate(res aero.Results, weight float64) float64 {
	return (res.LiftForce - res.WeightForce) / MassDamping(weight)
}

// Integrate advances altitude, ground distance and flight time by dt
// seconds using the model results computed for this tick. dt of zero is a
// valid no-op (first tick after resume). Altitude never goes negative;
// while auto-mission is active it is additionally capped at the mission
// ceiling. Flight time only accumulates while the aircraft is moving or
// airborne.
func (s *State) Integrate(res aero.Results, dt float64) {
	if dt < 0 {
		dt = 0
	}

	s.Altitude += ClimbRate(res, s.Weight) * dt
	if s.Altitude < 0 {
		s.Altitude = 0
	}
	if s.AutoMission && s.Altitude > MissionCeiling {
		s.Altitude = MissionCeiling
	}

	s.DistanceTraveled += s.Velocity * dt

	if s.Velocity > 0 || res.IsFlying {
		s.FlightTime += dt
	}
}
