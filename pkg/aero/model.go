// Package aero implements the simplified thin-airfoil aerodynamic model:
// instantaneous lift, drag and takeoff-speed figures derived from wing
// geometry, airspeed and air density. All functions are pure; the package
// holds no state.
package aero

import "math"

const (
	// StallOnset is the angle of attack (degrees) above which lift decays.
	StallOnset = 16.0
	// stallDecayPerDeg is the lift fraction lost per degree past stall onset.
	stallDecayPerDeg = 0.2

	// minFlyingAirspeed is the airspeed below which the aircraft is never
	// considered flying, regardless of computed lift.
	minFlyingAirspeed = 25.0

	// highSpeedDragRatio applies above transonicAirspeed, lowSpeedDragRatio
	// below. Drag is modeled as a fixed fraction of lift.
	transonicAirspeed = 250.0
	highSpeedDragRatio = 0.15
	lowSpeedDragRatio  = 0.05

	// Flow visualization: speed multiples over and under the wing surface.
	topFlowFactor    = 1.2
	bottomFlowFactor = 0.8
)

// Inputs are the parameters the model evaluates. AngleOfAttack is in
// degrees; all speeds in m/s, masses in kg, lengths in m, density in kg/m³.
type Inputs struct {
	Weight        float64
	WingSpan      float64
	ChordLength   float64
	Velocity      float64
	HeadWind      float64
	AngleOfAttack float64
	WingType      WingType
	AirDensity    float64
}

// Results holds everything the model derives in one evaluation. Forces in
// newtons, speeds in m/s, pressures in Pa. RequiredTakeoffSpeed may be
// negative when the headwind exceeds the requirement; display layers clamp
// it to zero.
type Results struct {
	WingArea             float64 `json:"wingArea"`
	LiftCoefficient      float64 `json:"liftCoefficient"`
	TotalAirspeed        float64 `json:"totalAirspeed"`
	LiftForce            float64 `json:"liftForce"`
	DragForce            float64 `json:"dragForce"`
	WeightForce          float64 `json:"weightForce"`
	RequiredTakeoffSpeed float64 `json:"requiredTakeoffSpeed"`
	IsFlying             bool    `json:"isFlying"`
	VelocityTop          float64 `json:"velocityTop"`
	VelocityBottom       float64 `json:"velocityBottom"`
	PressureTop          float64 `json:"pressureTop"`
	PressureBottom       float64 `json:"pressureBottom"`
}

// LiftCoefficient returns the thin-airfoil lift coefficient for the given
// angle of attack (degrees) and wing type: 2π·α plus the wing's baseline
// offset, with a linear post-stall decay past the critical angle. Never
// negative.
func LiftCoefficient(angleOfAttackDeg float64, wt WingType) float64 {
	cl := 2*math.Pi*(angleOfAttackDeg*math.Pi/180) + wt.BaseLiftCoefficient()
	if angleOfAttackDeg > StallOnset {
		decay := 1 - (angleOfAttackDeg-StallOnset)*stallDecayPerDeg
		if decay < 0 {
			decay = 0
		}
		cl *= decay
	}
	if cl < 0 {
		cl = 0
	}
	return cl
}

// AngleOfAttackFor inverts the pre-stall lift-coefficient formula: the
// angle of attack (degrees) at which the wing produces the requested
// coefficient. Used by the altitude-hold control law; the caller clamps
// the result to its authority range.
func AngleOfAttackFor(cl float64, wt WingType) float64 {
	return (cl - wt.BaseLiftCoefficient()) / (2 * math.Pi) * 180 / math.Pi
}

// Compute evaluates the model. Pure and deterministic: equal Inputs yield
// equal Results.
func Compute(in Inputs) Results {
	area := in.WingSpan * in.ChordLength
	cl := LiftCoefficient(in.AngleOfAttack, in.WingType)
	tas := in.Velocity + in.HeadWind

	dynamicPressure := 0.5 * in.AirDensity * tas * tas
	lift := dynamicPressure * area * cl

	dragRatio := lowSpeedDragRatio
	if tas > transonicAirspeed {
		dragRatio = highSpeedDragRatio
	}

	weightForce := in.Weight * StandardGravity

	// The floored coefficient keeps the takeoff-speed root finite for
	// zero-lift wings.
	reqSpeed := math.Sqrt(2*weightForce/(in.AirDensity*area*math.Max(0.1, cl))) - in.HeadWind

	vTop := tas * topFlowFactor
	vBottom := tas * bottomFlowFactor

	return Results{
		WingArea:             area,
		LiftCoefficient:      cl,
		TotalAirspeed:        tas,
		LiftForce:            lift,
		DragForce:            lift * dragRatio,
		WeightForce:          weightForce,
		RequiredTakeoffSpeed: reqSpeed,
		IsFlying:             lift > weightForce && tas > minFlyingAirspeed,
		VelocityTop:          vTop,
		VelocityBottom:       vBottom,
		PressureTop:          -0.5 * in.AirDensity * (vTop*vTop - tas*tas),
		PressureBottom:       -0.5 * in.AirDensity * (vBottom*vBottom - tas*tas),
	}
}
