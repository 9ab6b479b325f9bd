package engine

import (
	"time"

	"liftlab/pkg/aero"
	"liftlab/pkg/flight"
)

// Snapshot is the immutable per-tick view published to subscribers and
// returned by state queries. Results are the model outputs evaluated at
// the start of the tick, State the values after integration and autopilot
// correction.
type Snapshot struct {
	Seq           uint64              `json:"seq"`
	Time          time.Time           `json:"time"`
	State         flight.State        `json:"state"`
	Results       aero.Results        `json:"results"`
	AirDensity    float64             `json:"airDensity"`
	VerticalSpeed float64             `json:"verticalSpeed"`
	Stage         string              `json:"stage"`
	StageTitle    string              `json:"stageTitle"`
	MissionPhase  flight.MissionPhase `json:"missionPhase,omitempty"`
	StallWarning  bool                `json:"stallWarning"`
	Paused        bool                `json:"paused"`
	Zoom          float64             `json:"zoom"`
}
