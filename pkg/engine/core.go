package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"liftlab/pkg/aero"
	"liftlab/pkg/flight"
	"liftlab/pkg/logging"
)

// Zoom factor bounds for the flow rendering.
const (
	MinZoom     = 0.25
	MaxZoom     = 4.0
	DefaultZoom = 1.0
)

// ErrParamOwned is returned when a patch touches a parameter currently
// driven by an active autopilot mode.
var ErrParamOwned = errors.New("parameter is controlled by an active autopilot mode")

// EventRecorder receives notable simulation events (stage transitions,
// mode changes). Implementations must be cheap; Record is called from the
// tick path.
type EventRecorder interface {
	Record(kind, message string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string) {}

// Core is the deterministic heart of the engine: the simulation state plus
// the fixed-step transition function. It is not safe for concurrent use;
// the Engine serializes access by owning a Core inside its loop, and tests
// drive one directly with explicit dt values.
type Core struct {
	state *flight.State
	stage *flight.StageMachine
	vsi   *flight.VerticalSpeedBuffer

	zoom   float64
	paused bool
	seq    uint64

	lastDensity float64
	lastResults aero.Results
	lastMission flight.MissionPhase

	rec EventRecorder
	log *slog.Logger
}

// NewCore creates a core with the default preset loaded and evaluates the
// model once so queries before the first tick see consistent figures.
func NewCore(rec EventRecorder, log *slog.Logger) *Core {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Core{
		state: flight.NewState(),
		stage: flight.NewStageMachine(),
		vsi:   flight.NewVerticalSpeedBuffer(3 * time.Second),
		zoom:  DefaultZoom,
		rec:   rec,
		log:   log,
	}
	c.evaluate()
	return c
}

// evaluate refreshes the cached model results for the current state.
func (c *Core) evaluate() {
	c.lastDensity = aero.DensityAt(c.state.Altitude)
	c.lastResults = aero.Compute(c.state.AeroInputs(c.lastDensity))
}

// Paused reports whether the simulation clock is frozen.
func (c *Core) Paused() bool { return c.paused }

// State returns a copy of the current flight state.
func (c *Core) State() flight.State { return *c.state }

// Step advances the simulation by dt seconds: model evaluation, numeric
// integration, then autopilot correction, in that order, all using the
// density and forces computed at the start of the tick. now drives the
// stage machine and the vertical-speed window. Returns the published
// snapshot.
func (c *Core) Step(now time.Time, dt float64) Snapshot {
	c.evaluate()
	res := c.lastResults

	c.state.Integrate(res, dt)

	wasLanding := c.state.Autoland
	c.state.StepAutopilot(res, c.lastDensity)
	if wasLanding && !c.state.Autoland {
		c.rec.Record("mode", "autoland complete, aircraft stopped")
		c.log.Info("autoland complete")
	}

	vs := c.vsi.Update(now, c.state.Altitude)

	prev := c.stage.Current()
	stage := c.stage.Update(now, flight.StageSample{
		OnGround:      c.state.OnGround(),
		Velocity:      c.state.Velocity,
		VerticalSpeed: vs,
		IsFlying:      res.IsFlying,
	})
	if stage != prev && prev != "" {
		c.rec.Record("stage", flight.FormatStage(stage))
		c.log.Info("flight stage changed", "from", prev, "to", stage)
	}

	c.seq++
	logging.Trace(c.log, "tick",
		"seq", c.seq,
		"stage", stage,
		"alt", c.state.Altitude,
		"vel", c.state.Velocity,
		"vs", vs,
		"lift", res.LiftForce)
	return c.snapshot(now, vs, stage)
}

// StepMission advances the fixed-period mission law by one tick. Called
// from the mission timer, never from the render path.
func (c *Core) StepMission(now time.Time) {
	if !c.state.AutoMission {
		return
	}
	c.evaluate()
	c.state.StepMission(c.lastResults)

	phase := c.state.MissionPhaseNow()
	if phase != c.lastMission {
		c.rec.Record("mission", string(phase))
		c.log.Info("mission phase changed", "phase", phase)
		c.lastMission = phase
	}
}

// Snapshot returns the current view without advancing the simulation.
func (c *Core) Snapshot(now time.Time) Snapshot {
	return c.snapshot(now, 0, c.stage.Current())
}

func (c *Core) snapshot(now time.Time, vs float64, stage string) Snapshot {
	snap := Snapshot{
		Seq:           c.seq,
		Time:          now,
		State:         *c.state,
		Results:       c.lastResults,
		AirDensity:    c.lastDensity,
		VerticalSpeed: vs,
		Stage:         stage,
		StageTitle:    flight.FormatStage(stage),
		StallWarning:  c.state.AngleOfAttack > aero.StallOnset,
		Paused:        c.paused,
		Zoom:          c.zoom,
	}
	if c.state.AutoMission {
		snap.MissionPhase = c.state.MissionPhaseNow()
	}
	return snap
}

// Apply executes a command against the state. Called by the engine loop
// between ticks so every mutation observes the same-tick ordering
// guarantee.
func (c *Core) Apply(cmd Command) error {
	switch cm := cmd.(type) {
	case SetParamsCommand:
		return c.applyPatch(cm.Patch)

	case ApplyPresetCommand:
		p, err := flight.PresetByName(cm.Name)
		if err != nil {
			return err
		}
		p.Apply(c.state)
		c.evaluate()
		c.rec.Record("sim", fmt.Sprintf("preset %s loaded", p.Name))
		return nil

	case SetModeCommand:
		c.evaluate()
		if err := c.state.SetMode(cm.Mode, cm.On, c.lastResults); err != nil {
			return err
		}
		if cm.On {
			c.rec.Record("mode", fmt.Sprintf("%s engaged", cm.Mode))
		} else {
			c.rec.Record("mode", fmt.Sprintf("%s disengaged", cm.Mode))
		}
		if cm.Mode == flight.ModeMission {
			c.lastMission = ""
		}
		return nil

	case PauseCommand:
		if !c.paused {
			c.paused = true
			c.rec.Record("sim", "paused")
		}
		return nil

	case ResumeCommand:
		if c.paused {
			c.paused = false
			c.rec.Record("sim", "resumed")
		}
		return nil

	case ResetCommand:
		c.state.Reset()
		c.stage.Reset()
		c.vsi.Reset()
		c.zoom = DefaultZoom
		c.evaluate()
		c.rec.Record("sim", "session reset")
		return nil

	case SetZoomCommand:
		if cm.Factor < MinZoom || cm.Factor > MaxZoom {
			return fmt.Errorf("zoom %.2f outside [%.2f, %.2f]", cm.Factor, MinZoom, MaxZoom)
		}
		c.zoom = cm.Factor
		return nil
	}
	return fmt.Errorf("unknown command %T", cmd)
}

func (c *Core) applyPatch(p ParamPatch) error {
	anyMode := c.state.AltitudeHold || c.state.Autoland || c.state.AutoMission
	throttleOwned := c.state.Autoland || c.state.AutoMission

	if p.AngleOfAttack != nil && anyMode {
		return fmt.Errorf("angleOfAttack: %w", ErrParamOwned)
	}
	if p.Velocity != nil && throttleOwned {
		return fmt.Errorf("velocity: %w", ErrParamOwned)
	}

	// Validate the whole patch before touching anything so a rejected
	// request never half-applies.
	if p.Weight != nil && *p.Weight <= 0 {
		return fmt.Errorf("weight must be positive, got %.2f", *p.Weight)
	}
	if p.WingSpan != nil && *p.WingSpan <= 0 {
		return fmt.Errorf("wingSpan must be positive, got %.2f", *p.WingSpan)
	}
	if p.ChordLength != nil && *p.ChordLength <= 0 {
		return fmt.Errorf("chordLength must be positive, got %.2f", *p.ChordLength)
	}
	if p.Velocity != nil && (*p.Velocity < 0 || *p.Velocity > flight.MaxVelocity) {
		return fmt.Errorf("velocity must be within [0, %.0f], got %.2f", flight.MaxVelocity, *p.Velocity)
	}
	if p.HeadWind != nil && *p.HeadWind < 0 {
		return fmt.Errorf("headWind must be non-negative, got %.2f", *p.HeadWind)
	}
	if p.AngleOfAttack != nil && (*p.AngleOfAttack < flight.MinAngleOfAttack || *p.AngleOfAttack > flight.MaxAngleOfAttack) {
		return fmt.Errorf("angleOfAttack must be within [%.0f, %.0f], got %.2f",
			flight.MinAngleOfAttack, flight.MaxAngleOfAttack, *p.AngleOfAttack)
	}
	if p.WingType != nil && !p.WingType.Valid() {
		return fmt.Errorf("unknown wing type %q", *p.WingType)
	}

	if p.Weight != nil {
		c.state.Weight = *p.Weight
	}
	if p.WingSpan != nil {
		c.state.WingSpan = *p.WingSpan
	}
	if p.ChordLength != nil {
		c.state.ChordLength = *p.ChordLength
	}
	if p.Velocity != nil {
		c.state.Velocity = *p.Velocity
	}
	if p.HeadWind != nil {
		c.state.HeadWind = *p.HeadWind
	}
	if p.AngleOfAttack != nil {
		c.state.AngleOfAttack = *p.AngleOfAttack
	}
	if p.WingType != nil {
		c.state.WingType = *p.WingType
	}

	c.evaluate()
	return nil
}
