package engine

import (
	"liftlab/pkg/aero"
	"liftlab/pkg/flight"
)

// CommandType discriminates engine commands.
type CommandType string

const (
	CmdSetParams   CommandType = "set_params"
	CmdApplyPreset CommandType = "apply_preset"
	CmdSetMode     CommandType = "set_mode"
	CmdPause       CommandType = "pause"
	CmdResume      CommandType = "resume"
	CmdReset       CommandType = "reset"
	CmdSetZoom     CommandType = "set_zoom"
)

// Command is a state mutation applied by the engine loop between ticks.
type Command interface {
	Type() CommandType
}

// ParamPatch is a partial update to the user-adjustable parameters. Nil
// fields are left untouched. Fields owned by an active autopilot mode are
// rejected for the whole patch.
type ParamPatch struct {
	Weight        *float64
	WingSpan      *float64
	ChordLength   *float64
	Velocity      *float64
	HeadWind      *float64
	AngleOfAttack *float64
	WingType      *aero.WingType
}

// SetParamsCommand applies a parameter patch.
type SetParamsCommand struct {
	Patch ParamPatch
}

func (SetParamsCommand) Type() CommandType { return CmdSetParams }

// ApplyPresetCommand loads a named aircraft preset.
type ApplyPresetCommand struct {
	Name string
}

func (ApplyPresetCommand) Type() CommandType { return CmdApplyPreset }

// SetModeCommand toggles an autopilot mode.
type SetModeCommand struct {
	Mode flight.Mode
	On   bool
}

func (SetModeCommand) Type() CommandType { return CmdSetMode }

// PauseCommand freezes the simulation clock.
type PauseCommand struct{}

func (PauseCommand) Type() CommandType { return CmdPause }

// ResumeCommand releases a pause. The next tick integrates with dt = 0 so
// the time spent paused never enters the simulation.
type ResumeCommand struct{}

func (ResumeCommand) Type() CommandType { return CmdResume }

// ResetCommand restores the default preset and zeroes the session.
type ResetCommand struct{}

func (ResetCommand) Type() CommandType { return CmdReset }

// SetZoomCommand adjusts the view zoom factor consumed by the renderer.
type SetZoomCommand struct {
	Factor float64
}

func (SetZoomCommand) Type() CommandType { return CmdSetZoom }
