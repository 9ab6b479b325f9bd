// Package engine drives the simulation: a single goroutine owns the
// mutable flight state and serializes ticks, commands and state queries
// onto one loop. Within a render tick the order is fixed: model
// evaluation, integration, autopilot correction. The auto-mission law
// runs on its own fixed-period timer, multiplexed onto the same loop so
// there is never more than one writer.
package engine

import (
	"context"
	"log/slog"
	"time"

	"liftlab/pkg/flight"
)

// Defaults for the two tick sources.
const (
	DefaultTickHz          = 60.0
	DefaultMissionInterval = 50 * time.Millisecond
)

type stateReq struct {
	reply chan Snapshot
}

type cmdReq struct {
	cmd   Command
	reply chan error
}

type subscribeReq struct {
	ch chan Snapshot
}

// Engine wraps a Core with the concurrent tick loop and its channels.
type Engine struct {
	core *Core

	cmdCh       chan cmdReq
	stateReqCh  chan stateReq
	subscribeCh chan subscribeReq
	unsubCh     chan chan Snapshot

	tickHz          float64
	missionInterval time.Duration
	log             *slog.Logger
}

// Config tunes the engine loop.
type Config struct {
	// TickHz is the render-synchronized integration rate.
	TickHz float64
	// MissionInterval is the fixed period of the auto-mission law.
	MissionInterval time.Duration
	// VSIWindow is the averaging window of the vertical speed indicator.
	VSIWindow time.Duration
	// Recorder receives simulation events; nil discards them.
	Recorder EventRecorder
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// New creates an engine with the default preset loaded. Run must be
// called for ticks and commands to be processed.
func New(cfg Config) *Engine {
	if cfg.TickHz <= 0 {
		cfg.TickHz = DefaultTickHz
	}
	if cfg.MissionInterval <= 0 {
		cfg.MissionInterval = DefaultMissionInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	core := NewCore(cfg.Recorder, cfg.Logger)
	if cfg.VSIWindow > 0 {
		core.vsi = flight.NewVerticalSpeedBuffer(cfg.VSIWindow)
	}
	return &Engine{
		core:            core,
		cmdCh:           make(chan cmdReq, 64),
		stateReqCh:      make(chan stateReq, 32),
		subscribeCh:     make(chan subscribeReq, 16),
		unsubCh:         make(chan chan Snapshot, 16),
		tickHz:          cfg.TickHz,
		missionInterval: cfg.MissionInterval,
		log:             cfg.Logger,
	}
}

// Do submits a command and waits for the loop to apply it.
func (e *Engine) Do(ctx context.Context, cmd Command) error {
	req := cmdReq{cmd: cmd, reply: make(chan error, 1)}
	select {
	case e.cmdCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetState returns the current snapshot without advancing the simulation.
func (e *Engine) GetState(ctx context.Context) (Snapshot, error) {
	req := stateReq{reply: make(chan Snapshot, 1)}
	select {
	case e.stateReqCh <- req:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Subscribe registers a snapshot feed. Slow consumers lose frames rather
// than stalling the loop. The returned func unsubscribes; the channel is
// closed by the engine.
func (e *Engine) Subscribe(ctx context.Context) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 32)
	select {
	case e.subscribeCh <- subscribeReq{ch: ch}:
	case <-ctx.Done():
		close(ch)
		return ch, func() {}
	}
	unsub := func() {
		select {
		case e.unsubCh <- ch:
		default:
		}
	}
	return ch, unsub
}

// Run executes the loop until ctx is canceled. The time reference for dt
// is invalidated while paused, so the first tick after resume integrates
// with dt = 0 instead of the wall-clock gap.
func (e *Engine) Run(ctx context.Context) error {
	tick := time.NewTicker(time.Duration(float64(time.Second) / e.tickHz))
	defer tick.Stop()
	mission := time.NewTicker(e.missionInterval)
	defer mission.Stop()

	subs := map[chan Snapshot]struct{}{}
	var lastTick time.Time

	publish := func(snap Snapshot) {
		for ch := range subs {
			select {
			case ch <- snap:
			default:
				// slow subscriber, drop the frame
			}
		}
	}

	e.log.Info("engine started", "tickHz", e.tickHz, "missionInterval", e.missionInterval)

	for {
		select {
		case <-ctx.Done():
			for ch := range subs {
				close(ch)
			}
			e.log.Info("engine stopped")
			return ctx.Err()

		case req := <-e.subscribeCh:
			subs[req.ch] = struct{}{}
			req.ch <- e.core.Snapshot(time.Now())

		case ch := <-e.unsubCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case req := <-e.stateReqCh:
			req.reply <- e.core.Snapshot(time.Now())

		case req := <-e.cmdCh:
			err := e.core.Apply(req.cmd)
			if req.cmd.Type() == CmdPause {
				lastTick = time.Time{}
			}
			req.reply <- err

		case t := <-tick.C:
			if e.core.Paused() {
				continue
			}
			var dt float64
			if !lastTick.IsZero() {
				dt = t.Sub(lastTick).Seconds()
			}
			lastTick = t
			publish(e.core.Step(t, dt))

		case t := <-mission.C:
			if e.core.Paused() {
				continue
			}
			e.core.StepMission(t)
		}
	}
}
