// Package main provides a headless scripted flight for exercising the
// simulation core without the server: auto-mission takeoff to cruise,
// a cruise hold, then autoland to a standstill, with a trace table on
// stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liftlab/pkg/engine"
	"liftlab/pkg/flight"
)

var (
	presetName = flag.String("preset", "", "Preset to load before the flight (empty keeps the default)")
	tickRate   = flag.Float64("rate", 60, "Integration rate in ticks per second")
	printEvery = flag.Duration("print", 5*time.Second, "Simulated time between trace rows")
	cruiseHold = flag.Duration("cruise", 30*time.Second, "Simulated time to hold cruise before landing")
	maxSimTime = flag.Duration("max", 30*time.Minute, "Simulated time cap before giving up")
)

// consoleRecorder prints engine events inline with the trace table.
type consoleRecorder struct{}

func (consoleRecorder) Record(kind, message string) {
	fmt.Printf("%10s [%s] %s\n", "", kind, message)
}

func main() {
	flag.Parse()

	if *tickRate <= 0 {
		fmt.Fprintf(os.Stderr, "ERROR: rate must be positive, got %v\n", *tickRate)
		os.Exit(1)
	}

	fmt.Println("LiftLab Scripted Flight - Mission + Autoland")
	fmt.Println("============================================")

	// Engine events go through the recorder; the slog side is noise here.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	core := engine.NewCore(consoleRecorder{}, quiet)

	if *presetName != "" {
		if err := core.Apply(engine.ApplyPresetCommand{Name: *presetName}); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}
	if err := core.Apply(engine.SetModeCommand{Mode: flight.ModeMission, On: true}); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to engage mission mode: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if ok := fly(core, sigChan); !ok {
		os.Exit(1)
	}
}

// fly drives the core on a simulated clock until the aircraft has landed
// and stopped, the time cap expires, or a signal arrives. Returns false
// when the flight did not complete.
func fly(core *engine.Core, sigChan chan os.Signal) bool {
	var (
		start        = time.Now()
		tick         = time.Duration(float64(time.Second) / *tickRate)
		dt           = tick.Seconds()
		missionEvery = flight.MissionTickIntervalMs * time.Millisecond

		simTime      time.Duration
		sinceMission time.Duration
		sincePrint   = *printEvery // first row immediately
		cruiseSince  time.Duration
		landing      bool
	)

	fmt.Printf("%10s %-10s %-10s %9s %8s %8s %6s %10s\n",
		"T+", "STAGE", "PHASE", "ALT m", "VEL m/s", "VS m/s", "AOA", "LIFT kN")

	for simTime < *maxSimTime {
		select {
		case <-sigChan:
			fmt.Println("\nInterrupted.")
			return false
		default:
		}

		simTime += tick
		now := start.Add(simTime)

		sinceMission += tick
		for sinceMission >= missionEvery {
			core.StepMission(now)
			sinceMission -= missionEvery
		}

		snap := core.Step(now, dt)
		st := snap.State

		sincePrint += tick
		if sincePrint >= *printEvery {
			sincePrint = 0
			printRow(simTime, snap)
		}

		// Script: hold cruise for the configured time, then land.
		if !landing {
			if st.AutoMission && snap.MissionPhase == flight.MissionCruise && st.Velocity > 0.95*flight.CruiseSpeed {
				cruiseSince += tick
			}
			if cruiseSince >= *cruiseHold {
				if err := core.Apply(engine.SetModeCommand{Mode: flight.ModeAutoland, On: true}); err != nil {
					fmt.Fprintf(os.Stderr, "ERROR: failed to engage autoland: %v\n", err)
					return false
				}
				landing = true
			}
			continue
		}

		// Autoland clears itself once braking reaches a standstill.
		if !st.Autoland && st.OnGround() && st.Velocity == 0 {
			printRow(simTime, snap)
			fmt.Println()
			fmt.Printf("Flight complete at T+%s: %.1f km over %.0f s of flight.\n",
				formatSimTime(simTime), st.DistanceTraveled/1000, st.FlightTime)
			return true
		}
	}

	fmt.Fprintf(os.Stderr, "ERROR: flight did not complete within %v of simulated time\n", *maxSimTime)
	return false
}

func printRow(simTime time.Duration, snap engine.Snapshot) {
	st := snap.State
	phase := string(snap.MissionPhase)
	if st.Autoland {
		phase = string(st.LandingPhase)
	}
	fmt.Printf("%10s %-10s %-10s %9.0f %8.1f %8.1f %5.1f° %10.0f\n",
		formatSimTime(simTime), snap.Stage, phase,
		st.Altitude, st.Velocity, snap.VerticalSpeed,
		st.AngleOfAttack, snap.Results.LiftForce/1000)
}

func formatSimTime(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
