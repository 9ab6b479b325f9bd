// Package probe runs startup checks before the server accepts traffic:
// embedded assets that should exist, LLM providers that are configured
// but unreachable.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// checkTimeout bounds a single check so one slow provider cannot stall
// startup.
const checkTimeout = 5 * time.Second

// CheckFunc performs one health check. nil means the check passed.
type CheckFunc func(ctx context.Context) error

// Probe is a single startup check. Critical failures abort startup,
// non-critical ones only log.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool
}

// Result is the outcome of one probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes the probes in order and collects their results. Each
// check gets its own timeout even under a long-lived parent context.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
	}

	return results
}

// AnalyzeResults logs a summary of all results and returns the joined
// errors of the failed critical probes, nil when startup may proceed.
func AnalyzeResults(results []Result) error {
	var critical []error

	slog.Info("Startup Checks Summary")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error == nil {
			slog.Info(msg)
			continue
		}

		slog.Error(msg, "error", r.Error)
		if r.Probe.Critical {
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		}
	}

	return errors.Join(critical...)
}
