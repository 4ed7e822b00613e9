// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package wait

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/juju/waitfor/params"
	"github.com/juju/waitfor/status"
)

// StatusSource supplies status snapshots on demand. api.Client
// implements this over the controller connection.
type StatusSource interface {
	FullStatus(ctx context.Context, patterns []string) (*params.FullStatus, error)
}

const (
	defaultInterval = 5 * time.Second
	defaultTimeout  = 10 * time.Minute
)

// WaitConfig holds everything one Wait invocation needs.
type WaitConfig struct {
	// Source yields status snapshots.
	Source StatusSource

	// Apps is the set of application names to wait on.
	Apps []string

	// WaitForUnits is the minimum ready unit count per application.
	WaitForUnits int

	// WaitForExactUnits, when non-nil, is the exact ready unit count
	// required per application.
	WaitForExactUnits *int

	// IdlePeriod is how long units must stay idle before the wait can
	// be satisfied.
	IdlePeriod time.Duration

	// WorkloadStatus, if non-empty, is the workload status units must
	// report to count as ready.
	WorkloadStatus status.Status

	// RaiseOnError aborts the wait when an in-scope machine, agent,
	// workload or application reports an error status.
	RaiseOnError bool

	// RaiseOnBlocked aborts the wait when an in-scope workload or
	// application reports a blocked status.
	RaiseOnBlocked bool

	// Interval is the pause between snapshots. Defaults to 5s.
	Interval time.Duration

	// Timeout bounds the whole wait. Zero means the default of 10m;
	// negative means no timeout.
	Timeout time.Duration

	// Clock defaults to clock.WallClock.
	Clock clock.Clock
}

// Wait polls the source until every application in cfg.Apps satisfies
// the readiness requirements continuously for the idle period. It
// returns nil on convergence, a timeout error when cfg.Timeout
// elapses, the context's error on cancellation, or the first typed
// error a snapshot raises.
func Wait(ctx context.Context, cfg WaitConfig) error {
	if cfg.Source == nil {
		return errors.NotValidf("nil Source")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	loop, err := NewLoop(LoopConfig{
		Apps:              cfg.Apps,
		WaitForUnits:      cfg.WaitForUnits,
		WaitForExactUnits: cfg.WaitForExactUnits,
		IdlePeriod:        cfg.IdlePeriod,
		Clock:             clk,
	})
	if err != nil {
		return errors.Trace(err)
	}
	checkArgs := CheckArgs{
		Apps:           cfg.Apps,
		RaiseOnError:   cfg.RaiseOnError,
		RaiseOnBlocked: cfg.RaiseOnBlocked,
		WorkloadStatus: cfg.WorkloadStatus,
	}

	var expired <-chan time.Time
	if timeout > 0 {
		expired = clk.After(timeout)
	}
	for {
		fullStatus, err := cfg.Source.FullStatus(ctx, nil)
		if err != nil {
			return errors.Annotate(err, "getting status")
		}
		result, err := Check(fullStatus, checkArgs)
		if err != nil {
			return errors.Trace(err)
		}
		if loop.Next(result) {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		case <-expired:
			return errors.Timeoutf("waiting for %v to settle", cfg.Apps)
		case <-clk.After(interval):
		}
	}
}
