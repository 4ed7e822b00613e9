// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package wait

import (
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// LoopConfig holds the requirements one Loop instance evaluates.
type LoopConfig struct {
	// Apps is the set of application names the requirements apply to.
	Apps []string

	// WaitForUnits is the minimum number of ready units each
	// application must have.
	WaitForUnits int

	// WaitForExactUnits, when non-nil, requires each application to
	// have exactly this many ready units.
	WaitForExactUnits *int

	// IdlePeriod is how long every unit's agent must have been
	// continuously idle before the requirements can be satisfied.
	IdlePeriod time.Duration

	// Clock supplies the time used for idle accounting.
	Clock clock.Clock
}

// Validate checks the configuration for consistency.
func (cfg LoopConfig) Validate() error {
	if cfg.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if cfg.WaitForUnits < 0 {
		return errors.NotValidf("negative WaitForUnits")
	}
	if cfg.WaitForExactUnits != nil && *cfg.WaitForExactUnits < 0 {
		return errors.NotValidf("negative WaitForExactUnits")
	}
	if cfg.IdlePeriod < 0 {
		return errors.NotValidf("negative IdlePeriod")
	}
	return nil
}

// Loop folds a sequence of CheckResults over time. One Loop serves one
// wait invocation and must be driven from a single goroutine; it holds
// no resources that need releasing.
type Loop struct {
	cfg LoopConfig

	// idleSince maps a unit name to the earliest time at which it was
	// observed idle and has remained so. A unit with no entry is not
	// currently idle. Entries for units absent from the latest result
	// are pruned, so a unit that disappears and comes back starts its
	// idle period over.
	idleSince map[string]time.Time
}

// NewLoop returns a Loop evaluating the given requirements.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Loop{
		cfg:       cfg,
		idleSince: make(map[string]time.Time),
	}, nil
}

// Next consumes one reduction and reports whether every requirement is
// satisfied at this point. A nil result means a requested application
// was not visible; that never satisfies, and leaves the idle
// accounting untouched.
func (l *Loop) Next(result *CheckResult) bool {
	if result == nil {
		return false
	}
	now := l.cfg.Clock.Now()

	for name := range l.idleSince {
		if !result.Units.Contains(name) {
			delete(l.idleSince, name)
		}
	}
	for _, name := range result.Units.Values() {
		if result.IdleUnits.Contains(name) {
			if _, ok := l.idleSince[name]; !ok {
				l.idleSince[name] = now
			}
		} else {
			delete(l.idleSince, name)
		}
	}

	threshold := now.Add(-l.cfg.IdlePeriod)
	busy := set.NewStrings()
	for _, name := range result.Units.Values() {
		since, ok := l.idleSince[name]
		if !ok || since.After(threshold) {
			busy.Add(name)
		}
	}
	if !busy.IsEmpty() {
		logger.Infof("waiting for units to be idle enough: %s",
			strings.Join(busy.SortedValues(), ", "))
	}

	// The count checks always run so that every shortfall is logged,
	// even when busy units already decide the verdict.
	satisfied := true
	for _, appName := range set.NewStrings(l.cfg.Apps...).SortedValues() {
		ready := 0
		for _, unitName := range result.ReadyUnits.Values() {
			if owner, err := names.UnitApplication(unitName); err == nil && owner == appName {
				ready++
			}
		}
		if ready < l.cfg.WaitForUnits {
			logger.Infof("waiting for app %q units %d >= %d",
				appName, ready, l.cfg.WaitForUnits)
			satisfied = false
		}
		if l.cfg.WaitForExactUnits != nil && ready != *l.cfg.WaitForExactUnits {
			logger.Infof("waiting for app %q units %d == %d",
				appName, ready, *l.cfg.WaitForExactUnits)
			satisfied = false
		}
	}

	return busy.IsEmpty() && satisfied
}
