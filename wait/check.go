// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package wait decides when a set of deployed applications has settled
// into a stable, ready state. Check reduces one status snapshot to the
// unit sets that matter; Loop folds a sequence of such reductions over
// time and reports, per snapshot, whether every requirement has held
// for the configured idle period.
package wait

import (
	"github.com/juju/collections/set"
	"github.com/juju/loggo"
	"github.com/juju/names/v5"

	"github.com/juju/waitfor/params"
	"github.com/juju/waitfor/status"
)

var logger = loggo.GetLogger("waitfor.wait")

// CheckArgs holds the arguments for a single Check call.
type CheckArgs struct {
	// Apps is the set of application names whose units are in scope.
	Apps []string

	// RaiseOnError makes Check return a typed error when any in-scope
	// machine, agent, workload or application reports an error status.
	RaiseOnError bool

	// RaiseOnBlocked makes Check return a typed error when any
	// in-scope workload or application reports a blocked status.
	RaiseOnBlocked bool

	// WorkloadStatus, if non-empty, is the workload status a unit must
	// report to count as ready.
	WorkloadStatus status.Status
}

// CheckResult is the reduction of one status snapshot.
type CheckResult struct {
	// Units holds all units visible for the requested applications.
	Units set.Strings

	// ReadyUnits holds the units whose workload matches the requested
	// status (all units when none was requested) and whose agent is
	// idle.
	ReadyUnits set.Strings

	// IdleUnits holds the units whose agent is idle, regardless of
	// workload status. This is the signal Loop uses to measure
	// quiescence.
	IdleUnits set.Strings
}

// Check reduces a single FullStatus snapshot to a CheckResult.
//
// A nil result with a nil error means a requested application is not
// visible in the snapshot yet; the caller should keep polling. Missing
// applications are never an error, whatever the raise flags say.
//
// When the raise flags are set, failure conditions surface in a fixed
// order: machine error, agent error, workload error, application
// error, then workload blocked and application blocked. Each condition
// is scanned across all in-scope entities before the next is
// considered.
func Check(fullStatus *params.FullStatus, args CheckArgs) (*CheckResult, error) {
	appNames := set.NewStrings(args.Apps...).SortedValues()

	for _, appName := range appNames {
		if _, ok := fullStatus.Applications[appName]; !ok {
			logger.Infof("waiting for application %q to appear in status", appName)
			return nil, nil
		}
	}

	units := make(map[string]params.UnitStatus)
	for _, appName := range appNames {
		appUnits(fullStatus, appName, units)
	}
	unitNames := set.NewStrings()
	for name := range units {
		unitNames.Add(name)
	}

	if args.RaiseOnError {
		for _, unitName := range unitNames.SortedValues() {
			unit := units[unitName]
			if unit.Machine == "" {
				continue
			}
			machine, ok := fullStatus.Machines[unit.Machine]
			if !ok {
				continue
			}
			if status.Status(machine.InstanceStatus.Status) == status.Error {
				return nil, MachineErrorf("%q machine %q has errored: %q",
					unitName, unit.Machine, machine.InstanceStatus.Info)
			}
		}
		for _, unitName := range unitNames.SortedValues() {
			if status.Status(units[unitName].AgentStatus.Status) == status.Error {
				return nil, AgentErrorf("%q agent has errored: %q",
					unitName, units[unitName].AgentStatus.Info)
			}
		}
		for _, unitName := range unitNames.SortedValues() {
			if status.Status(units[unitName].WorkloadStatus.Status) == status.Error {
				return nil, UnitErrorf("%q workload has errored: %q",
					unitName, units[unitName].WorkloadStatus.Info)
			}
		}
		for _, appName := range appNames {
			app := fullStatus.Applications[appName]
			if status.Status(app.Status.Status) == status.Error {
				return nil, AppErrorf("%q has errored: %q", appName, app.Status.Info)
			}
		}
	}

	if args.RaiseOnBlocked {
		for _, unitName := range unitNames.SortedValues() {
			if status.Status(units[unitName].WorkloadStatus.Status) == status.Blocked {
				return nil, UnitErrorf("%q workload is blocked: %q",
					unitName, units[unitName].WorkloadStatus.Info)
			}
		}
		for _, appName := range appNames {
			app := fullStatus.Applications[appName]
			if status.Status(app.Status.Status) == status.Blocked {
				return nil, AppErrorf("%q is blocked: %q", appName, app.Status.Info)
			}
		}
	}

	result := &CheckResult{
		Units:      set.NewStrings(),
		ReadyUnits: set.NewStrings(),
		IdleUnits:  set.NewStrings(),
	}
	for unitName, unit := range units {
		result.Units.Add(unitName)
		idle := status.Status(unit.AgentStatus.Status) == status.Idle
		if idle {
			result.IdleUnits.Add(unitName)
		}
		matched := args.WorkloadStatus == "" ||
			status.Status(unit.WorkloadStatus.Status) == args.WorkloadStatus
		if idle && matched {
			result.ReadyUnits.Add(unitName)
		}
	}
	return result, nil
}

// appUnits collects the named application's units into the units map.
// A subordinate application's units live nested under the units of its
// first principal application.
func appUnits(fullStatus *params.FullStatus, appName string, units map[string]params.UnitStatus) {
	app := fullStatus.Applications[appName]
	if len(app.SubordinateTo) == 0 {
		for name, unit := range app.Units {
			units[name] = unit
		}
		return
	}

	parent, ok := fullStatus.Applications[app.SubordinateTo[0]]
	if !ok {
		return
	}
	for _, parentUnit := range parent.Units {
		for name, unit := range parentUnit.Subordinates {
			if owner, err := names.UnitApplication(name); err != nil || owner != appName {
				continue
			}
			units[name] = unit
		}
	}
}
