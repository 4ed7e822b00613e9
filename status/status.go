// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package status holds the vocabulary of agent, workload and machine
// instance status values that the readiness checks compare against.
// Status values arrive over the wire as free-form strings; the values
// below are the ones with defined meaning, anything else flows through
// untouched and simply never matches.
package status

// Status describes the reported state of an entity.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

const (
	// Error means the entity requires human intervention
	// in order to operate correctly.
	Error Status = "error"

	// Idle is set when a unit agent is installed, running, and not
	// executing any hook or action. It is the stable resting state of
	// a healthy agent.
	Idle Status = "idle"

	// Executing is set while the agent is running a hook or action.
	Executing Status = "executing"

	// Allocating is set while the machine or container hosting a unit
	// is still being spun up.
	Allocating Status = "allocating"

	// Lost is set when the agent ought to be signalling activity,
	// but none has been detected.
	Lost Status = "lost"
)

const (
	// Workload status values, reflecting the state of the deployed
	// software itself.

	// Active is set when the workload believes it is correctly
	// offering all the services it has been asked to offer.
	Active Status = "active"

	// Blocked is set when the workload needs manual intervention to
	// get back to a running state.
	Blocked Status = "blocked"

	// Maintenance is set when the workload is actively doing stuff in
	// preparation for providing its services. This is a spinning
	// state, not an error state.
	Maintenance Status = "maintenance"

	// Waiting is set when the workload is unable to progress because
	// an application it is related to is not running.
	Waiting Status = "waiting"

	// Unknown is set when the agent is up but the workload has not
	// reported a status of its own yet.
	Unknown Status = "unknown"

	// Terminated means the workload used to exist but is now gone.
	Terminated Status = "terminated"
)

const (
	// Machine instance status values.

	// Pending is set while the instance is not yet participating in
	// the model.
	Pending Status = "pending"

	// Running is set when the cloud reports the instance as up.
	Running Status = "running"
)

// KnownAgentStatus reports whether the status is a recognized unit
// agent status value.
func (s Status) KnownAgentStatus() bool {
	switch s {
	case Allocating, Error, Executing, Idle, Lost:
		return true
	}
	return false
}

// KnownWorkloadStatus reports whether the status is a recognized unit
// workload status value.
func (s Status) KnownWorkloadStatus() bool {
	switch s {
	case Active, Blocked, Error, Maintenance, Terminated, Unknown, Waiting:
		return true
	}
	return false
}
