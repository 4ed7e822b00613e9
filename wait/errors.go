// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package wait

import (
	"github.com/juju/errors"
)

// MachineError indicates that the machine hosting a unit in scope has
// reported an error instance status.
type MachineError struct {
	err error
}

func (e *MachineError) Error() string {
	return e.err.Error()
}

// MachineErrorf creates a MachineError.
func MachineErrorf(format string, args ...interface{}) error {
	return &MachineError{err: errors.Errorf(format, args...)}
}

// IsMachineError reports whether the error is a MachineError.
func IsMachineError(err error) bool {
	_, ok := errors.Cause(err).(*MachineError)
	return ok
}

// AgentError indicates that a unit agent in scope has reported an error
// status.
type AgentError struct {
	err error
}

func (e *AgentError) Error() string {
	return e.err.Error()
}

// AgentErrorf creates an AgentError.
func AgentErrorf(format string, args ...interface{}) error {
	return &AgentError{err: errors.Errorf(format, args...)}
}

// IsAgentError reports whether the error is an AgentError.
func IsAgentError(err error) bool {
	_, ok := errors.Cause(err).(*AgentError)
	return ok
}

// UnitError indicates that the workload of a unit in scope has reported
// an error or blocked status.
type UnitError struct {
	err error
}

func (e *UnitError) Error() string {
	return e.err.Error()
}

// UnitErrorf creates a UnitError.
func UnitErrorf(format string, args ...interface{}) error {
	return &UnitError{err: errors.Errorf(format, args...)}
}

// IsUnitError reports whether the error is a UnitError.
func IsUnitError(err error) bool {
	_, ok := errors.Cause(err).(*UnitError)
	return ok
}

// AppError indicates that an application in scope has reported an error
// or blocked status of its own.
type AppError struct {
	err error
}

func (e *AppError) Error() string {
	return e.err.Error()
}

// AppErrorf creates an AppError.
func AppErrorf(format string, args ...interface{}) error {
	return &AppError{err: errors.Errorf(format, args...)}
}

// IsAppError reports whether the error is an AppError.
func IsAppError(err error) bool {
	_, ok := errors.Cause(err).(*AppError)
	return ok
}
