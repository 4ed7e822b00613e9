// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package params holds the subset of the controller's wire types needed
// to interpret a FullStatus response.
package params

import (
	"time"
)

// StatusParams holds parameters for the Client.FullStatus call.
type StatusParams struct {
	Patterns []string `json:"patterns"`
}

// FullStatus holds information about the status of a model.
type FullStatus struct {
	Model        ModelStatusInfo              `json:"model"`
	Machines     map[string]MachineStatus     `json:"machines"`
	Applications map[string]ApplicationStatus `json:"applications"`
}

// ModelStatusInfo holds status information about the model itself.
type ModelStatusInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	CloudTag    string `json:"cloud-tag"`
	CloudRegion string `json:"region,omitempty"`
	Version     string `json:"version"`
}

// MachineStatus holds status info about a machine.
type MachineStatus struct {
	AgentStatus    DetailedStatus `json:"agent-status"`
	InstanceStatus DetailedStatus `json:"instance-status"`

	DNSName    string                   `json:"dns-name"`
	InstanceId string                   `json:"instance-id"`
	Id         string                   `json:"id"`
	Containers map[string]MachineStatus `json:"containers"`
}

// ApplicationStatus holds status info about an application.
type ApplicationStatus struct {
	Charm         string                `json:"charm"`
	Exposed       bool                  `json:"exposed"`
	Life          string                `json:"life"`
	SubordinateTo []string              `json:"subordinate-to"`
	Units         map[string]UnitStatus `json:"units"`
	Status        DetailedStatus        `json:"status"`
}

// UnitStatus holds status info about a unit.
type UnitStatus struct {
	// AgentStatus holds the status for a unit's agent.
	AgentStatus DetailedStatus `json:"agent-status"`

	// WorkloadStatus holds the status for a unit's workload.
	WorkloadStatus DetailedStatus `json:"workload-status"`

	Machine       string                `json:"machine"`
	PublicAddress string                `json:"public-address"`
	Charm         string                `json:"charm"`
	Leader        bool                  `json:"leader,omitempty"`
	Subordinates  map[string]UnitStatus `json:"subordinates"`
}

// DetailedStatus holds status info about a machine or unit agent.
type DetailedStatus struct {
	Status string                 `json:"status"`
	Info   string                 `json:"info"`
	Data   map[string]interface{} `json:"data,omitempty"`
	Since  *time.Time             `json:"since,omitempty"`
}
