package models

import "time"

// Component status values reported by monitoring-status updates.
const (
	ComponentPending    = "pending"
	ComponentInstalling = "installing"
	ComponentInstalled  = "installed"
	ComponentFailed     = "failed"
	ComponentRemoved    = "removed"
)

// Host is a monitored machine known to the registry.
type Host struct {
	ID          string            `json:"id"`
	Hostname    string            `json:"hostname"`
	IP          string            `json:"ip"`
	OS          string            `json:"os,omitempty"`
	Arch        string            `json:"arch,omitempty"`
	CPUCores    int               `json:"cpu_cores,omitempty"`
	MemoryBytes uint64            `json:"memory_bytes,omitempty"`
	DiskBytes   uint64            `json:"disk_bytes,omitempty"`
	Components  []Component       `json:"components"`
	SSH         *SSHInfo          `json:"ssh,omitempty"`
	Brand       *BrandMatch       `json:"brand,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Component is a monitoring component (exporter, agent) installed on a host.
type Component struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SSHInfo holds the connection details used by remote deployment tasks.
type SSHInfo struct {
	User    string `json:"user" yaml:"user"`
	Port    int    `json:"port" yaml:"port"`
	KeyPath string `json:"key_path,omitempty" yaml:"key_path"`
}

// HostGroup groups hosts that share default components and a deployment template.
type HostGroup struct {
	ID                string                       `json:"id" yaml:"id"`
	Name              string                       `json:"name" yaml:"name"`
	HostIDs           []string                     `json:"host_ids" yaml:"host_ids"`
	DefaultComponents []string                     `json:"default_components,omitempty" yaml:"default_components"`
	Template          map[string]map[string]string `json:"template,omitempty" yaml:"template"`
	CreatedAt         time.Time                    `json:"created_at" yaml:"-"`
}

// DiscoverRequest is the body of a host discovery call.
type DiscoverRequest struct {
	IP          string            `json:"ip"`
	Hostname    string            `json:"hostname"`
	OS          string            `json:"os"`
	Arch        string            `json:"arch"`
	CPUCores    int               `json:"cpu_cores"`
	MemoryBytes uint64            `json:"memory_bytes"`
	DiskBytes   uint64            `json:"disk_bytes"`
	SSH         *SSHInfo          `json:"ssh"`
	Metadata    map[string]string `json:"metadata"`
	SNMP        *ProbeRequest     `json:"snmp"`
}

// ComponentUpdate is the body of a monitoring-status update.
type ComponentUpdate struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
