package models

import "time"

// Deployment kinds.
const (
	DeployRules      = "rules"
	DeployMonitoring = "monitoring"
)

// Deployment status values.
const (
	DeploymentRunning   = "running"
	DeploymentCompleted = "completed"
	DeploymentPartial   = "partial"
	DeploymentFailed    = "failed"
)

// DeployRequest is the body accepted by the deployment endpoints.
type DeployRequest struct {
	Rules      []map[string]interface{} `json:"rules,omitempty"`
	Hosts      []string                 `json:"hosts"`
	Group      string                   `json:"group,omitempty"`
	Components []string                 `json:"components,omitempty"`
	Parameters map[string]interface{}   `json:"parameters,omitempty"`
}

// Deployment tracks one fan-out of tasks across hosts.
type Deployment struct {
	ID         string         `json:"deploymentId"`
	Kind       string         `json:"kind"`
	Status     string         `json:"status"`
	Results    []DeployResult `json:"results"`
	Summary    DeploySummary  `json:"summary"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// DeployResult is the outcome of the task run for a single host.
type DeployResult struct {
	HostID   string `json:"host_id"`
	Hostname string `json:"hostname,omitempty"`
	Success  bool   `json:"success"`
	TaskID   string `json:"task_id,omitempty"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Attempts int    `json:"attempts"`
}

// DeploySummary counts results by outcome.
type DeploySummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// DeployResponse is the envelope returned to callers.
type DeployResponse struct {
	Success      bool           `json:"success"`
	DeploymentID string         `json:"deploymentId"`
	Results      []DeployResult `json:"results"`
	Summary      DeploySummary  `json:"summary"`
}

// Task is a remote task as reported by the backend.
type Task struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// TaskSpec describes a remote task to create on the backend.
type TaskSpec struct {
	Type       string                   `json:"type"`
	HostID     string                   `json:"host_id"`
	Target     string                   `json:"target"`
	SSH        *SSHInfo                 `json:"ssh,omitempty"`
	Components []string                 `json:"components,omitempty"`
	Rules      []map[string]interface{} `json:"rules,omitempty"`
	Parameters map[string]interface{}   `json:"parameters,omitempty"`
}
