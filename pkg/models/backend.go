package models

import "time"

// BackendStatus represents the reachability of the upstream backend service.
type BackendStatus struct {
	URL         string    `json:"url"`
	Configured  bool      `json:"configured"`
	Online      bool      `json:"online"`
	LastCheck   time.Time `json:"last_check"`
	LastError   string    `json:"last_error,omitempty"`
	Latency     int64     `json:"latency_ms"`
	ConsecFails int       `json:"consecutive_failures"`
}
