package deploy

import "errors"

var (
	// ErrDeploymentNotFound is returned for an unknown or evicted deployment id.
	ErrDeploymentNotFound = errors.New("deployment not found")

	// ErrUnknownKind is returned for a deployment kind other than rules or monitoring.
	ErrUnknownKind = errors.New("unknown deployment kind")

	errTaskPending = errors.New("task still running")
)

// TaskFailedError is returned when the backend reports a failed terminal status.
type TaskFailedError struct {
	Status  string
	Message string
}

func (e *TaskFailedError) Error() string {
	if e.Message != "" {
		return "task " + e.Status + ": " + e.Message
	}
	return "task " + e.Status
}
