package backend

import (
	"context"
	"net/http"
	"net/url"

	"mibhub/pkg/models"
)

// Terminal task states reported by the backend.
var (
	successStates = map[string]bool{"completed": true, "success": true, "succeeded": true, "done": true}
	failureStates = map[string]bool{"failed": true, "error": true, "cancelled": true, "canceled": true, "timeout": true}
)

// TaskSucceeded reports whether status is a successful terminal state.
func TaskSucceeded(status string) bool {
	return successStates[status]
}

// TaskFailed reports whether status is a failed terminal state.
func TaskFailed(status string) bool {
	return failureStates[status]
}

// taskEnvelope accepts both a bare task and {"data": task} answers.
type taskEnvelope struct {
	models.Task
	Data *models.Task `json:"data,omitempty"`
}

func (e *taskEnvelope) task() models.Task {
	if e.Data != nil {
		return *e.Data
	}
	return e.Task
}

// CreateTask registers a remote task on the backend.
func (c *Client) CreateTask(ctx context.Context, spec models.TaskSpec) (*models.Task, error) {
	var env taskEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/tasks", spec, &env); err != nil {
		return nil, err
	}
	task := env.task()
	if task.ID == "" {
		return nil, ErrTaskRejected
	}
	return &task, nil
}

// ExecuteTask starts a previously created task.
func (c *Client) ExecuteTask(ctx context.Context, taskID string) error {
	return c.doJSON(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/execute", nil, nil)
}

// GetTask fetches the current status of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	var env taskEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID), nil, &env); err != nil {
		return nil, err
	}
	task := env.task()
	if task.ID == "" {
		task.ID = taskID
	}
	return &task, nil
}
