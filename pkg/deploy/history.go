package deploy

import (
	"sync"

	"mibhub/pkg/models"
)

const defaultHistorySize = 100

// History keeps the most recent deployments in memory.
type History struct {
	mu    sync.RWMutex
	max   int
	order []string
	byID  map[string]*models.Deployment
}

// NewHistory creates a history bounded to size deployments.
func NewHistory(size int) *History {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &History{
		max:  size,
		byID: make(map[string]*models.Deployment),
	}
}

// Put inserts or replaces a deployment, evicting the oldest past the bound.
func (h *History) Put(deployment *models.Deployment) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.byID[deployment.ID]; !exists {
		h.order = append(h.order, deployment.ID)
	}
	h.byID[deployment.ID] = cloneDeployment(deployment)

	for len(h.order) > h.max {
		delete(h.byID, h.order[0])
		h.order = h.order[1:]
	}
}

// Get returns a copy of the deployment with the given id.
func (h *History) Get(id string) (*models.Deployment, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deployment, ok := h.byID[id]
	if !ok {
		return nil, ErrDeploymentNotFound
	}
	return cloneDeployment(deployment), nil
}

// List returns deployments newest first.
func (h *History) List() []models.Deployment {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := make([]models.Deployment, 0, len(h.order))
	for i := len(h.order) - 1; i >= 0; i-- {
		list = append(list, *cloneDeployment(h.byID[h.order[i]]))
	}
	return list
}

// Len returns the number of stored deployments.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

func cloneDeployment(d *models.Deployment) *models.Deployment {
	out := *d
	out.Results = append([]models.DeployResult(nil), d.Results...)
	if d.FinishedAt != nil {
		finished := *d.FinishedAt
		out.FinishedAt = &finished
	}
	return &out
}
