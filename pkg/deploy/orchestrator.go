// Package deploy fans deployment tasks out to hosts through the backend task API
// and polls each task until it reaches a terminal state.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mibhub/pkg/apperror"
	"mibhub/pkg/backend"
	"mibhub/pkg/log"
	"mibhub/pkg/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 60
	defaultWorkers      = 4
)

// TaskRunner is the subset of the backend client used to run remote tasks.
type TaskRunner interface {
	CreateTask(ctx context.Context, spec models.TaskSpec) (*models.Task, error)
	ExecuteTask(ctx context.Context, taskID string) error
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
}

// Inventory resolves deployment targets and records component status.
type Inventory interface {
	Get(id string) (*models.Host, error)
	GetGroup(id string) (*models.HostGroup, error)
	UpdateComponent(id, component string, update models.ComponentUpdate) (*models.Host, error)
}

// Options tunes polling and fan-out.
type Options struct {
	PollInterval time.Duration
	MaxAttempts  int
	Workers      int
	History      int
}

// Orchestrator runs deployments and remembers recent ones.
type Orchestrator struct {
	runner    TaskRunner
	inventory Inventory
	opts      Options
	history   *History
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator. Zero options take the defaults.
func NewOrchestrator(runner TaskRunner, inventory Inventory, opts Options) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	return &Orchestrator{
		runner:    runner,
		inventory: inventory,
		opts:      opts,
		history:   NewHistory(opts.History),
		now:       time.Now,
	}
}

// History exposes the recent deployments.
func (o *Orchestrator) History() *History {
	return o.history
}

type target struct {
	host       *models.Host
	components []string
	templates  map[string]map[string]string
}

// Deploy validates req, runs one task per host and returns the finished deployment.
// Host failures are reported in the results; the returned error is only set when
// the request itself is invalid.
func (o *Orchestrator) Deploy(ctx context.Context, kind string, req *models.DeployRequest) (*models.Deployment, error) {
	targets, err := o.resolve(kind, req)
	if err != nil {
		return nil, err
	}

	deployment := &models.Deployment{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    models.DeploymentRunning,
		Results:   make([]models.DeployResult, len(targets)),
		StartedAt: o.now().UTC(),
	}
	for i, t := range targets {
		deployment.Results[i] = models.DeployResult{
			HostID:   t.host.ID,
			Hostname: t.host.Hostname,
			Status:   "pending",
		}
	}
	o.history.Put(deployment)

	logger := log.WithComponent("deploy").With().
		Str("deployment", deployment.ID).
		Str("kind", kind).
		Logger()
	logger.Info().Int("hosts", len(targets)).Msg("Deployment started")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)

	for i, t := range targets {
		g.Go(func() error {
			result := o.runHost(gctx, kind, req, t)

			mu.Lock()
			deployment.Results[i] = result
			mu.Unlock()

			event := logger.Info()
			if !result.Success {
				event = logger.Warn()
			}
			event.Str("host", result.HostID).
				Str("task", result.TaskID).
				Str("status", result.Status).
				Int("attempts", result.Attempts).
				Msg("Host deployment finished")
			return nil
		})
	}
	_ = g.Wait()

	finished := o.now().UTC()
	deployment.FinishedAt = &finished
	deployment.Summary = summarize(deployment.Results)
	deployment.Status = overallStatus(deployment.Summary)
	o.history.Put(deployment)

	logger.Info().
		Str("status", deployment.Status).
		Int("succeeded", deployment.Summary.Succeeded).
		Int("failed", deployment.Summary.Failed).
		Msg("Deployment finished")

	return deployment, nil
}

// resolve validates the request and collects every problem before failing.
func (o *Orchestrator) resolve(kind string, req *models.DeployRequest) ([]target, error) {
	if kind != models.DeployRules && kind != models.DeployMonitoring {
		return nil, apperror.Wrap(apperror.Validation, ErrUnknownKind, kind)
	}

	var result *multierror.Error
	hostIDs := append([]string(nil), req.Hosts...)
	components := append([]string(nil), req.Components...)
	var templates map[string]map[string]string

	if req.Group != "" {
		group, err := o.inventory.GetGroup(req.Group)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("group %q: %w", req.Group, err))
		} else {
			hostIDs = append(hostIDs, group.HostIDs...)
			if len(components) == 0 {
				components = append(components, group.DefaultComponents...)
			}
			templates = group.Template
		}
	}

	hostIDs = dedupe(hostIDs)
	if len(hostIDs) == 0 {
		result = multierror.Append(result, errors.New("at least one host is required"))
	}

	switch kind {
	case models.DeployRules:
		if len(req.Rules) == 0 {
			result = multierror.Append(result, errors.New("at least one rule is required"))
		}
	case models.DeployMonitoring:
		components = dedupe(components)
		if len(components) == 0 {
			result = multierror.Append(result, errors.New("at least one component is required"))
		}
	}

	targets := make([]target, 0, len(hostIDs))
	for _, id := range hostIDs {
		host, err := o.inventory.Get(id)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("host %q: %w", id, err))
			continue
		}
		targets = append(targets, target{host: host, components: components, templates: templates})
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, apperror.Wrap(apperror.Validation, err, "invalid deployment request")
	}
	return targets, nil
}

func (o *Orchestrator) runHost(ctx context.Context, kind string, req *models.DeployRequest, t target) models.DeployResult {
	result := models.DeployResult{
		HostID:   t.host.ID,
		Hostname: t.host.Hostname,
	}

	if kind == models.DeployMonitoring {
		o.setComponents(t, models.ComponentInstalling, "")
	}

	task, attempts, err := o.runTask(ctx, taskSpec(kind, req, t))
	result.Attempts = attempts
	if task != nil {
		result.TaskID = task.ID
		result.Status = task.Status
	}

	if err != nil {
		result.Success = false
		result.Message = err.Error()
		if result.Status == "" || !backend.TaskFailed(result.Status) {
			result.Status = models.DeploymentFailed
		}
	} else {
		result.Success = true
		result.Message = task.Message
	}

	if kind == models.DeployMonitoring {
		status := models.ComponentInstalled
		if !result.Success {
			status = models.ComponentFailed
		}
		o.setComponents(t, status, versionOf(req))
	}
	return result
}

// runTask creates and executes the remote task, then polls it at a constant
// interval until it finishes or the attempt budget is spent.
func (o *Orchestrator) runTask(ctx context.Context, spec models.TaskSpec) (*models.Task, int, error) {
	task, err := o.runner.CreateTask(ctx, spec)
	if err != nil {
		return nil, 0, fmt.Errorf("create task: %w", err)
	}

	if err := o.runner.ExecuteTask(ctx, task.ID); err != nil {
		return task, 0, fmt.Errorf("execute task %s: %w", task.ID, err)
	}

	attempts := 0
	last := task
	poll := func() error {
		attempts++
		current, err := o.runner.GetTask(ctx, task.ID)
		if err != nil {
			if backend.IsTimeoutOrConnectionError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		last = current

		switch {
		case backend.TaskSucceeded(current.Status):
			return nil
		case backend.TaskFailed(current.Status):
			return backoff.Permanent(&TaskFailedError{Status: current.Status, Message: current.Message})
		default:
			return errTaskPending
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(o.opts.PollInterval), uint64(o.opts.MaxAttempts-1)),
		ctx,
	)

	err = backoff.Retry(poll, policy)
	switch {
	case err == nil:
		return last, attempts, nil
	case errors.Is(err, errTaskPending):
		return last, attempts, fmt.Errorf("task %s did not finish after %d attempts", task.ID, attempts)
	default:
		return last, attempts, err
	}
}

func (o *Orchestrator) setComponents(t target, status, version string) {
	for _, component := range t.components {
		update := models.ComponentUpdate{Status: status, Version: version}
		if _, err := o.inventory.UpdateComponent(t.host.ID, component, update); err != nil {
			log.Warn().
				Err(err).
				Str("host", t.host.ID).
				Str("component", component).
				Msg("Failed to record component status")
		}
	}
}

func taskSpec(kind string, req *models.DeployRequest, t target) models.TaskSpec {
	spec := models.TaskSpec{
		Type:       kind,
		HostID:     t.host.ID,
		Target:     t.host.IP,
		SSH:        t.host.SSH,
		Parameters: copyParameters(req.Parameters),
	}

	switch kind {
	case models.DeployRules:
		spec.Rules = req.Rules
	case models.DeployMonitoring:
		spec.Components = t.components
		if len(t.templates) > 0 {
			if spec.Parameters == nil {
				spec.Parameters = make(map[string]interface{})
			}
			spec.Parameters["templates"] = t.templates
		}
	}
	return spec
}

func versionOf(req *models.DeployRequest) string {
	if v, ok := req.Parameters["version"].(string); ok {
		return v
	}
	return ""
}

func copyParameters(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func summarize(results []models.DeployResult) models.DeploySummary {
	summary := models.DeploySummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

func overallStatus(summary models.DeploySummary) string {
	switch {
	case summary.Failed == 0:
		return models.DeploymentCompleted
	case summary.Succeeded == 0:
		return models.DeploymentFailed
	default:
		return models.DeploymentPartial
	}
}

// Response converts a finished deployment to the API envelope.
func Response(d *models.Deployment) models.DeployResponse {
	return models.DeployResponse{
		Success:      d.Summary.Failed == 0,
		DeploymentID: d.ID,
		Results:      d.Results,
		Summary:      d.Summary,
	}
}
