package backend

import (
	"context"
	"net/http"
	"sync"
	"time"

	"mibhub/pkg/log"
	"mibhub/pkg/models"
)

const (
	defaultHealthCheckInterval = 15 * time.Second
	defaultHealthCheckTimeout  = 5 * time.Second
	maxConsecutiveFailures     = 3
)

// Watcher tracks backend reachability with periodic health checks.
type Watcher struct {
	backend  *Client
	client   *http.Client
	interval time.Duration
	timeout  time.Duration

	mu     sync.RWMutex
	status models.BackendStatus

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for the given backend client.
func NewWatcher(backend *Client, interval, timeout time.Duration) *Watcher {
	if interval <= 0 {
		interval = defaultHealthCheckInterval
	}
	if timeout <= 0 {
		timeout = defaultHealthCheckTimeout
	}

	return &Watcher{
		backend:  backend,
		client:   &http.Client{Timeout: timeout},
		interval: interval,
		timeout:  timeout,
		status: models.BackendStatus{
			URL:        backend.BaseURL(),
			Configured: backend.Configured(),
			Online:     backend.Configured(), // Assume online until proven otherwise
		},
		stopCh: make(chan struct{}),
	}
}

// Start runs one check synchronously, then keeps checking in the background.
func (w *Watcher) Start() {
	if !w.backend.Configured() {
		log.Warn().Msg("BACKEND_URL not set, proxy and deployment endpoints are disabled")
		return
	}

	w.Check()

	w.wg.Add(1)
	go w.loop()

	log.Info().
		Str("backend", w.backend.BaseURL()).
		Dur("interval", w.interval).
		Msg("Backend watcher started")
}

// Stop ends the background checks.
func (w *Watcher) Stop() {
	select {
	case <-w.stopCh:
		return
	default:
		close(w.stopCh)
	}
	w.wg.Wait()
}

// Status returns a copy of the current status.
func (w *Watcher) Status() models.BackendStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// MarkDead immediately marks the backend offline after a failed request.
func (w *Watcher) MarkDead(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status.Online {
		log.Warn().Err(err).Str("backend", w.status.URL).Msg("Backend marked offline due to request failure")
	}
	w.status.Online = false
	w.status.ConsecFails = maxConsecutiveFailures
	w.status.LastError = err.Error()
	w.status.LastCheck = time.Now()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check probes {BACKEND_URL}/api/v1/health once and updates the status.
// Only connection failures count towards taking the backend offline; an HTTP
// error still proves the backend is reachable.
func (w *Watcher) Check() {
	if !w.backend.Configured() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	err := w.ping(ctx)
	latency := time.Since(start)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.status.LastCheck = time.Now()
	w.status.Latency = latency.Milliseconds()

	if err != nil {
		w.status.LastError = err.Error()
		if IsTimeoutOrConnectionError(err) {
			w.status.ConsecFails++
			if w.status.ConsecFails >= maxConsecutiveFailures {
				if w.status.Online {
					log.Warn().
						Str("backend", w.status.URL).
						Int("consecutive_failures", w.status.ConsecFails).
						Err(err).
						Msg("Backend marked offline")
				}
				w.status.Online = false
			}
		}
		return
	}

	if !w.status.Online {
		log.Info().
			Str("backend", w.status.URL).
			Int64("latency_ms", w.status.Latency).
			Msg("Backend back online")
	}
	w.status.Online = true
	w.status.ConsecFails = 0
	w.status.LastError = ""
}

func (w *Watcher) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.backend.URL("/health", ""), nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close health check response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
