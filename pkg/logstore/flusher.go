package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"mibhub/pkg/log"
	"mibhub/pkg/models"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultFlushInterval = 30 * time.Second
	flushRetryMax        = 3
	flushBatchSize       = 500
)

// Flusher ships queued client log entries to a remote collector in batches.
type Flusher struct {
	url      string
	interval time.Duration
	queue    *log.Buffer
	client   *retryablehttp.Client

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup
}

// NewFlusher creates a flusher posting to url. queueSize bounds the number of
// pending entries; the oldest are dropped when the collector falls behind.
func NewFlusher(url string, interval time.Duration, queueSize int) *Flusher {
	if interval <= 0 {
		interval = defaultFlushInterval
	}

	client := retryablehttp.NewClient()
	client.RetryMax = flushRetryMax
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil

	ctx, cancel := context.WithCancel(context.Background())
	return &Flusher{
		url:      url,
		interval: interval,
		queue:    log.NewBuffer(queueSize),
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enqueue schedules entry for the next flush.
func (f *Flusher) Enqueue(entry models.LogEntry) {
	f.queue.Append(entry)
}

// Pending returns the number of queued entries.
func (f *Flusher) Pending() int {
	return f.queue.Len()
}

// Start flushes on every interval until Stop is called.
func (f *Flusher) Start() {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-f.ctx.Done():
				return
			case <-ticker.C:
				if err := f.Flush(f.ctx); err != nil {
					log.Warn().Err(err).Str("url", f.url).Msg("Remote log flush failed")
				}
			}
		}
	}()
}

// Stop ends the background loop, aborting a flush in progress, and makes a
// final flush attempt bounded by ctx.
func (f *Flusher) Stop(ctx context.Context) error {
	f.once.Do(f.cancel)

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return f.Flush(ctx)
}

// Flush posts everything queued. On failure the unsent entries go back to the
// front of the queue.
func (f *Flusher) Flush(ctx context.Context) error {
	entries := f.queue.Drain()
	for start := 0; start < len(entries); start += flushBatchSize {
		end := min(start+flushBatchSize, len(entries))
		if err := f.post(ctx, entries[start:end]); err != nil {
			f.queue.Requeue(entries[start:])
			return err
		}
	}
	if len(entries) > 0 {
		log.Debug().Int("entries", len(entries)).Str("url", f.url).Msg("Flushed client logs")
	}
	return nil
}

func (f *Flusher) post(ctx context.Context, batch []models.LogEntry) error {
	body, err := json.Marshal(map[string]interface{}{"logs": batch})
	if err != nil {
		return fmt.Errorf("encode log batch: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create flush request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("post log batch: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close flush response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("log collector returned status %d", resp.StatusCode)
	}
	return nil
}
