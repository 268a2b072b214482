package log

import (
	"sync"
	"time"

	"mibhub/pkg/models"

	"github.com/rs/zerolog"
)

// Buffer keeps the last N log entries in memory. The oldest entry is evicted
// once the cap is reached. It doubles as a zerolog hook.
type Buffer struct {
	mu      sync.RWMutex
	entries []models.LogEntry
	max     int
}

// NewBuffer creates a buffer holding at most size entries.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Buffer{
		entries: make([]models.LogEntry, 0, size),
		max:     size,
	}
}

// Run implements zerolog.Hook.
func (b *Buffer) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.NoLevel || msg == "" {
		return
	}
	b.Append(models.LogEntry{
		Level:     level.String(),
		Message:   msg,
		Timestamp: time.Now().UTC(),
		Component: "server",
	})
}

// Append adds an entry, dropping the oldest one past the cap.
func (b *Buffer) Append(entry models.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= b.max {
		copy(b.entries, b.entries[len(b.entries)-b.max+1:])
		b.entries = b.entries[:b.max-1]
	}
	b.entries = append(b.entries, entry)
}

// Requeue puts entries back in front of the buffered ones, keeping order.
// Past the cap the oldest entries are dropped.
func (b *Buffer) Requeue(entries []models.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]models.LogEntry, 0, len(entries)+len(b.entries))
	merged = append(merged, entries...)
	merged = append(merged, b.entries...)
	if len(merged) > b.max {
		merged = merged[len(merged)-b.max:]
	}
	b.entries = append(make([]models.LogEntry, 0, b.max), merged...)
}

// Entries returns a copy of the buffered entries, oldest first.
// A non-empty level keeps only entries of that level.
func (b *Buffer) Entries(level string) []models.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.LogEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		if level != "" && entry.Level != level {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Drain returns all buffered entries and empties the buffer.
func (b *Buffer) Drain() []models.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.entries
	b.entries = make([]models.LogEntry, 0, b.max)
	return out
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Cap returns the maximum number of entries kept.
func (b *Buffer) Cap() int {
	return b.max
}
