// Package logstore persists client log records to date-partitioned JSON-lines
// files and reads them back with filters.
package logstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mibhub/pkg/log"
	"mibhub/pkg/models"
)

const (
	// DateLayout is the date format used in file names and queries.
	DateLayout = "2006-01-02"

	// DefaultLimit is the number of entries returned when no limit is given.
	DefaultLimit = 100

	// MaxLimit caps the number of entries returned by a single read.
	MaxLimit = 1000

	maxLineSize = 1 << 20
	filePerm    = 0o644
	dirPerm     = 0o755
)

var levels = map[string]string{
	models.LevelDebug: models.LevelDebug,
	models.LevelInfo:  models.LevelInfo,
	models.LevelWarn:  models.LevelWarn,
	"warning":         models.LevelWarn,
	models.LevelError: models.LevelError,
	models.LevelFatal: models.LevelFatal,
}

// Store appends log entries to {dir}/app-YYYY-MM-DD.log.
type Store struct {
	dir    string
	recent *log.Buffer
	mu     sync.Mutex
	now    func() time.Time
}

// New creates the log directory if needed. Appended entries are also mirrored
// into recent when it is not nil.
func New(dir string, recent *log.Buffer) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Store{dir: dir, recent: recent, now: time.Now}, nil
}

// Dir returns the log directory.
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the file that holds entries for date.
func FileName(date time.Time) string {
	return "app-" + date.Format(DateLayout) + ".log"
}

// NormalizeLevel maps a client level to its canonical name.
func NormalizeLevel(level string) (string, bool) {
	if level == "" {
		return models.LevelInfo, true
	}
	canonical, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	return canonical, ok
}

// Append validates entry, fills defaults and writes it as one JSON line.
func (s *Store) Append(entry models.LogEntry) (models.LogEntry, error) {
	if strings.TrimSpace(entry.Message) == "" {
		return entry, fmt.Errorf("%w: message is required", ErrInvalidEntry)
	}
	level, ok := NormalizeLevel(entry.Level)
	if !ok {
		return entry, fmt.Errorf("%w: unknown level %q", ErrInvalidEntry, entry.Level)
	}
	entry.Level = level
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	entry.Timestamp = entry.Timestamp.UTC()

	line, err := json.Marshal(entry)
	if err != nil {
		return entry, fmt.Errorf("encode log entry: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, FileName(entry.Timestamp))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return entry, fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("file", path).Msg("Failed to close log file")
		}
	}()

	if _, err := file.Write(line); err != nil {
		return entry, fmt.Errorf("write log file: %w", err)
	}

	if s.recent != nil {
		s.recent.Append(entry)
	}
	return entry, nil
}

// Query filters a read.
type Query struct {
	Date  string
	Level string
	Limit int
}

// Read returns the last Limit entries of the day's file matching Level,
// oldest first. Malformed lines are skipped.
func (s *Store) Read(q Query) ([]models.LogEntry, error) {
	day := s.now().UTC()
	if q.Date != "" {
		parsed, err := time.Parse(DateLayout, q.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		day = parsed
	}

	level := ""
	if q.Level != "" {
		canonical, ok := NormalizeLevel(q.Level)
		if !ok {
			return nil, fmt.Errorf("%w: unknown level %q", ErrInvalidEntry, q.Level)
		}
		level = canonical
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	path := filepath.Join(s.dir, FileName(day))
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoLogs
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("file", path).Msg("Failed to close log file")
		}
	}()

	entries := make([]models.LogEntry, 0, limit)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		var entry models.LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if level != "" && entry.Level != level {
			continue
		}
		if len(entries) == limit {
			copy(entries, entries[1:])
			entries = entries[:limit-1]
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return entries, nil
}
