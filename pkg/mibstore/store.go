// Package mibstore keeps the MIB library: file content addressed by SHA256 on
// disk and file metadata in SQLite.
package mibstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"mibhub/pkg/log"
	"mibhub/pkg/models"

	_ "modernc.org/sqlite"
)

// modulePattern extracts the module name from "IF-MIB DEFINITIONS ::= BEGIN".
var modulePattern = regexp.MustCompile(`(?m)^\s*([A-Za-z][A-Za-z0-9-]*)\s+DEFINITIONS\s*::=\s*BEGIN`)

// mibExtensions lists the accepted plain MIB file extensions.
var mibExtensions = map[string]bool{".mib": true, ".txt": true, ".my": true}

// Store manages MIB metadata in SQLite and the file blobs under a directory.
type Store struct {
	db  *sql.DB
	dir string
	mu  sync.RWMutex
}

// NewStore opens the database at dbPath and stores blobs under dir.
func NewStore(dbPath, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create mib directory: %w", err)
	}

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}

	if _, err := database.ExecContext(context.Background(), "PRAGMA journal_mode = WAL"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrDatabaseError, err)
	}

	store := &Store{db: database, dir: dir}
	if err := store.Initialize(); err != nil {
		_ = database.Close()
		return nil, err
	}

	return store, nil
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(context.Background(), Schema); err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IsMIBFile reports whether name has a MIB file extension.
func IsMIBFile(name string) bool {
	return mibExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsArchive reports whether name is a zip archive.
func IsArchive(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// ParseModule returns the ASN.1 module name declared in content, if any.
func ParseModule(content []byte) string {
	match := modulePattern.FindSubmatch(content)
	if match == nil {
		return ""
	}
	return string(match[1])
}

// Put stores a single MIB file read from reader.
func (s *Store) Put(name string, reader io.Reader) (*models.MIBFile, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if !IsMIBFile(name) {
		return nil, ErrUnsupportedType
	}

	hash, tempFile, size, err := spool(reader)
	if err != nil {
		return nil, err
	}
	defer cleanupTempFile(tempFile)

	head := make([]byte, 64*1024)
	n, err := io.ReadFull(tempFile, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	file := &models.MIBFile{
		Name:        name,
		Module:      ParseModule(head),
		Hash:        hash,
		Size:        size,
		ContentType: http.DetectContentType(head),
		UploadedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM mib_files WHERE hash = ?)`, hash).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	if exists {
		log.Info().Str("hash", hash).Str("name", name).Msg("MIB file already exists")
		return nil, fmt.Errorf("%w: %s", ErrMIBExists, name)
	}

	if err := s.writeBlob(hash, tempFile); err != nil {
		log.Error().Err(err).Str("hash", hash).Msg("Failed to save MIB file")
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO mib_files (name, module, hash, size, content_type, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		file.Name, file.Module, file.Hash, file.Size, file.ContentType, file.UploadedAt,
	)
	if err != nil {
		s.removeBlob(hash)
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: %s", ErrMIBExists, name)
		}
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	file.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	log.Info().Str("hash", hash).Str("name", name).Str("module", file.Module).Msg("MIB file stored")
	return file, nil
}

// Get retrieves MIB file metadata by id.
func (s *Store) Get(id int64) (*models.MIBFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file := &models.MIBFile{}
	var module, contentType sql.NullString
	err := s.db.QueryRowContext(context.Background(),
		`SELECT id, name, module, hash, size, content_type, uploaded_at FROM mib_files WHERE id = ?`,
		id,
	).Scan(&file.ID, &file.Name, &module, &file.Hash, &file.Size, &contentType, &file.UploadedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMIBNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	file.Module = module.String
	file.ContentType = contentType.String
	return file, nil
}

// List returns all MIB files ordered by name.
func (s *Store) List() ([]models.MIBFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, name, module, hash, size, content_type, uploaded_at FROM mib_files ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() { _ = rows.Close() }()

	files := make([]models.MIBFile, 0)
	for rows.Next() {
		var (
			file                models.MIBFile
			module, contentType sql.NullString
		)
		if err := rows.Scan(&file.ID, &file.Name, &module, &file.Hash, &file.Size, &contentType, &file.UploadedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
		}
		file.Module = module.String
		file.ContentType = contentType.String
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return files, nil
}

// Path returns the metadata and blob path of a MIB file for download.
func (s *Store) Path(id int64) (*models.MIBFile, string, error) {
	file, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}

	path := s.blobPath(file.Hash)
	if _, err := os.Stat(path); err != nil {
		log.Error().Err(err).Int64("id", id).Str("hash", file.Hash).Msg("MIB blob missing")
		return nil, "", ErrMIBNotFound
	}
	return file, path, nil
}

// Delete removes the metadata row and the blob.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM mib_files WHERE id = ?`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMIBNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM mib_files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	s.removeBlob(hash)

	log.Info().Int64("id", id).Str("hash", hash).Msg("MIB file deleted")
	return nil
}
