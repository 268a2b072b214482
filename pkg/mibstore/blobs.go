package mibstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"mibhub/pkg/log"
)

// ValidateHash checks if a hash string is valid format.
func ValidateHash(hash string) bool {
	if len(hash) != hashLength {
		return false
	}
	for _, char := range hash {
		if (char < '0' || char > '9') && (char < 'a' || char > 'f') {
			return false
		}
	}
	return true
}

// blobPath returns dir/ab/cd/abcd... for a valid hash.
func (s *Store) blobPath(hash string) string {
	if !ValidateHash(hash) {
		return ""
	}
	return filepath.Join(s.dir, hash[0:2], hash[2:4], hash)
}

// spool copies reader to a temp file while hashing it. The caller removes the file.
func spool(reader io.Reader) (string, *os.File, int64, error) {
	hasher := sha256.New()
	tempFile, err := os.CreateTemp("", "mib-upload-*")
	if err != nil {
		return "", nil, 0, err
	}

	size, err := io.Copy(io.MultiWriter(hasher, tempFile), io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		cleanupTempFile(tempFile)
		return "", nil, 0, err
	}
	if size > MaxFileSize {
		cleanupTempFile(tempFile)
		return "", nil, 0, ErrFileTooLarge
	}

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		cleanupTempFile(tempFile)
		return "", nil, 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), tempFile, size, nil
}

func cleanupTempFile(tempFile *os.File) {
	name := tempFile.Name()
	if err := tempFile.Close(); err != nil {
		log.Debug().Err(err).Str("temp_file", name).Msg("Failed to close temporary file")
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("temp_file", name).Msg("Failed to remove temporary file")
	}
}

// writeBlob saves the spooled content under its hash.
func (s *Store) writeBlob(hash string, src io.Reader) error {
	targetPath := s.blobPath(hash)
	if targetPath == "" {
		return errors.New("invalid hash")
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), dirPerm); err != nil {
		return err
	}

	//nolint:gosec // targetPath is built from a validated hash
	dst, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		if removeErr := os.Remove(targetPath); removeErr != nil {
			log.Error().Err(removeErr).Str("target_path", targetPath).Msg("Failed to remove partial blob")
		}
		return err
	}
	return dst.Close()
}

func (s *Store) removeBlob(hash string) {
	path := s.blobPath(hash)
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("hash", hash).Msg("Failed to remove MIB blob")
	}
}
