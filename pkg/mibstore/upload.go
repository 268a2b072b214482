package mibstore

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"mibhub/pkg/log"
	"mibhub/pkg/models"
)

const maxArchiveMembers = 1000

// Upload stores a MIB file, or every MIB member of a zip archive. Members whose
// content is already stored are reported in Skipped. The upload fails with
// ErrMIBExists only when nothing new was stored. Any other member failure
// fails the whole upload and removes what the archive had stored so far.
func (s *Store) Upload(filename string, reader io.Reader) (*models.MIBUploadResponse, error) {
	log.Info().Str("filename", filename).Msg("Processing MIB upload")

	switch {
	case IsArchive(filename):
		return s.uploadArchive(filename, reader)
	case IsMIBFile(filename):
		file, err := s.Put(filename, reader)
		if err != nil {
			return nil, err
		}
		return &models.MIBUploadResponse{Success: true, Files: []models.MIBFile{*file}, Skipped: []string{}}, nil
	default:
		return nil, ErrUnsupportedType
	}
}

func (s *Store) uploadArchive(filename string, reader io.Reader) (*models.MIBUploadResponse, error) {
	// zip needs random access, so the archive is spooled to disk first.
	_, tempFile, size, err := spool(reader)
	if err != nil {
		return nil, err
	}
	defer cleanupTempFile(tempFile)

	archive, err := zip.NewReader(tempFile, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid zip archive", ErrUnsupportedType, filename)
	}

	resp := &models.MIBUploadResponse{Files: []models.MIBFile{}, Skipped: []string{}}
	members := 0
	for _, member := range archive.File {
		name := path.Base(member.Name)
		if member.FileInfo().IsDir() || strings.HasPrefix(member.Name, "__MACOSX/") || strings.HasPrefix(name, ".") || !IsMIBFile(name) {
			continue
		}
		members++
		if members > maxArchiveMembers {
			log.Warn().Str("archive", filename).Int("limit", maxArchiveMembers).Msg("Archive member limit reached")
			break
		}

		file, err := s.putMember(member, name)
		switch {
		case err == nil:
			resp.Files = append(resp.Files, *file)
		case errors.Is(err, ErrMIBExists):
			resp.Skipped = append(resp.Skipped, member.Name)
		default:
			s.rollback(filename, resp.Files)
			return nil, fmt.Errorf("extract %s: %w", member.Name, err)
		}
	}

	if members == 0 {
		return nil, ErrEmptyArchive
	}
	if len(resp.Files) == 0 {
		return nil, fmt.Errorf("%w: every file in %s is already stored", ErrMIBExists, filename)
	}

	log.Info().
		Str("archive", filename).
		Int("stored", len(resp.Files)).
		Int("skipped", len(resp.Skipped)).
		Msg("MIB archive extracted")

	resp.Success = true
	return resp, nil
}

func (s *Store) putMember(member *zip.File, name string) (*models.MIBFile, error) {
	if member.UncompressedSize64 > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Str("member", member.Name).Msg("Failed to close archive member")
		}
	}()

	return s.Put(name, rc)
}

// rollback removes the members already stored from an archive that failed.
func (s *Store) rollback(archive string, files []models.MIBFile) {
	for _, file := range files {
		if err := s.Delete(file.ID); err != nil {
			log.Error().Err(err).Str("archive", archive).Int64("id", file.ID).Msg("Failed to roll back archive member")
		}
	}
}
