package mibstore

import "errors"

var (
	// ErrMIBExists is returned when a file with the same content is already stored.
	ErrMIBExists = errors.New("mib file already exists")

	// ErrMIBNotFound is returned when the requested MIB file does not exist.
	ErrMIBNotFound = errors.New("mib file not found")

	// ErrUnsupportedType is returned for uploads that are neither MIB files nor zip archives.
	ErrUnsupportedType = errors.New("unsupported file type, expected .mib, .txt, .my or .zip")

	// ErrEmptyArchive is returned when a zip archive holds no MIB files.
	ErrEmptyArchive = errors.New("archive contains no mib files")

	// ErrFileTooLarge is returned when a file exceeds the size limit.
	ErrFileTooLarge = errors.New("mib file too large")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("database error")
)
