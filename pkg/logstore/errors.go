package logstore

import "errors"

var (
	// ErrNoLogs is returned when no log file exists for the requested date.
	ErrNoLogs = errors.New("no logs found for this date")

	// ErrInvalidEntry is returned for entries without a message or with an unknown level.
	ErrInvalidEntry = errors.New("invalid log entry")

	// ErrInvalidDate is returned when the date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)
