package registry

import "errors"

var (
	// ErrHostNotFound is returned when the requested host does not exist.
	ErrHostNotFound = errors.New("host not found")

	// ErrHostExists is returned when a host with the same address is already registered.
	ErrHostExists = errors.New("host already registered")

	// ErrInvalidHost is returned when a discovery request is missing required fields.
	ErrInvalidHost = errors.New("invalid host")

	// ErrGroupNotFound is returned when the requested group does not exist.
	ErrGroupNotFound = errors.New("host group not found")

	// ErrGroupExists is returned when a group id is already taken.
	ErrGroupExists = errors.New("host group already exists")

	// ErrInvalidGroup is returned when a group definition is invalid.
	ErrInvalidGroup = errors.New("invalid host group")
)
