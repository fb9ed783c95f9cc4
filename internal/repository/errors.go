package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint rejected the write. The
	// constraint is the race arbiter for case-insensitive email uniqueness.
	ErrDuplicate = errors.New("repository: duplicate key")
)
