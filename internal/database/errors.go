package database

import "errors"

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoCapacity means a seat reservation would exceed max_attendees.
	ErrNoCapacity = errors.New("not enough spots available")

	// ErrConcurrentModification means a versioned update lost the race.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrDuplicate means a unique constraint was violated.
	ErrDuplicate = errors.New("already exists")
)
