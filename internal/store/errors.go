package store

import "errors"

var (
	// ErrNotFound signals an unknown record id.
	ErrNotFound = errors.New("record not found")

	// ErrStorageUnavailable signals a backing-store connectivity failure.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotImplemented is returned by every operation of a placeholder
	// backend.
	ErrNotImplemented = errors.New("backend not implemented")

	// ErrInvalidTransition signals a maintenance status change that the
	// state machine does not allow.
	ErrInvalidTransition = errors.New("invalid maintenance status transition")
)
