package errors

import (
	"errors"
)

// Sentinel errors for the relay error taxonomy.
var (
	// ErrDuplicateEvent - duplicate event or already-consumed interaction (ignore silently)
	ErrDuplicateEvent = errors.New("duplicate event")

	// ErrPermissionDenied - sender lacks the role a command requires (show notice)
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput - malformed command or payload (show validation notice)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - unknown handle, role, or correlation id (show neutral notice)
	ErrNotFound = errors.New("not found")

	// ErrTransient - delivery or platform error worth retrying later (log, continue)
	ErrTransient = errors.New("transient error")

	// ErrConflict - concurrent state change lost the race (log, continue)
	ErrConflict = errors.New("conflict")

	// ErrInternal - anything else (log only, generic notice)
	ErrInternal = errors.New("internal error")
)
