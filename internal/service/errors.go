package service

import "errors"

// Error taxonomy surfaced over the command channel. Every operation either
// fully applies or fails with one of these; none is fatal to the process.
var (
	// ErrInvalidInput marks structurally invalid input (empty title, unknown
	// bucket). Out-of-range numeric input is clamped instead.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a referenced id that does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrTaskAlreadyTerminal marks a finish/dnf attempt on a task that is
	// already in a terminal state.
	ErrTaskAlreadyTerminal = errors.New("task already terminal")
)
