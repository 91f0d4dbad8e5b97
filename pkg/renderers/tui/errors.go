package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoModels is returned by Run when the catalog is empty.
	ErrNoModels = errors.New("tui: no models available")
)
