package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoSubmitter is returned when the form has no named submit control.
	ErrNoSubmitter = errors.New("prompt: form has no named submit control")
)
