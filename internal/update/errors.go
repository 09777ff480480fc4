package update

import (
	"errors"
	"fmt"
)

// Failure kinds of an update run. Match them with errors.Is.
var (
	ErrVersionCheck = errors.New("version check failed")
	ErrDownload     = errors.New("download failed")
	ErrInstall      = errors.New("install failed")
	ErrRestart      = errors.New("restart failed")

	// ErrAlreadyStarted is returned when a second run is requested in one session.
	ErrAlreadyStarted = errors.New("update already started in this session")
)

// StageError records which state an update run failed in.
type StageError struct {
	State State // State the run was in when it failed
	Kind  error // One of the Err* kinds above
	Err   error // Underlying cause
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
