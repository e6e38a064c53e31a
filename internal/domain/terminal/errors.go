package terminal

import (
	"errors"
	"fmt"
)

var (
	// Resource acquisition, returned by Create and always rolled back.
	ErrOpenFailed        = errors.New("failed to open pty")
	ErrSpawnFailed       = errors.New("failed to spawn shell")
	ErrWriterUnavailable = errors.New("failed to get pty writer")
	ErrReaderUnavailable = errors.New("failed to get pty reader")

	ErrTabNotFound  = errors.New("tab not found")
	ErrDuplicateTab = errors.New("tab already registered")
	ErrLockFailure  = errors.New("lock poisoned")
	ErrInvalidSize  = errors.New("rows and cols must be positive")
)

// SpawnError reports which acquisition step of Create failed.
type SpawnError struct {
	Kind  error
	TabID TabID
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.TabID, e.Kind, e.Err)
}

func (e *SpawnError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IOError wraps an OS error from writing to a tab.
type IOError struct {
	TabID TabID
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write to %s: %v", e.TabID, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// TabNotFound builds an error that matches ErrTabNotFound and names the tab.
func TabNotFound(id TabID) error {
	return fmt.Errorf("%w: %s", ErrTabNotFound, id)
}

// Kind labels err with a stable snake_case code for metrics and API
// responses.
func Kind(err error) string {
	var ioErr *IOError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrOpenFailed):
		return "open_failed"
	case errors.Is(err, ErrSpawnFailed):
		return "spawn_failed"
	case errors.Is(err, ErrWriterUnavailable):
		return "writer_unavailable"
	case errors.Is(err, ErrReaderUnavailable):
		return "reader_unavailable"
	case errors.Is(err, ErrTabNotFound):
		return "tab_not_found"
	case errors.Is(err, ErrLockFailure):
		return "lock_failure"
	case errors.Is(err, ErrInvalidSize):
		return "invalid_size"
	case errors.As(err, &ioErr):
		return "io_error"
	default:
		return "internal"
	}
}
