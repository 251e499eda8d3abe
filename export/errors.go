package export

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is matched by every failed request to the export API
	// or to result storage
	ErrTransport = errors.New("transport error")

	// ErrExecution is matched when a job does not complete
	ErrExecution = errors.New("export did not complete")
)

// TransportError describes a failed call. StatusCode is zero when no HTTP
// response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrTransport, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Body != "" {
		msg += fmt.Sprintf(": %s", e.Body)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Is makes every TransportError match ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExecutionError carries the last descriptor of a job that did not
// complete, or that completed with an unusable result path.
type ExecutionError struct {
	Job *JobDescriptor
	Err error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s: job %q in state %q", ErrExecution, e.Job.ID, e.Job.State)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if len(e.Job.Raw) > 0 {
		msg += fmt.Sprintf(": response=%s", e.Job.Raw)
	}
	return msg
}

// Is makes every ExecutionError match ErrExecution
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
