package export

import (
	"encoding/json"
)

// State is the lifecycle state reported for an export job
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Active reports whether the job is still being worked on
func (s State) Active() bool {
	return s == StatePending || s == StateRunning
}

// JobDescriptor is one snapshot of an export job. Every status request
// produces a new descriptor; Raw keeps the untyped response for
// diagnostics.
type JobDescriptor struct {
	ID    string          `json:"id"`
	State State           `json:"state"`
	Path  string          `json:"path,omitempty"`
	Raw   json.RawMessage `json:"-"`
}

// decodeJob parses a job response and keeps the body as Raw
func decodeJob(body []byte) (*JobDescriptor, error) {
	var job JobDescriptor
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, err
	}
	job.Raw = append(json.RawMessage(nil), body...)
	return &job, nil
}
