package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

type LogStatus string

const (
	LogStatusCompleted LogStatus = "completed"
	LogStatusFailed    LogStatus = "failed"
)

// ExecutionLog is one ordered entry of the run's append-only log. Entries
// are ordered by actual completion, not declaration.
type ExecutionLog struct {
	ComponentID string                 `json:"component_id"`
	Timestamp   time.Time              `json:"timestamp"`
	Status      LogStatus              `json:"status"`
	Result      map[string]interface{} `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// WorkflowExecution is the record of a single run: per-component results
// and errors plus the ordered log. It is mutated only by the scheduler that
// owns the run and becomes immutable once EndTime is set. Components that
// were never reached (behind a cycle or a failed dependency) are absent
// from both Results and Errors; callers must treat that absence as a state
// distinct from success and failure.
type WorkflowExecution struct {
	ID         string                            `json:"id"`
	WorkflowID string                            `json:"workflow_id"`
	Status     ExecutionStatus                   `json:"status"`
	StartTime  *time.Time                        `json:"start_time,omitempty"`
	EndTime    *time.Time                        `json:"end_time,omitempty"`
	Results    map[string]map[string]interface{} `json:"results"`
	Errors     map[string]string                 `json:"errors"`
	Logs       []ExecutionLog                    `json:"logs"`
}

func NewWorkflowExecution(workflowID string) *WorkflowExecution {
	return &WorkflowExecution{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Status:     ExecutionStatusPending,
		Results:    make(map[string]map[string]interface{}),
		Errors:     make(map[string]string),
		Logs:       []ExecutionLog{},
	}
}

// Clone returns a deep copy so concurrent readers can observe a running
// execution without racing the scheduler.
func (e *WorkflowExecution) Clone() *WorkflowExecution {
	clone := *e
	clone.Results = make(map[string]map[string]interface{}, len(e.Results))
	for id, result := range e.Results {
		clone.Results[id] = cloneMap(result)
	}
	clone.Errors = make(map[string]string, len(e.Errors))
	for id, msg := range e.Errors {
		clone.Errors[id] = msg
	}
	clone.Logs = make([]ExecutionLog, len(e.Logs))
	for i, entry := range e.Logs {
		entryCopy := entry
		entryCopy.Result = cloneMap(entry.Result)
		clone.Logs[i] = entryCopy
	}
	if e.StartTime != nil {
		t := *e.StartTime
		clone.StartTime = &t
	}
	if e.EndTime != nil {
		t := *e.EndTime
		clone.EndTime = &t
	}
	return &clone
}

// Terminal reports whether the run has reached a final status.
func (e *WorkflowExecution) Terminal() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusFailed
}
