package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowExecution(t *testing.T) {
	exec := NewWorkflowExecution("wf-1")

	assert.NotEmpty(t, exec.ID)
	assert.Equal(t, "wf-1", exec.WorkflowID)
	assert.Equal(t, ExecutionStatusPending, exec.Status)
	assert.NotNil(t, exec.Results)
	assert.NotNil(t, exec.Errors)
	assert.False(t, exec.Terminal())
}

func TestWorkflowExecution_CloneIsolation(t *testing.T) {
	exec := NewWorkflowExecution("wf-1")
	now := time.Now()
	exec.StartTime = &now
	exec.Status = ExecutionStatusRunning
	exec.Results["a"] = map[string]interface{}{"message": "hi"}
	exec.Errors["b"] = "boom"
	exec.Logs = append(exec.Logs, ExecutionLog{
		ComponentID: "a",
		Timestamp:   now,
		Status:      LogStatusCompleted,
		Result:      map[string]interface{}{"message": "hi"},
	})

	clone := exec.Clone()
	clone.Results["a"]["message"] = "changed"
	clone.Errors["b"] = "changed"
	clone.Logs[0].Result["message"] = "changed"

	assert.Equal(t, "hi", exec.Results["a"]["message"])
	assert.Equal(t, "boom", exec.Errors["b"])
	assert.Equal(t, "hi", exec.Logs[0].Result["message"])
	require.NotNil(t, clone.StartTime)
	assert.Equal(t, now.Unix(), clone.StartTime.Unix())
}

func TestWorkflowExecution_Terminal(t *testing.T) {
	exec := NewWorkflowExecution("wf-1")

	exec.Status = ExecutionStatusRunning
	assert.False(t, exec.Terminal())

	exec.Status = ExecutionStatusCompleted
	assert.True(t, exec.Terminal())

	exec.Status = ExecutionStatusFailed
	assert.True(t, exec.Terminal())
}
