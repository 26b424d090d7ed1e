package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
	"github.com/fragent/fragent/internal/xjson"
)

const executionKeyPrefix = "execution:"

// Engine schedules workflow executions and tracks their records. Running
// executions are held in memory and observable through GetExecution;
// finished records are persisted under the execution key prefix so they
// survive restarts.
type Engine struct {
	executors ports.ExecutorProvider
	storage   ports.StoragePort
	workers   int
	timeout   time.Duration
	logger    *slog.Logger

	mu   sync.RWMutex
	live map[string]*liveExecution
}

// liveExecution pairs an in-flight record with the mutex that serializes
// scheduler writes against reader clones.
type liveExecution struct {
	mu     sync.Mutex
	record *domain.WorkflowExecution
}

func (l *liveExecution) snapshot() *domain.WorkflowExecution {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.record.Clone()
}

func New(executors ports.ExecutorProvider, storage ports.StoragePort, config domain.EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	workers := config.WorkerCount
	if workers < 1 {
		workers = domain.DefaultWorkerCount
	}

	return &Engine{
		executors: executors,
		storage:   storage,
		workers:   workers,
		timeout:   config.ComponentTimeout,
		logger:    logger.With("component", "engine"),
		live:      make(map[string]*liveExecution),
	}
}

// Execute runs the workflow to completion and returns the finished record.
// Component failures do not abort the run: the failed component is recorded
// in Errors, its dependents are left unscheduled, and every other branch
// proceeds. The run terminates when no component can make progress, and its
// status is failed exactly when at least one component failed.
func (e *Engine) Execute(ctx context.Context, workflow *domain.Workflow, inputs, execCtx map[string]interface{}) (*domain.WorkflowExecution, error) {
	record := domain.NewWorkflowExecution(workflow.ID)
	now := time.Now().UTC()
	record.StartTime = &now
	record.Status = domain.ExecutionStatusRunning

	live := &liveExecution{record: record}
	e.mu.Lock()
	e.live[record.ID] = live
	e.mu.Unlock()

	e.logger.Info("workflow execution started",
		"workflow_id", workflow.ID,
		"execution_id", record.ID,
		"components", len(workflow.Components),
	)

	run := newWorkflowRun(e, workflow, live, inputs, execCtx)
	run.execute(ctx)

	live.mu.Lock()
	end := time.Now().UTC()
	record.EndTime = &end
	if len(record.Errors) > 0 {
		record.Status = domain.ExecutionStatusFailed
	} else {
		record.Status = domain.ExecutionStatusCompleted
	}
	finished := record.Clone()
	live.mu.Unlock()

	e.logger.Info("workflow execution finished",
		"workflow_id", workflow.ID,
		"execution_id", record.ID,
		"status", finished.Status,
		"completed", len(finished.Results),
		"failed", len(finished.Errors),
	)

	if err := e.persist(ctx, finished); err != nil {
		e.logger.Error("failed to persist execution record",
			"execution_id", record.ID,
			"error", err.Error(),
		)
	} else {
		e.mu.Lock()
		delete(e.live, record.ID)
		e.mu.Unlock()
	}

	return finished, nil
}

// GetExecution returns a snapshot of an execution record, live or persisted.
func (e *Engine) GetExecution(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	e.mu.RLock()
	live, ok := e.live[id]
	e.mu.RUnlock()
	if ok {
		return live.snapshot(), nil
	}

	data, err := e.storage.Get(ctx, executionKeyPrefix+id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("execution", id)
		}
		return nil, err
	}

	var record domain.WorkflowExecution
	if err := xjson.Unmarshal(data, &record); err != nil {
		return nil, domain.NewStorageError("decode", executionKeyPrefix+id, err)
	}
	return &record, nil
}

// ListExecutions returns snapshots of all known executions, persisted and
// live, ordered by start time then id. A non-empty workflowID restricts the
// listing to that workflow's runs.
func (e *Engine) ListExecutions(ctx context.Context, workflowID string) ([]*domain.WorkflowExecution, error) {
	pairs, err := e.storage.ListByPrefix(ctx, executionKeyPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]*domain.WorkflowExecution, 0, len(pairs))
	seen := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		var record domain.WorkflowExecution
		if err := xjson.Unmarshal(pair.Value, &record); err != nil {
			return nil, domain.NewStorageError("decode", pair.Key, err)
		}
		if workflowID != "" && record.WorkflowID != workflowID {
			continue
		}
		records = append(records, &record)
		seen[record.ID] = true
	}

	e.mu.RLock()
	for id, live := range e.live {
		if seen[id] {
			continue
		}
		snapshot := live.snapshot()
		if workflowID != "" && snapshot.WorkflowID != workflowID {
			continue
		}
		records = append(records, snapshot)
	}
	e.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.StartTime == nil:
			return b.StartTime != nil
		case b.StartTime == nil:
			return false
		case a.StartTime.Equal(*b.StartTime):
			return strings.Compare(a.ID, b.ID) < 0
		default:
			return a.StartTime.Before(*b.StartTime)
		}
	})

	return records, nil
}

func (e *Engine) persist(ctx context.Context, record *domain.WorkflowExecution) error {
	data, err := xjson.Marshal(record)
	if err != nil {
		return domain.NewStorageError("encode", executionKeyPrefix+record.ID, err)
	}
	return e.storage.Put(ctx, executionKeyPrefix+record.ID, data)
}
