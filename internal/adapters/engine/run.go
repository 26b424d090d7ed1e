package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

// workflowRun is the state of one scheduling pass. Components are pushed
// onto the queue exactly once, when all of their dependencies have results;
// a bounded pool of workers drains the queue. The queue is buffered to the
// component count, so enqueueing under the record lock never blocks.
type workflowRun struct {
	engine   *Engine
	workflow *domain.Workflow
	graph    *domain.Graph
	live     *liveExecution
	inputs   map[string]interface{}
	execCtx  map[string]interface{}

	queue    chan string
	pending  sync.WaitGroup
	enqueued map[string]bool
}

func newWorkflowRun(engine *Engine, workflow *domain.Workflow, live *liveExecution, inputs, execCtx map[string]interface{}) *workflowRun {
	return &workflowRun{
		engine:   engine,
		workflow: workflow,
		graph:    domain.ResolveGraph(workflow),
		live:     live,
		inputs:   inputs,
		execCtx:  execCtx,
		queue:    make(chan string, len(workflow.Components)),
		enqueued: make(map[string]bool, len(workflow.Components)),
	}
}

// execute drains the graph and returns when no component can make further
// progress. Components stranded behind a failed dependency or a cycle are
// simply never enqueued, so the run terminates without them.
func (r *workflowRun) execute(ctx context.Context) {
	r.live.mu.Lock()
	for _, id := range r.graph.InitialReady {
		r.enqueue(id)
	}
	r.live.mu.Unlock()

	go func() {
		r.pending.Wait()
		close(r.queue)
	}()

	var workers sync.WaitGroup
	for i := 0; i < r.engine.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for id := range r.queue {
				r.process(ctx, id)
				r.pending.Done()
			}
		}()
	}
	workers.Wait()
}

// enqueue schedules a component at most once. Callers hold live.mu.
func (r *workflowRun) enqueue(id string) {
	if r.enqueued[id] {
		return
	}
	r.enqueued[id] = true
	r.pending.Add(1)
	r.queue <- id
}

func (r *workflowRun) process(ctx context.Context, id string) {
	if err := ctx.Err(); err != nil {
		r.recordFailure(id, err)
		return
	}

	component := r.workflow.Component(id)
	if component == nil {
		return
	}

	executor, ok := r.engine.executors.ExecutorFor(component.Type)
	if !ok {
		r.recordFailure(id, domain.NewValidationError(
			fmt.Sprintf("no executor registered for component type: %s", component.Type),
			map[string]interface{}{"component_id": id},
		))
		return
	}

	inputs, err := r.componentInputs(component)
	if err != nil {
		r.recordFailure(id, err)
		return
	}

	r.engine.logger.Debug("executing component",
		"component_id", id,
		"component_type", component.Type,
	)

	result, err := r.runExecutor(ctx, executor, component, inputs)
	if err != nil {
		r.engine.logger.Warn("component execution failed",
			"component_id", id,
			"component_type", component.Type,
			"error", err.Error(),
		)
		r.recordFailure(id, err)
		return
	}

	r.recordSuccess(id, result)
}

// componentInputs assembles the input map for a component. Only input
// components receive the caller-supplied inputs; everything else receives
// its dependencies' results merged in connection declaration order, later
// dependencies overriding earlier ones. A non-input component without
// dependencies therefore runs on an empty map.
func (r *workflowRun) componentInputs(component *domain.Component) (map[string]interface{}, error) {
	if component.Type == domain.ComponentTypeInput {
		return r.inputs, nil
	}
	deps := r.graph.Dependencies[component.ID]

	r.live.mu.Lock()
	results := make([]map[string]interface{}, 0, len(deps))
	for _, dep := range deps {
		if result, ok := r.live.record.Results[dep]; ok {
			results = append(results, result)
		}
	}
	r.live.mu.Unlock()

	return MergeInputs(results...)
}

func (r *workflowRun) runExecutor(ctx context.Context, executor ports.ComponentExecutor, component *domain.Component, inputs map[string]interface{}) (result map[string]interface{}, err error) {
	if r.engine.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.engine.timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			panicErr := &domain.ExecutionPanicError{
				ComponentID: component.ID,
				PanicValue:  rec,
				StackTrace:  string(debug.Stack()),
			}
			r.engine.logger.Error("component execution panicked",
				"component_id", component.ID,
				"component_type", component.Type,
				"panic_value", rec,
				"stack_trace", panicErr.StackTrace,
			)
			result = nil
			err = panicErr
		}
	}()

	return executor.Execute(ctx, component, inputs, r.execCtx)
}

// recordSuccess stores the result, appends the log entry, and enqueues any
// dependent whose dependencies are now all complete.
func (r *workflowRun) recordSuccess(id string, result map[string]interface{}) {
	if result == nil {
		result = map[string]interface{}{}
	}

	r.live.mu.Lock()
	defer r.live.mu.Unlock()

	r.live.record.Results[id] = result
	r.live.record.Logs = append(r.live.record.Logs, domain.ExecutionLog{
		ComponentID: id,
		Timestamp:   time.Now().UTC(),
		Status:      domain.LogStatusCompleted,
		Result:      result,
	})

	for _, dependent := range r.graph.Dependents[id] {
		if r.dependenciesComplete(dependent) {
			r.enqueue(dependent)
		}
	}
}

func (r *workflowRun) recordFailure(id string, err error) {
	r.live.mu.Lock()
	defer r.live.mu.Unlock()

	r.live.record.Errors[id] = err.Error()
	r.live.record.Logs = append(r.live.record.Logs, domain.ExecutionLog{
		ComponentID: id,
		Timestamp:   time.Now().UTC(),
		Status:      domain.LogStatusFailed,
		Error:       err.Error(),
	})
}

// dependenciesComplete reports whether every dependency has a result.
// Callers hold live.mu. A failed dependency never satisfies this, which is
// what strands the downstream subgraph.
func (r *workflowRun) dependenciesComplete(id string) bool {
	for _, dep := range r.graph.Dependencies[id] {
		if _, ok := r.live.record.Results[dep]; !ok {
			return false
		}
	}
	return true
}
