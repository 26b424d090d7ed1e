package core

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"

	"github.com/fragent/fragent/internal/adapters/agent"
	"github.com/fragent/fragent/internal/adapters/engine"
	"github.com/fragent/fragent/internal/adapters/llm"
	"github.com/fragent/fragent/internal/adapters/memory"
	"github.com/fragent/fragent/internal/adapters/registry"
	"github.com/fragent/fragent/internal/adapters/storage"
	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
	"github.com/fragent/fragent/internal/xjson"
)

const workflowKeyPrefix = "workflow:definition:"

// Manager wires the storage, registry, and engine adapters together and
// owns the workflow definitions. Definitions are kept in memory for editing
// and persisted as JSON documents on every mutation; at startup they are
// rehydrated from storage.
type Manager struct {
	storage  ports.StoragePort
	registry *registry.Registry
	engine   *engine.Engine
	config   *domain.Config
	logger   *slog.Logger

	mu        sync.RWMutex
	workflows map[string]*domain.Workflow
}

func New(config *domain.Config) (*Manager, error) {
	if config == nil {
		config = domain.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var store ports.StoragePort
	if config.DataDir == "" {
		store = memory.NewStorage(logger)
	} else {
		adapter, err := storage.NewAdapter(config.DataDir, logger)
		if err != nil {
			return nil, err
		}
		store = adapter
	}

	reg := registry.New(registry.Deps{
		Agents:          agent.NewClient(config.Agent.Timeout, logger),
		LLM:             llm.NewClient(config.LLM, logger),
		AgentServiceURL: config.Agent.ServiceURL,
	}, logger)

	m := &Manager{
		storage:   store,
		registry:  reg,
		engine:    engine.New(reg, store, config.Engine, logger),
		config:    config,
		logger:    logger.With("component", "manager"),
		workflows: make(map[string]*domain.Workflow),
	}

	if err := m.loadWorkflows(context.Background()); err != nil {
		store.Close()
		return nil, err
	}

	m.logger.Info("manager started",
		"data_dir", config.DataDir,
		"workflows", len(m.workflows),
	)

	return m, nil
}

func (m *Manager) loadWorkflows(ctx context.Context) error {
	pairs, err := m.storage.ListByPrefix(ctx, workflowKeyPrefix)
	if err != nil {
		return err
	}

	for _, pair := range pairs {
		var workflow domain.Workflow
		if err := xjson.Unmarshal(pair.Value, &workflow); err != nil {
			return domain.NewStorageError("decode", pair.Key, err)
		}
		m.workflows[workflow.ID] = &workflow
	}
	return nil
}

// Registry exposes the handler registries so callers can install their own
// plugin and data source handlers before executing workflows.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

func (m *Manager) Close() error {
	m.logger.Info("manager stopping")
	return m.storage.Close()
}

// CreateWorkflow registers an empty workflow definition and persists it.
func (m *Manager) CreateWorkflow(ctx context.Context, name, description string) (*domain.Workflow, error) {
	if name == "" {
		return nil, domain.NewValidationError("workflow name is required", nil)
	}

	workflow := domain.NewWorkflow(name, description)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persistLocked(ctx, workflow); err != nil {
		return nil, err
	}
	m.workflows[workflow.ID] = workflow

	m.logger.Info("workflow created", "workflow_id", workflow.ID, "name", name)
	return workflow.Clone(), nil
}

// ImportWorkflow validates and stores a complete definition, replacing any
// existing workflow with the same id.
func (m *Manager) ImportWorkflow(ctx context.Context, workflow *domain.Workflow) (*domain.Workflow, error) {
	if workflow == nil {
		return nil, domain.NewValidationError("workflow is required", nil)
	}

	imported := workflow.Clone()
	if imported.ID == "" {
		fresh := domain.NewWorkflow(imported.Name, imported.Description)
		imported.ID = fresh.ID
		imported.CreatedAt = fresh.CreatedAt
	}
	for _, component := range imported.Components {
		if component.ID == "" {
			component.ID = uuid.NewString()
		}
	}
	for _, connection := range imported.Connections {
		if connection.ID == "" {
			connection.ID = uuid.NewString()
		}
	}
	imported.UpdatedAt = time.Now().UTC()

	if err := imported.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persistLocked(ctx, imported); err != nil {
		return nil, err
	}
	m.workflows[imported.ID] = imported

	m.logger.Info("workflow imported", "workflow_id", imported.ID, "name", imported.Name)
	return imported.Clone(), nil
}

func (m *Manager) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	workflow, ok := m.workflows[id]
	if !ok {
		return nil, domain.NewNotFoundError("workflow", id)
	}
	return workflow.Clone(), nil
}

// ListWorkflows returns clones of every definition, ordered by creation
// time then id.
func (m *Manager) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	workflows := make([]*domain.Workflow, 0, len(m.workflows))
	for _, workflow := range m.workflows {
		workflows = append(workflows, workflow.Clone())
	}

	sort.Slice(workflows, func(i, j int) bool {
		a, b := workflows[i], workflows[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return workflows, nil
}

// UpdateWorkflow replaces the stored definition's name, description, and
// config. Structural edits go through the component and connection
// operations so their validation cannot be bypassed.
func (m *Manager) UpdateWorkflow(ctx context.Context, id, name, description string, config map[string]interface{}) (*domain.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	workflow, ok := m.workflows[id]
	if !ok {
		return nil, domain.NewNotFoundError("workflow", id)
	}

	updated := workflow.Clone()
	if name != "" {
		updated.Name = name
	}
	updated.Description = description
	if config != nil {
		if updated.Config == nil {
			updated.Config = make(map[string]interface{})
		}
		if err := mergo.Merge(&updated.Config, config, mergo.WithOverride); err != nil {
			return nil, domain.Error{
				Type:    domain.ErrorTypeInternal,
				Message: "failed to merge workflow config",
				Details: map[string]interface{}{"workflow_id": id, "error": err.Error()},
			}
		}
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx, updated); err != nil {
		return nil, err
	}
	m.workflows[id] = updated

	return updated.Clone(), nil
}

func (m *Manager) DeleteWorkflow(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workflows[id]; !ok {
		return domain.NewNotFoundError("workflow", id)
	}

	if err := m.storage.Delete(ctx, workflowKeyPrefix+id); err != nil && !domain.IsNotFound(err) {
		return err
	}
	delete(m.workflows, id)

	m.logger.Info("workflow deleted", "workflow_id", id)
	return nil
}

// AddComponent appends a component to the workflow. The component id must
// be unique within the definition and the type must be known.
func (m *Manager) AddComponent(ctx context.Context, workflowID string, component *domain.Component) (*domain.Workflow, error) {
	if component == nil {
		return nil, domain.NewValidationError("component is required", nil)
	}
	if !component.Type.Valid() {
		return nil, domain.NewValidationError("unknown component type", map[string]interface{}{
			"component_type": string(component.Type),
		})
	}

	stored := component.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	return m.mutateWorkflow(ctx, workflowID, func(workflow *domain.Workflow) error {
		if workflow.Component(stored.ID) != nil {
			return domain.NewValidationError("component id already exists", map[string]interface{}{
				"component_id": stored.ID,
			})
		}
		workflow.Components = append(workflow.Components, stored)
		return nil
	})
}

// UpdateComponent replaces an existing component in place, preserving its
// position in declaration order.
func (m *Manager) UpdateComponent(ctx context.Context, workflowID string, component *domain.Component) (*domain.Workflow, error) {
	if component == nil {
		return nil, domain.NewValidationError("component is required", nil)
	}
	if !component.Type.Valid() {
		return nil, domain.NewValidationError("unknown component type", map[string]interface{}{
			"component_type": string(component.Type),
		})
	}

	return m.mutateWorkflow(ctx, workflowID, func(workflow *domain.Workflow) error {
		for i, existing := range workflow.Components {
			if existing.ID == component.ID {
				workflow.Components[i] = component.Clone()
				return nil
			}
		}
		return domain.NewNotFoundError("component", component.ID)
	})
}

// DeleteComponent removes a component and every connection touching it.
func (m *Manager) DeleteComponent(ctx context.Context, workflowID, componentID string) (*domain.Workflow, error) {
	return m.mutateWorkflow(ctx, workflowID, func(workflow *domain.Workflow) error {
		if !workflow.RemoveComponent(componentID) {
			return domain.NewNotFoundError("component", componentID)
		}
		return nil
	})
}

// AddConnection appends a connection after validating both endpoints exist
// and the edge would not close a cycle.
func (m *Manager) AddConnection(ctx context.Context, workflowID string, connection *domain.Connection) (*domain.Workflow, error) {
	if connection == nil {
		return nil, domain.NewValidationError("connection is required", nil)
	}

	conn := *connection
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	if conn.Type == "" {
		conn.Type = domain.ConnectionTypeData
	}

	return m.mutateWorkflow(ctx, workflowID, func(workflow *domain.Workflow) error {
		if err := workflow.ValidateConnection(&conn); err != nil {
			return err
		}
		workflow.Connections = append(workflow.Connections, &conn)
		return nil
	})
}

func (m *Manager) DeleteConnection(ctx context.Context, workflowID, connectionID string) (*domain.Workflow, error) {
	return m.mutateWorkflow(ctx, workflowID, func(workflow *domain.Workflow) error {
		if !workflow.RemoveConnection(connectionID) {
			return domain.NewNotFoundError("connection", connectionID)
		}
		return nil
	})
}

// mutateWorkflow applies an edit to a clone of the stored definition and
// swaps it in only after the edit and the persist both succeed.
func (m *Manager) mutateWorkflow(ctx context.Context, workflowID string, edit func(*domain.Workflow) error) (*domain.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	workflow, ok := m.workflows[workflowID]
	if !ok {
		return nil, domain.NewNotFoundError("workflow", workflowID)
	}

	updated := workflow.Clone()
	if err := edit(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx, updated); err != nil {
		return nil, err
	}
	m.workflows[workflowID] = updated

	return updated.Clone(), nil
}

func (m *Manager) persistLocked(ctx context.Context, workflow *domain.Workflow) error {
	data, err := xjson.Marshal(workflow)
	if err != nil {
		return domain.NewStorageError("encode", workflowKeyPrefix+workflow.ID, err)
	}
	return m.storage.Put(ctx, workflowKeyPrefix+workflow.ID, data)
}

// ExecuteWorkflow runs a workflow synchronously against a snapshot of its
// definition, so concurrent edits cannot affect an in-flight run. The
// configured agent service URL is made available to executors through the
// execution context unless the caller already set one.
func (m *Manager) ExecuteWorkflow(ctx context.Context, workflowID string, inputs, execCtx map[string]interface{}) (*domain.WorkflowExecution, error) {
	m.mu.RLock()
	workflow, ok := m.workflows[workflowID]
	var snapshot *domain.Workflow
	if ok {
		snapshot = workflow.Clone()
	}
	m.mu.RUnlock()

	if !ok {
		return nil, domain.NewNotFoundError("workflow", workflowID)
	}

	if execCtx == nil {
		execCtx = make(map[string]interface{})
	}
	if _, ok := execCtx["agent_service_url"]; !ok && m.config.Agent.ServiceURL != "" {
		execCtx["agent_service_url"] = m.config.Agent.ServiceURL
	}

	return m.engine.Execute(ctx, snapshot, inputs, execCtx)
}

func (m *Manager) GetExecution(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	return m.engine.GetExecution(ctx, id)
}

// ListExecutions lists execution records, optionally filtered to one
// workflow. Pass an empty workflowID for all runs.
func (m *Manager) ListExecutions(ctx context.Context, workflowID string) ([]*domain.WorkflowExecution, error) {
	return m.engine.ListExecutions(ctx, workflowID)
}
