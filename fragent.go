// Package fragent provides a workflow orchestration engine for agent-based
// pipelines. Workflows are directed acyclic graphs of typed components
// (inputs, agents, plugins, data sources, outputs) wired by connections;
// executing a workflow resolves the dependency graph from its connections
// and runs each component as soon as everything it depends on has produced
// a result.
//
// Component failures are isolated: a failed component is recorded in the
// execution's error map, the subgraph behind it is left unexecuted, and
// every independent branch still runs to completion.
//
// Basic usage:
//
//	manager, err := fragent.New(fragent.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.Close()
//
//	wf, _ := manager.CreateWorkflow(ctx, "pipeline", "demo")
//	manager.AddComponent(ctx, wf.ID, &fragent.Component{ID: "in", Name: "in", Type: fragent.ComponentTypeInput})
//	manager.AddComponent(ctx, wf.ID, &fragent.Component{ID: "out", Name: "out", Type: fragent.ComponentTypeOutput})
//	manager.AddConnection(ctx, wf.ID, &fragent.Connection{ID: "c", SourceID: "in", TargetID: "out"})
//
//	record, _ := manager.ExecuteWorkflow(ctx, wf.ID, map[string]interface{}{"message": "hi"}, nil)
package fragent

import (
	"github.com/fragent/fragent/internal/core"
	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

// Manager owns workflow definitions and runs executions. It is safe for
// concurrent use.
type Manager = core.Manager

// Config selects the storage backend and tunes the engine, agent service
// client, and direct LLM client.
type Config = domain.Config

type EngineConfig = domain.EngineConfig
type AgentConfig = domain.AgentConfig
type LLMConfig = domain.LLMConfig

// Workflow is a definition: components plus the connections between them.
type Workflow = domain.Workflow

// Component is a typed unit of work inside a workflow.
type Component = domain.Component

// Connection is a directed edge; the source's result feeds the target.
type Connection = domain.Connection

// WorkflowExecution is the record of one run: per-component results and
// errors plus the ordered execution log.
type WorkflowExecution = domain.WorkflowExecution

type ExecutionLog = domain.ExecutionLog

// HandlerFunc implements a named plugin or data source.
type HandlerFunc = ports.HandlerFunc

type ComponentType = domain.ComponentType

const (
	ComponentTypeInput      = domain.ComponentTypeInput
	ComponentTypeOutput     = domain.ComponentTypeOutput
	ComponentTypeAgent      = domain.ComponentTypeAgent
	ComponentTypePlugin     = domain.ComponentTypePlugin
	ComponentTypeDataSource = domain.ComponentTypeDataSource
)

type ConnectionType = domain.ConnectionType

const (
	ConnectionTypeData    = domain.ConnectionTypeData
	ConnectionTypeControl = domain.ConnectionTypeControl
	ConnectionTypeContext = domain.ConnectionTypeContext
)

type ExecutionStatus = domain.ExecutionStatus

const (
	ExecutionStatusPending   = domain.ExecutionStatusPending
	ExecutionStatusRunning   = domain.ExecutionStatusRunning
	ExecutionStatusCompleted = domain.ExecutionStatusCompleted
	ExecutionStatusFailed    = domain.ExecutionStatusFailed
)

// New builds a Manager from the given configuration. A nil configuration
// gets the defaults, which use the in-memory store.
func New(config *Config) (*Manager, error) {
	return core.New(config)
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

// ConfigFromEnv builds a configuration from FRAGENT_* environment
// variables, loading a .env file first when one is present.
func ConfigFromEnv() *Config {
	return domain.ConfigFromEnv()
}

// NewWorkflow constructs an empty workflow definition without registering
// it anywhere.
func NewWorkflow(name, description string) *Workflow {
	return domain.NewWorkflow(name, description)
}

// NewComponent constructs a component with a generated id.
func NewComponent(name string, componentType ComponentType) *Component {
	return domain.NewComponent(name, componentType)
}

// NewConnection constructs a data connection with a generated id.
func NewConnection(sourceID, targetID string) *Connection {
	return domain.NewConnection(sourceID, targetID)
}

// IsNotFound reports whether the error marks a missing workflow,
// component, connection, or execution.
func IsNotFound(err error) bool {
	return domain.IsNotFound(err)
}

// IsValidation reports whether the error marks a rejected definition edit
// or a misconfigured component.
func IsValidation(err error) bool {
	return domain.IsValidation(err)
}
