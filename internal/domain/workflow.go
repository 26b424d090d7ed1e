package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workflow is the unit of definition: an ordered list of components and the
// directed connections between them. The engine treats a workflow as a
// read-mostly value during execution; a running execution never mutates the
// definition.
type Workflow struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Components  []*Component           `json:"components"`
	Connections []*Connection          `json:"connections"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Config      map[string]interface{} `json:"config,omitempty"`
}

func NewWorkflow(name, description string) *Workflow {
	now := time.Now().UTC()
	return &Workflow{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Components:  []*Component{},
		Connections: []*Connection{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Config:      make(map[string]interface{}),
	}
}

func (w *Workflow) Component(id string) *Component {
	for _, c := range w.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (w *Workflow) Connection(id string) *Connection {
	for _, c := range w.Connections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// RemoveComponent deletes the component and cascades to every connection
// incident on it. Returns false when the component does not exist.
func (w *Workflow) RemoveComponent(id string) bool {
	index := -1
	for i, c := range w.Components {
		if c.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false
	}

	w.Components = append(w.Components[:index], w.Components[index+1:]...)

	kept := w.Connections[:0]
	for _, conn := range w.Connections {
		if conn.SourceID != id && conn.TargetID != id {
			kept = append(kept, conn)
		}
	}
	w.Connections = kept
	return true
}

// RemoveConnection deletes a single connection by id.
func (w *Workflow) RemoveConnection(id string) bool {
	for i, c := range w.Connections {
		if c.ID == id {
			w.Connections = append(w.Connections[:i], w.Connections[i+1:]...)
			return true
		}
	}
	return false
}

// ValidateConnection checks that both endpoints reference existing
// components and that adding the edge keeps the graph acyclic. It does not
// mutate the workflow.
func (w *Workflow) ValidateConnection(conn *Connection) error {
	if w.Component(conn.SourceID) == nil || w.Component(conn.TargetID) == nil {
		return NewValidationError("connection endpoints must reference existing components", map[string]interface{}{
			"source_id": conn.SourceID,
			"target_id": conn.TargetID,
		})
	}

	candidate := *w
	candidate.Connections = append(append([]*Connection{}, w.Connections...), conn)
	if ResolveGraph(&candidate).HasCycle() {
		return NewValidationError("connection would introduce a cycle", map[string]interface{}{
			"source_id": conn.SourceID,
			"target_id": conn.TargetID,
		})
	}
	return nil
}

// Validate enforces the definition invariants: known component types,
// unique component ids, existing connection endpoints, and acyclicity.
func (w *Workflow) Validate() error {
	seen := make(map[string]bool, len(w.Components))
	for _, c := range w.Components {
		if !c.Type.Valid() {
			return NewValidationError("unknown component type", map[string]interface{}{
				"component_id": c.ID,
				"type":         string(c.Type),
			})
		}
		if seen[c.ID] {
			return NewValidationError("duplicate component id", map[string]interface{}{
				"component_id": c.ID,
			})
		}
		seen[c.ID] = true
	}

	for _, conn := range w.Connections {
		if !seen[conn.SourceID] || !seen[conn.TargetID] {
			return NewValidationError("connection endpoints must reference existing components", map[string]interface{}{
				"connection_id": conn.ID,
				"source_id":     conn.SourceID,
				"target_id":     conn.TargetID,
			})
		}
	}

	if ResolveGraph(w).HasCycle() {
		return NewValidationError("workflow graph contains a cycle", map[string]interface{}{
			"workflow_id": w.ID,
		})
	}
	return nil
}

// Clone returns a deep copy safe to hand to a run while editing continues
// on the original.
func (w *Workflow) Clone() *Workflow {
	clone := *w
	clone.Components = make([]*Component, len(w.Components))
	for i, c := range w.Components {
		clone.Components[i] = c.Clone()
	}
	clone.Connections = make([]*Connection, len(w.Connections))
	for i, c := range w.Connections {
		connCopy := *c
		connCopy.Config = cloneMap(c.Config)
		clone.Connections[i] = &connCopy
	}
	clone.Config = cloneMap(w.Config)
	return &clone
}
