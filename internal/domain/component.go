package domain

import (
	"github.com/google/uuid"
)

type ComponentType string

const (
	ComponentTypeAgent      ComponentType = "agent"
	ComponentTypePlugin     ComponentType = "plugin"
	ComponentTypeDataSource ComponentType = "data_source"
	ComponentTypeInput      ComponentType = "input"
	ComponentTypeOutput     ComponentType = "output"
)

func (t ComponentType) Valid() bool {
	switch t {
	case ComponentTypeAgent, ComponentTypePlugin, ComponentTypeDataSource,
		ComponentTypeInput, ComponentTypeOutput:
		return true
	}
	return false
}

// Component is a typed node in a workflow graph. Identity is immutable once
// created; Config carries the type-specific settings and may be changed by
// workflow editing operations.
type Component struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Type        ComponentType          `json:"type"`
	Description string                 `json:"description,omitempty"`
	Config      map[string]interface{} `json:"config"`

	// Position on the workflow canvas, carried for editors.
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

func NewComponent(name string, componentType ComponentType) *Component {
	return &Component{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   componentType,
		Config: make(map[string]interface{}),
	}
}

func (c *Component) configString(key string) string {
	if c.Config == nil {
		return ""
	}
	if v, ok := c.Config[key].(string); ok {
		return v
	}
	return ""
}

// Agent component settings. AgentID routes the call through the agent
// service; APIURL/APIKey/Model route it directly to an OpenAI-compatible
// endpoint.

func (c *Component) AgentID() string      { return c.configString("agent_id") }
func (c *Component) APIURL() string       { return c.configString("api_url") }
func (c *Component) APIKey() string       { return c.configString("api_key") }
func (c *Component) Model() string        { return c.configString("model") }
func (c *Component) SystemPrompt() string { return c.configString("system_prompt") }

// PluginType names the handler for plugin components.
func (c *Component) PluginType() string { return c.configString("plugin_type") }

// SourceType names the handler for data source components.
func (c *Component) SourceType() string { return c.configString("source_type") }

func (c *Component) Clone() *Component {
	clone := *c
	clone.Config = cloneMap(c.Config)
	return &clone
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
