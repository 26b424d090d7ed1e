package registry

import (
	"context"
	"fmt"

	"github.com/fragent/fragent/internal/domain"
)

// PluginExecutor dispatches plugin components to the named handler
// registered under the component's plugin_type.
type PluginExecutor struct {
	registry *Registry
}

func (e *PluginExecutor) Execute(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
	pluginType := component.PluginType()
	if pluginType == "" {
		return nil, domain.NewValidationError("plugin component has no plugin_type", map[string]interface{}{
			"component_id": component.ID,
		})
	}

	handler, ok := e.registry.Plugin(pluginType)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown plugin type: %s", pluginType), map[string]interface{}{
			"component_id": component.ID,
			"plugin_type":  pluginType,
		})
	}

	outputs, err := handler(ctx, component, inputs, execCtx)
	if err != nil {
		return nil, domain.Error{
			Type:    domain.ErrorTypeInternal,
			Message: fmt.Sprintf("error executing plugin: %v", err),
			Details: map[string]interface{}{
				"component_id": component.ID,
				"plugin_type":  pluginType,
			},
		}
	}
	return outputs, nil
}

// DataSourceExecutor dispatches data source components to the named
// handler registered under the component's source_type.
type DataSourceExecutor struct {
	registry *Registry
}

func (e *DataSourceExecutor) Execute(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
	sourceType := component.SourceType()
	if sourceType == "" {
		return nil, domain.NewValidationError("data source component has no source_type", map[string]interface{}{
			"component_id": component.ID,
		})
	}

	handler, ok := e.registry.DataSource(sourceType)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown data source type: %s", sourceType), map[string]interface{}{
			"component_id": component.ID,
			"source_type":  sourceType,
		})
	}

	outputs, err := handler(ctx, component, inputs, execCtx)
	if err != nil {
		return nil, domain.Error{
			Type:    domain.ErrorTypeInternal,
			Message: fmt.Sprintf("error executing data source: %v", err),
			Details: map[string]interface{}{
				"component_id": component.ID,
				"source_type":  sourceType,
			},
		}
	}
	return outputs, nil
}
