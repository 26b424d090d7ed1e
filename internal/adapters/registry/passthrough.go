package registry

import (
	"context"

	"github.com/fragent/fragent/internal/domain"
)

// passthroughExecutor serves input and output components: both return
// their inputs unchanged. Inputs exist to seed the graph with the caller's
// data, outputs to give the caller a stable place to read final values.
type passthroughExecutor struct{}

func (passthroughExecutor) Execute(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
	if inputs == nil {
		return map[string]interface{}{}, nil
	}
	return inputs, nil
}
