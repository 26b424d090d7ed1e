package registry

import (
	"context"
	"fmt"

	"github.com/fragent/fragent/internal/domain"
)

// Built-in handlers. Both are stub implementations with stable result
// shapes; real deployments register their own handlers over them.

func webSearchHandler(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
	query := stringValue(inputs, "query")
	if query == "" {
		return nil, domain.NewValidationError("no query provided", map[string]interface{}{
			"component_id": component.ID,
		})
	}

	return map[string]interface{}{
		"results": []interface{}{
			map[string]interface{}{
				"title":   fmt.Sprintf("Result for %s 1", query),
				"url":     "https://example.com/1",
				"snippet": fmt.Sprintf("This is a result for %s", query),
			},
			map[string]interface{}{
				"title":   fmt.Sprintf("Result for %s 2", query),
				"url":     "https://example.com/2",
				"snippet": fmt.Sprintf("Another result for %s", query),
			},
		},
	}, nil
}

func documentHandler(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
	query := stringValue(inputs, "query")
	if query == "" {
		return nil, domain.NewValidationError("no query provided", map[string]interface{}{
			"component_id": component.ID,
		})
	}

	return map[string]interface{}{
		"documents": []interface{}{
			map[string]interface{}{
				"title":   "Document 1",
				"content": fmt.Sprintf("This document contains information about %s", query),
			},
			map[string]interface{}{
				"title":   "Document 2",
				"content": fmt.Sprintf("More information about %s in this document", query),
			},
		},
	}, nil
}
