package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

// AgentExecutor runs agent components. Configuration selects one of two
// strategies: an agent_id routes the call through the agent service, while
// api_url/api_key/model call an OpenAI-compatible endpoint directly.
type AgentExecutor struct {
	agents     ports.AgentClient
	llm        ports.CompletionClient
	serviceURL string
	logger     *slog.Logger
}

func (e *AgentExecutor) Execute(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
	message := stringValue(inputs, "message")
	history := historyValue(inputs)

	if agentID := component.AgentID(); agentID != "" {
		return e.executeViaService(ctx, agentID, message, history, execCtx)
	}

	if component.APIURL() != "" && component.APIKey() != "" && component.Model() != "" {
		return e.executeDirect(ctx, component, message, history)
	}

	return nil, domain.NewValidationError("no agent configuration provided", map[string]interface{}{
		"component_id": component.ID,
	})
}

func (e *AgentExecutor) executeViaService(ctx context.Context, agentID, message string, history []ports.Message, execCtx map[string]interface{}) (map[string]interface{}, error) {
	baseURL := stringValue(execCtx, "agent_service_url")
	if baseURL == "" {
		baseURL = e.serviceURL
	}

	e.logger.Debug("executing agent via service",
		"agent_id", agentID,
		"service_url", baseURL,
	)

	resp, err := e.agents.Chat(ctx, baseURL, ports.ChatRequest{
		Message: message,
		History: history,
		AgentID: agentID,
	})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"message":  resp.Message,
		"role":     "assistant",
		"agent_id": agentID,
	}, nil
}

func (e *AgentExecutor) executeDirect(ctx context.Context, component *domain.Component, message string, history []ports.Message) (map[string]interface{}, error) {
	e.logger.Debug("executing agent via direct completion",
		"component_id", component.ID,
		"model", component.Model(),
	)

	result, err := e.llm.Complete(ctx, ports.CompletionRequest{
		APIURL:       component.APIURL(),
		APIKey:       component.APIKey(),
		Model:        component.Model(),
		SystemPrompt: component.SystemPrompt(),
		History:      history,
		Message:      message,
	})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"message": result.Message,
		"role":    "assistant",
		"usage":   result.Usage,
	}, nil
}

func stringValue(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// historyValue coerces the "history" input into role/content pairs. The
// value arrives either from a caller (typed) or from an upstream result
// map decoded from JSON (untyped).
func historyValue(inputs map[string]interface{}) []ports.Message {
	raw, ok := inputs["history"]
	if !ok {
		return []ports.Message{}
	}

	switch typed := raw.(type) {
	case []ports.Message:
		return typed
	case []interface{}:
		history := make([]ports.Message, 0, len(typed))
		for _, entry := range typed {
			m, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			history = append(history, ports.Message{
				Role:    fmt.Sprint(m["role"]),
				Content: fmt.Sprint(m["content"]),
			})
		}
		return history
	default:
		return []ports.Message{}
	}
}
