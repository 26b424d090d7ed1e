package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

type fakeAgentClient struct {
	lastBaseURL string
	lastRequest ports.ChatRequest
	response    *ports.ChatResponse
	err         error
}

func (f *fakeAgentClient) Chat(ctx context.Context, baseURL string, req ports.ChatRequest) (*ports.ChatResponse, error) {
	f.lastBaseURL = baseURL
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeCompletionClient struct {
	lastRequest ports.CompletionRequest
	result      *ports.CompletionResult
	err         error
}

func (f *fakeCompletionClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResult, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRegistry(agents *fakeAgentClient, llm *fakeCompletionClient) *Registry {
	return New(Deps{
		Agents:          agents,
		LLM:             llm,
		AgentServiceURL: "http://default:5000",
	}, nil)
}

func TestRegistry_ExecutorFor(t *testing.T) {
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})

	for _, componentType := range []domain.ComponentType{
		domain.ComponentTypeInput,
		domain.ComponentTypeOutput,
		domain.ComponentTypeAgent,
		domain.ComponentTypePlugin,
		domain.ComponentTypeDataSource,
	} {
		executor, ok := r.ExecutorFor(componentType)
		assert.True(t, ok, "missing executor for %s", componentType)
		assert.NotNil(t, executor)
	}

	_, ok := r.ExecutorFor(domain.ComponentType("mystery"))
	assert.False(t, ok)
}

func TestRegistry_Builtins(t *testing.T) {
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})

	assert.Equal(t, []string{"web_search"}, r.ListPlugins())
	assert.Equal(t, []string{"document"}, r.ListDataSources())
}

func TestPassthroughExecutor(t *testing.T) {
	executor := passthroughExecutor{}
	inputs := map[string]interface{}{"message": "hi"}

	out, err := executor.Execute(context.Background(), domain.NewComponent("in", domain.ComponentTypeInput), inputs, nil)
	require.NoError(t, err)
	assert.Equal(t, inputs, out)

	out, err = executor.Execute(context.Background(), domain.NewComponent("in", domain.ComponentTypeInput), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAgentExecutor_ViaService(t *testing.T) {
	agents := &fakeAgentClient{response: &ports.ChatResponse{Message: "hello"}}
	r := newTestRegistry(agents, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypeAgent)

	component := domain.NewComponent("bot", domain.ComponentTypeAgent)
	component.Config["agent_id"] = "bot1"

	out, err := executor.Execute(context.Background(), component,
		map[string]interface{}{
			"message": "hi",
			"history": []interface{}{
				map[string]interface{}{"role": "user", "content": "earlier"},
			},
		},
		map[string]interface{}{"agent_service_url": "http://agents:5000"},
	)

	require.NoError(t, err)
	assert.Equal(t, "hello", out["message"])
	assert.Equal(t, "assistant", out["role"])
	assert.Equal(t, "bot1", out["agent_id"])

	assert.Equal(t, "http://agents:5000", agents.lastBaseURL)
	assert.Equal(t, "hi", agents.lastRequest.Message)
	require.Len(t, agents.lastRequest.History, 1)
	assert.Equal(t, "user", agents.lastRequest.History[0].Role)
}

func TestAgentExecutor_ServiceURLFallback(t *testing.T) {
	agents := &fakeAgentClient{response: &ports.ChatResponse{Message: "ok"}}
	r := newTestRegistry(agents, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypeAgent)

	component := domain.NewComponent("bot", domain.ComponentTypeAgent)
	component.Config["agent_id"] = "bot1"

	_, err := executor.Execute(context.Background(), component,
		map[string]interface{}{"message": "hi"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "http://default:5000", agents.lastBaseURL)
}

func TestAgentExecutor_ServiceError(t *testing.T) {
	agents := &fakeAgentClient{err: domain.Error{
		Type:    domain.ErrorTypeUnavailable,
		Message: "error calling agent service: 500",
	}}
	r := newTestRegistry(agents, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypeAgent)

	component := domain.NewComponent("bot", domain.ComponentTypeAgent)
	component.Config["agent_id"] = "bot1"

	_, err := executor.Execute(context.Background(), component,
		map[string]interface{}{"message": "hi"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestAgentExecutor_Direct(t *testing.T) {
	llm := &fakeCompletionClient{result: &ports.CompletionResult{
		Message: "direct answer",
		Usage:   map[string]interface{}{"total_tokens": 20},
	}}
	r := newTestRegistry(&fakeAgentClient{}, llm)
	executor, _ := r.ExecutorFor(domain.ComponentTypeAgent)

	component := domain.NewComponent("bot", domain.ComponentTypeAgent)
	component.Config["api_url"] = "https://api.example.com/v1/chat/completions"
	component.Config["api_key"] = "sk-test"
	component.Config["model"] = "gpt-4"
	component.Config["system_prompt"] = "be brief"

	out, err := executor.Execute(context.Background(), component,
		map[string]interface{}{"message": "hi"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "direct answer", out["message"])
	assert.Equal(t, "assistant", out["role"])
	assert.Equal(t, map[string]interface{}{"total_tokens": 20}, out["usage"])

	assert.Equal(t, "gpt-4", llm.lastRequest.Model)
	assert.Equal(t, "be brief", llm.lastRequest.SystemPrompt)
	assert.Equal(t, "hi", llm.lastRequest.Message)
}

func TestAgentExecutor_NoConfiguration(t *testing.T) {
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypeAgent)

	component := domain.NewComponent("bot", domain.ComponentTypeAgent)

	_, err := executor.Execute(context.Background(), component,
		map[string]interface{}{"message": "hi"}, nil)

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "no agent configuration provided")
}

func TestAgentExecutor_PartialDirectConfigRejected(t *testing.T) {
	// api_url alone is not enough for the direct strategy.
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypeAgent)

	component := domain.NewComponent("bot", domain.ComponentTypeAgent)
	component.Config["api_url"] = "https://api.example.com/v1"

	_, err := executor.Execute(context.Background(), component,
		map[string]interface{}{"message": "hi"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no agent configuration provided")
}

func TestPluginExecutor(t *testing.T) {
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypePlugin)

	t.Run("registered_handler", func(t *testing.T) {
		r.RegisterPlugin("echo", func(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"echoed": inputs["message"]}, nil
		})

		component := domain.NewComponent("p", domain.ComponentTypePlugin)
		component.Config["plugin_type"] = "echo"

		out, err := executor.Execute(context.Background(), component,
			map[string]interface{}{"message": "hi"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "hi", out["echoed"])
	})

	t.Run("unknown_handler", func(t *testing.T) {
		component := domain.NewComponent("p", domain.ComponentTypePlugin)
		component.Config["plugin_type"] = "nope"

		_, err := executor.Execute(context.Background(), component, nil, nil)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "unknown plugin type: nope")
	})

	t.Run("missing_plugin_type", func(t *testing.T) {
		component := domain.NewComponent("p", domain.ComponentTypePlugin)

		_, err := executor.Execute(context.Background(), component, nil, nil)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("handler_error_wrapped", func(t *testing.T) {
		r.RegisterPlugin("broken", func(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error) {
			return nil, errors.New("backend down")
		})

		component := domain.NewComponent("p", domain.ComponentTypePlugin)
		component.Config["plugin_type"] = "broken"

		_, err := executor.Execute(context.Background(), component, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error executing plugin")
		assert.Contains(t, err.Error(), "backend down")
	})
}

func TestDataSourceExecutor_UnknownHandler(t *testing.T) {
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypeDataSource)

	component := domain.NewComponent("d", domain.ComponentTypeDataSource)
	component.Config["source_type"] = "nope"

	_, err := executor.Execute(context.Background(), component, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown data source type: nope")
}

func TestWebSearchHandler(t *testing.T) {
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypePlugin)

	component := domain.NewComponent("search", domain.ComponentTypePlugin)
	component.Config["plugin_type"] = "web_search"

	t.Run("with_query", func(t *testing.T) {
		out, err := executor.Execute(context.Background(), component,
			map[string]interface{}{"query": "golang"}, nil)
		require.NoError(t, err)

		results := out["results"].([]interface{})
		require.Len(t, results, 2)
		first := results[0].(map[string]interface{})
		assert.Equal(t, "Result for golang 1", first["title"])
	})

	t.Run("missing_query", func(t *testing.T) {
		_, err := executor.Execute(context.Background(), component, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no query provided")
	})
}

func TestDocumentHandler(t *testing.T) {
	r := newTestRegistry(&fakeAgentClient{}, &fakeCompletionClient{})
	executor, _ := r.ExecutorFor(domain.ComponentTypeDataSource)

	component := domain.NewComponent("docs", domain.ComponentTypeDataSource)
	component.Config["source_type"] = "document"

	out, err := executor.Execute(context.Background(), component,
		map[string]interface{}{"query": "workflows"}, nil)
	require.NoError(t, err)

	documents := out["documents"].([]interface{})
	require.Len(t, documents, 2)
	first := documents[0].(map[string]interface{})
	assert.Contains(t, first["content"], "workflows")
}
