package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

func testConfig() domain.LLMConfig {
	return domain.LLMConfig{
		Temperature: 0.7,
		MaxTokens:   1500,
		Timeout:     time.Second,
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		apiURL   string
		expected string
	}{
		{"full_completions_path", "https://api.example.com/v1/chat/completions", "https://api.example.com/v1"},
		{"base_path", "https://api.example.com/v1", "https://api.example.com/v1"},
		{"trailing_slash", "https://api.example.com/v1/", "https://api.example.com/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, baseURL(tt.apiURL))
		})
	}
}

func TestClient_Complete(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": "hello there"}},
			},
			"usage": map[string]interface{}{
				"prompt_tokens":     10,
				"completion_tokens": 5,
				"total_tokens":      15,
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(), nil)
	result, err := client.Complete(context.Background(), ports.CompletionRequest{
		APIURL:       server.URL + "/chat/completions",
		APIKey:       "sk-test",
		Model:        "gpt-4",
		SystemPrompt: "be brief",
		History:      []ports.Message{{Role: "user", Content: "earlier"}, {Role: "assistant", Content: "sure"}},
		Message:      "hi",
	})

	require.NoError(t, err)
	assert.Equal(t, "hello there", result.Message)
	assert.Equal(t, 15, result.Usage["total_tokens"])

	assert.Equal(t, "gpt-4", captured["model"])
	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 4)

	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "be brief", first["content"])

	last := messages[3].(map[string]interface{})
	assert.Equal(t, "user", last["role"])
	assert.Equal(t, "hi", last["content"])
}

func TestClient_CompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(), nil)
	_, err := client.Complete(context.Background(), ports.CompletionRequest{
		APIURL:  server.URL,
		APIKey:  "sk-test",
		Model:   "gpt-4",
		Message: "hi",
	})

	require.Error(t, err)
	var domainErr domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorTypeUnavailable, domainErr.Type)
}

func TestClient_CompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(testConfig(), nil)
	_, err := client.Complete(context.Background(), ports.CompletionRequest{
		APIURL:  server.URL,
		APIKey:  "sk-test",
		Model:   "gpt-4",
		Message: "hi",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
