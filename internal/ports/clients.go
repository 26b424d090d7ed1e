package ports

import (
	"context"
)

// Message is one role/content pair of a conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the agent service chat payload.
type ChatRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
	AgentID string    `json:"agent_id,omitempty"`
}

// ChatResponse is the agent service reply.
type ChatResponse struct {
	Message string                 `json:"message"`
	Usage   map[string]interface{} `json:"usage,omitempty"`
}

// AgentClient talks to the external agent service.
type AgentClient interface {
	Chat(ctx context.Context, baseURL string, req ChatRequest) (*ChatResponse, error)
}

// CompletionRequest targets an OpenAI-compatible chat completion endpoint
// directly, using the component's own credentials.
type CompletionRequest struct {
	APIURL       string
	APIKey       string
	Model        string
	SystemPrompt string
	History      []Message
	Message      string
}

type CompletionResult struct {
	Message string
	Usage   map[string]interface{}
}

// CompletionClient is the direct LLM collaborator.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}
