package domain

import (
	"log/slog"
	"time"
)

type Config struct {
	// DataDir is the badger database directory. Empty selects the
	// in-memory store, which does not survive restarts.
	DataDir string       `json:"data_dir"`
	Logger  *slog.Logger `json:"-"`

	Engine EngineConfig `json:"engine"`
	Agent  AgentConfig  `json:"agent"`
	LLM    LLMConfig    `json:"llm"`
}

type EngineConfig struct {
	// WorkerCount bounds how many ready components execute concurrently
	// within one run.
	WorkerCount int `json:"worker_count"`
	// ComponentTimeout caps a single component execution. Zero disables
	// the per-component deadline; outbound HTTP calls still carry their
	// own client timeouts.
	ComponentTimeout time.Duration `json:"component_timeout"`
}

type AgentConfig struct {
	// ServiceURL is the default agent service base URL, overridable per
	// run via the "agent_service_url" execution context key.
	ServiceURL string        `json:"service_url"`
	Timeout    time.Duration `json:"timeout"`
}

type LLMConfig struct {
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
}

func (c *Config) Validate() error {
	if c.Engine.WorkerCount < 1 {
		return NewValidationError("engine worker count must be at least 1", map[string]interface{}{
			"worker_count": c.Engine.WorkerCount,
		})
	}
	if c.LLM.MaxTokens < 1 {
		return NewValidationError("llm max tokens must be at least 1", map[string]interface{}{
			"max_tokens": c.LLM.MaxTokens,
		})
	}
	return nil
}
