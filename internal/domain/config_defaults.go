package domain

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultWorkerCount      = 4
	DefaultComponentTimeout = 60 * time.Second
	DefaultAgentServiceURL  = "http://localhost:5000"
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 1500
)

func DefaultConfig() *Config {
	return &Config{
		Logger: slog.Default(),
		Engine: EngineConfig{
			WorkerCount:      DefaultWorkerCount,
			ComponentTimeout: DefaultComponentTimeout,
		},
		Agent: AgentConfig{
			ServiceURL: DefaultAgentServiceURL,
			Timeout:    DefaultHTTPTimeout,
		},
		LLM: LLMConfig{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     DefaultHTTPTimeout,
		},
	}
}

// ConfigFromEnv builds a config from environment variables, after loading a
// .env file when one is present next to the process. Unset variables keep
// their defaults.
//
//	FRAGENT_DATA_DIR           badger directory
//	FRAGENT_WORKER_COUNT       per-run concurrency bound
//	FRAGENT_AGENT_SERVICE_URL  agent service base URL
func ConfigFromEnv() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if dir := os.Getenv("FRAGENT_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if raw := os.Getenv("FRAGENT_WORKER_COUNT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Engine.WorkerCount = n
		}
	}
	if url := os.Getenv("FRAGENT_AGENT_SERVICE_URL"); url != "" {
		cfg.Agent.ServiceURL = url
	}

	return cfg
}
