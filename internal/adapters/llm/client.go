package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

// Client calls OpenAI-compatible chat completion endpoints directly, using
// the credentials configured on the component. A fresh API client is built
// per call because the endpoint and key vary per component; the underlying
// HTTP client is shared.
type Client struct {
	http        *http.Client
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

func NewClient(cfg domain.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultHTTPTimeout
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.With("component", "llm_client"),
	}
}

func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResult, error) {
	clientConfig := openai.DefaultConfig(req.APIKey)
	clientConfig.BaseURL = baseURL(req.APIURL)
	clientConfig.HTTPClient = c.http
	api := openai.NewClientWithConfig(clientConfig)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	c.logger.Debug("calling completion endpoint",
		"api_url", req.APIURL,
		"model", req.Model,
		"message_count", len(messages),
	)

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.logger.Error("completion call failed",
			"api_url", req.APIURL,
			"model", req.Model,
			"error", err.Error(),
		)
		return nil, domain.Error{
			Type:    domain.ErrorTypeUnavailable,
			Message: fmt.Sprintf("error calling API: %v", err),
			Details: map[string]interface{}{
				"api_url": req.APIURL,
				"model":   req.Model,
			},
		}
	}

	if len(resp.Choices) == 0 {
		return nil, domain.Error{
			Type:    domain.ErrorTypeUnavailable,
			Message: "completion endpoint returned no choices",
			Details: map[string]interface{}{"api_url": req.APIURL},
		}
	}

	return &ports.CompletionResult{
		Message: resp.Choices[0].Message.Content,
		Usage: map[string]interface{}{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}, nil
}

// baseURL normalizes a configured api_url to the client's base form: the
// original configuration style points at the full chat completions path.
func baseURL(apiURL string) string {
	trimmed := strings.TrimRight(apiURL, "/")
	return strings.TrimSuffix(trimmed, "/chat/completions")
}

// Timeout exposes the shared HTTP deadline, mostly for tests.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}
