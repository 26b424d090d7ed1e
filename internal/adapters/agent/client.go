package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
	"github.com/fragent/fragent/internal/xjson"
)

// Client calls the external agent service's chat endpoint.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = domain.DefaultHTTPTimeout
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger.With("component", "agent_client"),
	}
}

func (c *Client) Chat(ctx context.Context, baseURL string, req ports.ChatRequest) (*ports.ChatResponse, error) {
	if req.History == nil {
		req.History = []ports.Message{}
	}

	body, err := xjson.Marshal(req)
	if err != nil {
		return nil, domain.Error{
			Type:    domain.ErrorTypeInternal,
			Message: "failed to serialize chat request",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	url := strings.TrimRight(baseURL, "/") + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.Error{
			Type:    domain.ErrorTypeInternal,
			Message: "failed to build chat request",
			Details: map[string]interface{}{"url": url, "error": err.Error()},
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling agent service", "url", url, "agent_id", req.AgentID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("agent service call failed", "url", url, "error", err.Error())
		return nil, domain.Error{
			Type:    domain.ErrorTypeUnavailable,
			Message: fmt.Sprintf("error calling agent service: %v", err),
			Details: map[string]interface{}{"url": url},
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Error{
			Type:    domain.ErrorTypeUnavailable,
			Message: "failed to read agent service response",
			Details: map[string]interface{}{"url": url, "error": err.Error()},
		}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("agent service returned error status",
			"url", url,
			"status_code", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, domain.Error{
			Type:    domain.ErrorTypeUnavailable,
			Message: fmt.Sprintf("error calling agent service: %d", resp.StatusCode),
			Details: map[string]interface{}{
				"status_code": resp.StatusCode,
				"details":     string(respBody),
			},
		}
	}

	var chatResp ports.ChatResponse
	if err := xjson.Unmarshal(respBody, &chatResp); err != nil {
		return nil, domain.Error{
			Type:    domain.ErrorTypeUnavailable,
			Message: "failed to decode agent service response",
			Details: map[string]interface{}{"url": url, "error": err.Error()},
		}
	}

	c.logger.Debug("agent service call completed", "url", url, "agent_id", req.AgentID)
	return &chatResp, nil
}
