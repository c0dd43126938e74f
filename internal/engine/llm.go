package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Chat roles accepted by the completions endpoint.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one turn of a chat-completions request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatUsage is the token accounting reported by the provider.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is the decoded provider answer.
type ChatResult struct {
	Content string
	Model   string
	Usage   ChatUsage
}

// ChatCompleter is the provider contract used by insight generation.
// A nil ChatCompleter means the provider is not configured.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (*ChatResult, error)
}

// StatusError is a non-2xx provider response with the raw body preserved.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("azure openai: status %d: %s", e.Status, TruncateRunes(e.Body, 300, "..."))
}

// AzureClient talks to an Azure OpenAI chat-completions deployment.
type AzureClient struct {
	endpoint   string
	deployment string
	apiVersion string
	key        string
	effort     string
	limiter    *rate.Limiter
	hc         *http.Client
}

// NewAzureClient builds a client from the engine configuration.
// Returns nil when the endpoint/deployment/key triple is incomplete.
func NewAzureClient() *AzureClient {
	if !Cfg.AzureConfigured() {
		return nil
	}
	limit := rate.Inf
	if Cfg.LLMRPS > 0 {
		limit = rate.Limit(Cfg.LLMRPS)
	}
	hc := Cfg.HTTPClient
	if hc == nil {
		timeout := Cfg.LLMTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	apiVersion := Cfg.AzureAPIVersion
	if apiVersion == "" {
		apiVersion = "2025-01-01-preview"
	}
	return &AzureClient{
		endpoint:   strings.TrimRight(Cfg.AzureEndpoint, "/"),
		deployment: Cfg.AzureDeployment,
		apiVersion: apiVersion,
		key:        Cfg.AzureKey,
		effort:     Cfg.ReasoningEffort,
		limiter:    rate.NewLimiter(limit, 1),
		hc:         hc,
	}
}

type chatRequest struct {
	Messages        []ChatMessage `json:"messages"`
	ReasoningEffort string        `json:"reasoning_effort,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage ChatUsage `json:"usage"`
}

// Complete sends one chat-completions request and decodes the first choice.
func (c *AzureClient) Complete(ctx context.Context, messages []ChatMessage) (*ChatResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("llm rate limit: %w", err)
	}
	IncrLLMCalls()

	u := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(c.deployment), url.QueryEscape(c.apiVersion))
	body, err := json.Marshal(chatRequest{Messages: messages, ReasoningEffort: c.effort})
	if err != nil {
		IncrLLMErrors()
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		IncrLLMErrors()
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.key)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		IncrLLMErrors()
		return nil, fmt.Errorf("call azure openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		IncrLLMErrors()
		return nil, fmt.Errorf("read azure response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		IncrLLMErrors()
		return nil, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		IncrLLMErrors()
		return nil, fmt.Errorf("decode azure response: %w", err)
	}
	if len(out.Choices) == 0 {
		IncrLLMErrors()
		return nil, fmt.Errorf("azure openai: empty choices")
	}

	slog.Debug("llm call done",
		slog.String("model", out.Model),
		slog.Int("total_tokens", out.Usage.TotalTokens),
		slog.Duration("elapsed", time.Since(start)))

	return &ChatResult{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
		Usage:   out.Usage,
	}, nil
}
