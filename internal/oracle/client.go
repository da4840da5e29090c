package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Completer is the completion backend used by the Navigator and Classifier.
// Implementations return the raw assistant text for one system+user exchange.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int64) (string, error)
}

// completionTemperature is fixed low: navigation and relevance decisions
// should be repeatable, not creative.
const completionTemperature = 0.2

// ClientConfig configures the OpenAI-backed Completer.
type ClientConfig struct {
	// APIKey authenticates against the API. Required.
	APIKey string

	// Model is the completion model name, e.g. "gpt-4o-mini".
	Model string

	// BaseURL overrides the API endpoint. Empty means the default.
	BaseURL string

	// Timeout bounds one completion request.
	Timeout time.Duration

	// Logger records request diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Client is a Completer backed by the OpenAI chat completions API.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Complete sends one system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: openai.Int(maxTokens),
		Temperature:         openai.Float(completionTemperature),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	c.logger.Debug("completion finished",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason,
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
