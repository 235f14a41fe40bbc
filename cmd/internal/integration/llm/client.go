// Package llm talks to OpenAI-compatible endpoints (Groq, OpenAI, local
// servers) for chat completions and embeddings.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client wraps one OpenAI-compatible endpoint with a fixed model.
type Client struct {
	client    *openai.Client
	endpoint  string
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Config holds configuration for creating a Client.
type Config struct {
	Endpoint  string // Base URL, e.g. "https://api.groq.com/openai/v1"
	Model     string
	APIKey    string
	MaxTokens int // Completion cap; ignored for embeddings
}

func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("llm"),
	}, nil
}

// Complete sends prompt as the only user message and returns the text of the
// first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("max_tokens", c.maxTokens))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err, c.model, c.endpoint)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeEmptyResponse, "no choices in response", nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector of input.
func (c *Client) Embed(ctx context.Context, input string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{input},
	})
	if err != nil {
		return nil, ClassifyError(err, c.model, c.endpoint)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, NewError(ErrorTypeEmptyResponse, "no embedding in response", nil)
	}
	return resp.Data[0].Embedding, nil
}

func (c *Client) Model() string {
	return c.model
}
