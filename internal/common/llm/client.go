// internal/common/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"hr-assistant/internal/common/config"
	commonhttp "hr-assistant/internal/common/http"
	"hr-assistant/internal/common/metrics"
)

var (
	ErrEmptyCompletion = errors.New("LLM_EMPTY_COMPLETION")
	ErrLLMUnavailable  = errors.New("LLM_UNAVAILABLE")
	ErrEmbeddingFailed = errors.New("EMBEDDING_FAILED")
)

// Completer sends a single prompt to a text-completion model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder turns texts into fixed-length vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Client talks to any OpenAI-compatible endpoint. Ollama exposes one under
// <host>:11434/v1, which is the default deployment.
type Client struct {
	api            *openai.Client
	embedAPI       *openai.Client
	model          string
	embeddingModel string
	dimensions     int
	temperature    float32
	maxTokens      int
}

func NewClient(llmCfg config.LLMConfig, embCfg config.EmbeddingConfig) *Client {
	httpClient := commonhttp.NewClient(config.GetDuration(llmCfg.Timeout), llmCfg.MaxRetries)

	apiKey := llmCfg.APIKey
	if apiKey == "" {
		// Ollama ignores the key but the client refuses an empty bearer.
		apiKey = "ollama"
	}

	chatCfg := openai.DefaultConfig(apiKey)
	chatCfg.BaseURL = llmCfg.BaseURL
	chatCfg.HTTPClient = httpClient

	embedCfg := openai.DefaultConfig(apiKey)
	embedCfg.BaseURL = embCfg.BaseURL
	if embedCfg.BaseURL == "" {
		embedCfg.BaseURL = llmCfg.BaseURL
	}
	embedCfg.HTTPClient = httpClient

	return &Client{
		api:            openai.NewClientWithConfig(chatCfg),
		embedAPI:       openai.NewClientWithConfig(embedCfg),
		model:          llmCfg.Model,
		embeddingModel: embCfg.Model,
		dimensions:     embCfg.Dimensions,
		temperature:    llmCfg.Temperature,
		maxTokens:      llmCfg.MaxTokens,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues("complete", "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	metrics.LLMRequestDuration.WithLabelValues("complete", "ok").Observe(time.Since(start).Seconds())

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	start := time.Now()

	resp, err := c.embedAPI.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.embeddingModel),
		Dimensions: c.dimensions,
	})
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues("embed", "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	metrics.LLMRequestDuration.WithLabelValues("embed", "ok").Observe(time.Since(start).Seconds())

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrEmbeddingFailed, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrEmbeddingFailed, item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
