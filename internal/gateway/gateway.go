package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/llmstudio/studio-backend/internal/registry"
	openai "github.com/sashabaranov/go-openai"
)

// ErrUnknownModel is returned before any network call when the model key
// is not in the registry.
var ErrUnknownModel = errors.New("unknown model key")

// GatewayError wraps an upstream provider failure. Timeouts and 5xx are
// retryable; 4xx and malformed responses are not.
type GatewayError struct {
	Retryable bool
	Status    int
	Err       error
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("model gateway: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("model gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Turn is one prior exchange fed back to the provider as context.
type Turn struct {
	Role    string
	Content string
}

// ModelGateway maps logical model keys to chat-completion calls against
// OpenAI-compatible providers.
type ModelGateway struct {
	registry   *registry.Registry
	timeout    time.Duration
	httpClient *http.Client

	embedAPIKey  string
	embedAPIBase string
	embedModel   string
}

func NewModelGateway(reg *registry.Registry, cfg *config.Config) *ModelGateway {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ModelGateway{
		registry:     reg,
		timeout:      timeout,
		httpClient:   &http.Client{Timeout: timeout},
		embedAPIKey:  cfg.EmbeddingAPIKey,
		embedAPIBase: cfg.EmbeddingAPIBase,
		embedModel:   cfg.EmbeddingModel,
	}
}

func (g *ModelGateway) client(mc *registry.ModelConfig) *openai.Client {
	conf := openai.DefaultConfig(mc.APIKey())
	if mc.BaseURL != "" {
		conf.BaseURL = mc.BaseURL
	}
	conf.HTTPClient = g.httpClient
	return openai.NewClientWithConfig(conf)
}

// Invoke runs one chat completion. The call is bounded by the configured
// timeout regardless of the parent context.
func (g *ModelGateway) Invoke(ctx context.Context, modelKey, systemPrompt string, history []Turn, userText string, temperature float64) (string, error) {
	mc := g.registry.Get(modelKey)
	if mc == nil {
		return "", ErrUnknownModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, t := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    t.Role,
			Content: t.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client(mc).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       mc.Model,
		Messages:    messages,
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &GatewayError{Retryable: false, Err: errors.New("no choices in provider response")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns one embedding vector per input text.
func (g *ModelGateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	conf := openai.DefaultConfig(g.embedAPIKey)
	if g.embedAPIBase != "" {
		conf.BaseURL = g.embedAPIBase
	}
	conf.HTTPClient = g.httpClient
	client := openai.NewClientWithConfig(conf)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(g.embedModel),
	})
	if err != nil {
		return nil, classify(err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		retryable := apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == http.StatusTooManyRequests
		return &GatewayError{Retryable: retryable, Status: apiErr.HTTPStatusCode, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Retryable: true, Err: err}
	}
	return &GatewayError{Retryable: true, Err: err}
}
