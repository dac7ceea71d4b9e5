package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// LLMClient is the raw boundary to the external generation service. Implementations
// return the service's error as-is; classification happens in Client.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params Combination) (*LLMResponse, error)
}

// LLMResponse holds one raw generation result.
type LLMResponse struct {
	Content      string
	FinishReason string
	RawMetadata  map[string]any
}

const (
	maxRetries     = 3
	baseRetryDelay = 1000 * time.Millisecond
)

// Client wraps an LLMClient with failure classification and bounded
// exponential-backoff retry for transient overload.
type Client struct {
	llm   LLMClient
	sleep func(time.Duration)
}

func NewClient(llm LLMClient) *Client {
	return &Client{llm: llm, sleep: time.Sleep}
}

// Generate issues one generation call for the given prompt and parameters.
// Transient overload is retried up to maxRetries times with delays of 1s, 2s, 4s;
// every other failure is classified and returned immediately. Retries are
// synchronous — the caller waits.
func (c *Client) Generate(ctx context.Context, prompt string, params Combination) Outcome {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay << uint(attempt-1)
			log.Printf("[generator] service overloaded, retrying in %v (attempt %d/%d)", delay, attempt, maxRetries)
			c.sleep(delay)
		}

		resp, err := c.llm.Generate(ctx, prompt, params.withDefaults())
		if err == nil {
			return Outcome{
				Content:      resp.Content,
				FinishReason: resp.FinishReason,
				RawMetadata:  resp.RawMetadata,
			}
		}
		lastErr = err

		if !isTransient(err) {
			return Outcome{Failure: classifyFailure(err)}
		}
	}

	return Outcome{Failure: &Failure{
		Kind:    FailureOverloaded,
		Message: fmt.Sprintf("The model is currently overloaded. Please try again in a few moments. (last error: %v)", lastErr),
	}}
}

// isTransient matches the overload phrasings the service uses when a retry may help.
func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "503") ||
		strings.Contains(msg, "service unavailable") ||
		strings.Contains(msg, "try again later") ||
		strings.Contains(msg, "overloaded")
}

// classifyFailure maps a service error message to a failure kind. The service
// exposes no structured error codes, so this is substring matching on the
// human-readable message.
func classifyFailure(err error) *Failure {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return &Failure{Kind: FailureRateLimited, Message: "Rate limit exceeded. Please try again later."}
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted"):
		return &Failure{Kind: FailureQuotaExceeded, Message: "API quota exceeded. Please check your billing."}
	case strings.Contains(msg, "api key") || strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return &Failure{Kind: FailureUnauthorized, Message: "Invalid API key. Please check your credentials."}
	default:
		return &Failure{Kind: FailureUnknown, Message: err.Error()}
	}
}

// NewLLMClientFromEnv picks the backing implementation from the environment.
// The returned value is meant to be injected into NewClient so tests can
// substitute a fake without touching globals.
func NewLLMClientFromEnv() LLMClient {
	if os.Getenv("MOCK_GENERATOR") == "true" {
		log.Println("Generator using mock responses")
		return NewMockClient()
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	log.Println("Generator using Anthropic API:", model)
	return NewAPIClient(model)
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, prompt string, params Combination) (*LLMResponse, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(params.MaxOutputTokens),
		Temperature: param.NewOpt(params.Temperature),
		TopP:        param.NewOpt(params.TopP),
		TopK:        param.NewOpt(int64(params.TopK)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		FinishReason: string(message.StopReason),
		RawMetadata: map[string]any{
			"id":            message.ID,
			"model":         string(message.Model),
			"stop_reason":   string(message.StopReason),
			"input_tokens":  message.Usage.InputTokens,
			"output_tokens": message.Usage.OutputTokens,
		},
	}, nil
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, prompt string, params Combination) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      buildMockContent(prompt, params),
		FinishReason: "STOP",
		RawMetadata: map[string]any{
			"mock":        true,
			"temperature": params.Temperature,
			"top_p":       params.TopP,
		},
	}, nil
}

func buildMockContent(prompt string, params Combination) string {
	topic := strings.TrimSpace(prompt)
	if len(topic) > 60 {
		topic = topic[:60]
	}
	return fmt.Sprintf(`This mock response addresses the request about %s in a structured way. The opening paragraph introduces the topic and frames the discussion with enough context to stand on its own.

However, the details matter as much as the framing. A second paragraph expands on the request with concrete observations, and it deliberately varies sentence length to read naturally. Short sentences help. Longer sentences give the scorer something to measure when it computes averages and variance across the whole response.

Therefore, the closing paragraph summarizes the main points and ends on a complete thought. Generated at temperature %.2f with nucleus sampling probability %.2f.`,
		topic, params.Temperature, params.TopP)
}
