package generator

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeLLM fails scriptedErrs[i] on call i, then succeeds.
type fakeLLM struct {
	scriptedErrs []error
	calls        int
	lastParams   Combination
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, params Combination) (*LLMResponse, error) {
	f.lastParams = params
	call := f.calls
	f.calls++
	if call < len(f.scriptedErrs) && f.scriptedErrs[call] != nil {
		return nil, f.scriptedErrs[call]
	}
	return &LLMResponse{Content: "generated text", FinishReason: "STOP"}, nil
}

func newTestClient(llm LLMClient) (*Client, *[]time.Duration) {
	var slept []time.Duration
	c := NewClient(llm)
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestGenerate_Success(t *testing.T) {
	llm := &fakeLLM{}
	c, slept := newTestClient(llm)

	outcome := c.Generate(context.Background(), "hello", Combination{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 2048})
	if !outcome.OK() {
		t.Fatalf("expected success, got failure: %+v", outcome.Failure)
	}
	if outcome.Content != "generated text" {
		t.Errorf("unexpected content: %q", outcome.Content)
	}
	if len(*slept) != 0 {
		t.Errorf("expected no backoff sleeps on success, got %v", *slept)
	}
}

func TestGenerate_AppliesDefaults(t *testing.T) {
	llm := &fakeLLM{}
	c, _ := newTestClient(llm)

	c.Generate(context.Background(), "hello", Combination{Temperature: 0.7, TopP: 0.95})
	if llm.lastParams.TopK != DefaultTopK {
		t.Errorf("expected default top_k %d at the service boundary, got %d", DefaultTopK, llm.lastParams.TopK)
	}
	if llm.lastParams.MaxOutputTokens != DefaultMaxOutputTokens {
		t.Errorf("expected default max_output_tokens %d, got %d", DefaultMaxOutputTokens, llm.lastParams.MaxOutputTokens)
	}
}

func TestGenerate_TransientRetrySchedule(t *testing.T) {
	overload := errors.New("503 Service Unavailable, please try again later")
	llm := &fakeLLM{scriptedErrs: []error{overload, overload, nil}}
	c, slept := newTestClient(llm)

	outcome := c.Generate(context.Background(), "hello", Combination{Temperature: 0.7, TopP: 0.95})
	if !outcome.OK() {
		t.Fatalf("expected success after retries, got: %+v", outcome.Failure)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestGenerate_OverloadedAfterMaxRetries(t *testing.T) {
	overload := errors.New("the model is overloaded")
	llm := &fakeLLM{scriptedErrs: []error{overload, overload, overload, overload, overload}}
	c, slept := newTestClient(llm)

	outcome := c.Generate(context.Background(), "hello", Combination{Temperature: 0.7, TopP: 0.95})
	if outcome.OK() {
		t.Fatal("expected failure after exhausting retries")
	}
	if outcome.Failure.Kind != FailureOverloaded {
		t.Errorf("expected overloaded failure, got %s", outcome.Failure.Kind)
	}
	if llm.calls != 4 {
		t.Errorf("expected 1 initial call + 3 retries = 4 calls, got %d", llm.calls)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected backoff %v, got %v", want, *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestGenerate_FatalClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind FailureKind
	}{
		{"429 status", errors.New("got HTTP 429 from upstream"), FailureRateLimited},
		{"rate limit phrase", errors.New("Rate limit hit for this key"), FailureRateLimited},
		{"quota", errors.New("monthly quota exhausted"), FailureQuotaExceeded},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED: too many tokens"), FailureQuotaExceeded},
		{"api key", errors.New("invalid API key provided"), FailureUnauthorized},
		{"401 status", errors.New("401 from server"), FailureUnauthorized},
		{"anything else", errors.New("connection reset by peer"), FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{scriptedErrs: []error{tt.err}}
			c, slept := newTestClient(llm)

			outcome := c.Generate(context.Background(), "hello", Combination{Temperature: 0.7, TopP: 0.95})
			if outcome.OK() {
				t.Fatal("expected failure")
			}
			if outcome.Failure.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, outcome.Failure.Kind)
			}
			if llm.calls != 1 {
				t.Errorf("fatal errors must not be retried; got %d calls", llm.calls)
			}
			if len(*slept) != 0 {
				t.Errorf("fatal errors must not sleep; got %v", *slept)
			}
		})
	}
}

func TestOutcome_Storable(t *testing.T) {
	tests := []struct {
		name     string
		outcome  Outcome
		storable bool
	}{
		{"plain success", Outcome{Content: "All good here.", FinishReason: "STOP"}, true},
		{"classified failure", Outcome{Failure: &Failure{Kind: FailureUnknown, Message: "boom"}}, false},
		{"error finish reason", Outcome{Content: "partial", FinishReason: "ERROR"}, false},
		{"error prefix", Outcome{Content: "Error: boom", FinishReason: "STOP"}, false},
		{"rate limit signature", Outcome{Content: "Rate limit exceeded. Please try again later.", FinishReason: "STOP"}, false},
		{"quota signature", Outcome{Content: "API quota exceeded. Please check your billing.", FinishReason: "STOP"}, false},
		{"invalid key signature", Outcome{Content: "Invalid API key. Please check your credentials.", FinishReason: "STOP"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.Storable(); got != tt.storable {
				t.Errorf("Storable() = %v, expected %v", got, tt.storable)
			}
		})
	}
}
