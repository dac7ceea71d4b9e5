package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// scriptedLLM answers per-combination based on temperature, so tests can make
// specific combinations fail while others succeed.
type scriptedLLM struct {
	failTemp float64
	failErr  error
	calls    []Combination
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, params Combination) (*LLMResponse, error) {
	s.calls = append(s.calls, params)
	if s.failErr != nil && params.Temperature == s.failTemp {
		return nil, s.failErr
	}
	return &LLMResponse{
		Content:      fmt.Sprintf("response at temperature %.1f", params.Temperature),
		FinishReason: "STOP",
	}, nil
}

func newTestOrchestrator(llm LLMClient) (*Orchestrator, *[]time.Duration) {
	var paced []time.Duration
	client := NewClient(llm)
	client.sleep = func(time.Duration) {}
	o := NewOrchestrator(client)
	o.sleep = func(d time.Duration) { paced = append(paced, d) }
	return o, &paced
}

func sweepCombos(temps ...float64) []Combination {
	combos := make([]Combination, len(temps))
	for i, temp := range temps {
		combos[i] = Combination{Temperature: temp, TopP: 0.95, TopK: 40, MaxOutputTokens: 2048}
	}
	return combos
}

func TestRun_PreservesOrderAndPacing(t *testing.T) {
	llm := &scriptedLLM{}
	o, paced := newTestOrchestrator(llm)

	combos := sweepCombos(0.1, 0.5, 0.9)
	results := o.Run(context.Background(), "prompt", combos)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Params != combos[i] {
			t.Errorf("result %d out of order: %+v", i, r.Params)
		}
		if !r.Outcome.OK() {
			t.Errorf("result %d: unexpected failure %+v", i, r.Outcome.Failure)
		}
	}

	// Pacing between calls only, not after the last: 2 delays of 300ms.
	if len(*paced) != 2 {
		t.Fatalf("expected 2 pacing delays, got %v", *paced)
	}
	for i, d := range *paced {
		if d != 300*time.Millisecond {
			t.Errorf("delay %d: expected 300ms for a small sweep, got %v", i, d)
		}
	}
}

func TestRun_LargeSweepPacing(t *testing.T) {
	llm := &scriptedLLM{}
	o, paced := newTestOrchestrator(llm)

	combos := make([]Combination, 11)
	for i := range combos {
		combos[i] = Combination{Temperature: float64(i) * 0.1, TopP: 0.95, TopK: 40, MaxOutputTokens: 2048}
	}
	o.Run(context.Background(), "prompt", combos)

	if len(*paced) != 10 {
		t.Fatalf("expected 10 pacing delays, got %d", len(*paced))
	}
	for i, d := range *paced {
		if d != 500*time.Millisecond {
			t.Errorf("delay %d: expected 500ms for a sweep of more than 10, got %v", i, d)
		}
	}
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	llm := &scriptedLLM{failTemp: 0.5, failErr: errors.New("invalid api key")}
	o, _ := newTestOrchestrator(llm)

	results := o.Run(context.Background(), "prompt", sweepCombos(0.1, 0.5, 0.9))

	if len(results) != 3 {
		t.Fatalf("a fatal failure must not abort the sweep; got %d results", len(results))
	}
	if results[0].Outcome.Failure != nil {
		t.Errorf("first combination should succeed, got %+v", results[0].Outcome.Failure)
	}
	if results[1].Outcome.Failure == nil || results[1].Outcome.Failure.Kind != FailureUnauthorized {
		t.Errorf("second combination should fail unauthorized, got %+v", results[1].Outcome.Failure)
	}
	if results[2].Outcome.Failure != nil {
		t.Errorf("third combination should succeed, got %+v", results[2].Outcome.Failure)
	}
}

func TestRun_FailedOutcomesInLogButNotStorable(t *testing.T) {
	llm := &scriptedLLM{failTemp: 0.5, failErr: errors.New("boom")}
	o, _ := newTestOrchestrator(llm)

	results := o.Run(context.Background(), "prompt", sweepCombos(0.1, 0.5, 0.9))

	storable := 0
	for _, r := range results {
		if r.Outcome.Storable() {
			storable++
		}
	}
	if storable != 2 {
		t.Errorf("expected 2 storable outcomes of 3, got %d", storable)
	}
}

func TestRun_CanceledContextStopsSweep(t *testing.T) {
	llm := &scriptedLLM{}
	o, _ := newTestOrchestrator(llm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := o.Run(ctx, "prompt", sweepCombos(0.1, 0.5, 0.9))
	if len(results) != 0 {
		t.Errorf("expected no results after cancellation, got %d", len(results))
	}
	if len(llm.calls) != 0 {
		t.Errorf("expected no outbound calls after cancellation, got %d", len(llm.calls))
	}
}
