package generator

import (
	"context"
	"log"
	"time"
)

// Pacing between successive generation calls. Larger sweeps back off more to
// stay under the service's per-caller rate limit.
const (
	largeSweepThreshold = 10
	largeSweepDelay     = 500 * time.Millisecond
	smallSweepDelay     = 300 * time.Millisecond
)

// SweepResult pairs one parameter combination with its generation outcome.
type SweepResult struct {
	Params  Combination
	Outcome Outcome
}

// Orchestrator drives a sweep strictly sequentially. One outbound call is in
// flight at a time; the loop waits for each to complete (or exhaust retries)
// before issuing the next.
type Orchestrator struct {
	client *Client
	sleep  func(time.Duration)
}

func NewOrchestrator(client *Client) *Orchestrator {
	return &Orchestrator{client: client, sleep: time.Sleep}
}

// Run generates one response per combination, in the order given, pacing
// between calls (not after the last). A failed combination is recorded and the
// sweep continues; a canceled context stops the sweep early, returning the
// results produced so far.
func (o *Orchestrator) Run(ctx context.Context, prompt string, combos []Combination) []SweepResult {
	delay := smallSweepDelay
	if len(combos) > largeSweepThreshold {
		delay = largeSweepDelay
	}

	results := make([]SweepResult, 0, len(combos))
	for i, params := range combos {
		if ctx.Err() != nil {
			log.Printf("[orchestrator] sweep canceled after %d of %d combinations", i, len(combos))
			break
		}

		outcome := o.client.Generate(ctx, prompt, params)
		if outcome.Failure != nil {
			log.Printf("[orchestrator] combination %d/%d failed: %s: %s",
				i+1, len(combos), outcome.Failure.Kind, outcome.Failure.Message)
		}
		results = append(results, SweepResult{Params: params, Outcome: outcome})

		if i < len(combos)-1 {
			o.sleep(delay)
		}
	}
	return results
}
