// Package experiments implements parameter-sweep experiments: creating them,
// running the sweep against the generation service, scoring and persisting the
// results, and serving them back sorted or exported.
package experiments

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/llm-lab/backend/internal/generator"
	"github.com/llm-lab/backend/internal/metrics"
	"github.com/llm-lab/backend/internal/models"
)

const maxPromptLength = 10000

type Service struct {
	store *Store
	orch  *generator.Orchestrator
}

func NewService(store *Store, orch *generator.Orchestrator) *Service {
	return &Service{store: store, orch: orch}
}

// CreateExperiment validates the prompt and ranges and stores the experiment.
// The ranges are expanded once here to reject invalid sweeps before anything
// is persisted.
func (s *Service) CreateExperiment(req models.CreateExperimentRequest) (*models.CreateExperimentResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, &generator.ValidationError{Field: "prompt", Reason: "prompt is required"}
	}
	if len(prompt) > maxPromptLength {
		return nil, &generator.ValidationError{Field: "prompt", Reason: fmt.Sprintf("prompt exceeds %d characters", maxPromptLength)}
	}

	combos, err := generator.ExpandCombinations(req.ParameterRanges)
	if err != nil {
		return nil, err
	}

	exp, err := s.store.CreateExperiment(prompt, req.ParameterRanges)
	if err != nil {
		return nil, err
	}

	return &models.CreateExperimentResponse{
		Experiment:        *exp,
		TotalCombinations: len(combos),
	}, nil
}

func (s *Service) GetExperiment(id string) (*models.ExperimentDetail, error) {
	exp, err := s.store.GetExperiment(id)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(id, "created_at", "asc")
	if err != nil {
		return nil, err
	}
	return &models.ExperimentDetail{
		Experiment:    *exp,
		ResponseCount: len(responses),
		Responses:     responses,
	}, nil
}

func (s *Service) ListExperiments(limit, offset int) (*models.ExperimentListResponse, error) {
	summaries, total, err := s.store.ListExperiments(limit, offset)
	if err != nil {
		return nil, err
	}
	return &models.ExperimentListResponse{Experiments: summaries, Total: total}, nil
}

// Generate runs the experiment's full sweep: expand the stored ranges, drive
// the generation service one combination at a time, score what came back, and
// persist everything usable. Failed combinations are counted but not stored.
func (s *Service) Generate(ctx context.Context, experimentID string) (*models.GenerateResponse, error) {
	exp, err := s.store.GetExperiment(experimentID)
	if err != nil {
		return nil, err
	}

	combos, err := generator.ExpandCombinations(exp.ParameterRanges)
	if err != nil {
		return nil, err
	}

	log.Printf("[experiments] running sweep %s: %d combinations", exp.ID, len(combos))
	results := s.orch.Run(ctx, exp.Prompt, combos)

	summaries := []models.GeneratedResponseSummary{}
	for _, result := range results {
		if !result.Outcome.Storable() {
			continue
		}

		quality := metrics.Calculate(result.Outcome.Content, metrics.Options{Prompt: exp.Prompt})
		saved, err := s.store.SaveResponse(exp.ID, result.Params, result.Outcome, quality)
		if err != nil {
			log.Printf("[experiments] failed to save response for sweep %s: %v", exp.ID, err)
			continue
		}

		summaries = append(summaries, models.GeneratedResponseSummary{
			ID:           saved.ID,
			Temperature:  result.Params.Temperature,
			TopP:         result.Params.TopP,
			TopK:         result.Params.TopK,
			MaxTokens:    result.Params.MaxOutputTokens,
			Content:      saved.Content,
			OverallScore: quality.OverallScore,
			FinishReason: saved.FinishReason,
		})
	}

	log.Printf("[experiments] sweep %s done: %d of %d attempted stored", exp.ID, len(summaries), len(results))
	return sweepReport(exp.ID, len(results), summaries), nil
}

// sweepReport builds the sweep response from what was actually attempted.
// Combinations never reached (early cancellation) are neither attempted nor
// failed; failed means attempted but not stored.
func sweepReport(experimentID string, attempted int, summaries []models.GeneratedResponseSummary) *models.GenerateResponse {
	return &models.GenerateResponse{
		ExperimentID:      experimentID,
		TotalCombinations: attempted,
		GeneratedCount:    len(summaries),
		FailedCount:       attempted - len(summaries),
		Responses:         summaries,
	}
}

func (s *Service) ListResponses(experimentID, sortBy, order string) (*models.ResponseListResponse, error) {
	if _, err := s.store.GetExperiment(experimentID); err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(experimentID, sortBy, order)
	if err != nil {
		return nil, err
	}
	return &models.ResponseListResponse{
		ExperimentID: experimentID,
		Responses:    responses,
		Total:        len(responses),
	}, nil
}
