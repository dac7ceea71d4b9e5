package experiments

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/llm-lab/backend/internal/generator"
	"github.com/llm-lab/backend/internal/models"
)

func validRequest() models.CreateExperimentRequest {
	return models.CreateExperimentRequest{
		Prompt: "Explain how photosynthesis works",
		ParameterRanges: generator.ParameterRanges{
			Temperature:     []float64{0.2, 0.7},
			TopP:            []float64{0.95},
			TopK:            []int{40},
			MaxOutputTokens: []int{1024},
		},
	}
}

func TestCreateExperiment_RejectsEmptyPrompt(t *testing.T) {
	// Validation runs before any store access.
	svc := NewService(nil, nil)

	req := validRequest()
	req.Prompt = "   "

	_, err := svc.CreateExperiment(req)
	var verr *generator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got: %v", err)
	}
	if verr.Field != "prompt" {
		t.Errorf("expected prompt field, got %q", verr.Field)
	}
}

func TestCreateExperiment_RejectsOversizedPrompt(t *testing.T) {
	svc := NewService(nil, nil)

	req := validRequest()
	req.Prompt = strings.Repeat("x", maxPromptLength+1)

	_, err := svc.CreateExperiment(req)
	var verr *generator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got: %v", err)
	}
	if verr.Field != "prompt" {
		t.Errorf("expected prompt field, got %q", verr.Field)
	}
}

func TestCreateExperiment_RejectsInvalidRanges(t *testing.T) {
	svc := NewService(nil, nil)

	req := validRequest()
	req.ParameterRanges.Temperature = nil

	_, err := svc.CreateExperiment(req)
	var verr *generator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got: %v", err)
	}
	if verr.Field != "temperature" {
		t.Errorf("expected temperature field, got %q", verr.Field)
	}
}

func TestSweepReport_CountsOnlyAttempted(t *testing.T) {
	summaries := []models.GeneratedResponseSummary{
		{ID: "resp-1", Temperature: 0.1, Content: "stored text", OverallScore: 0.7},
	}

	// A 24-combination sweep canceled after 3 attempts: the 21 never reached
	// are neither generated nor failed.
	report := sweepReport("exp-1", 3, summaries)

	if report.TotalCombinations != 3 {
		t.Errorf("attempted = %d, want 3", report.TotalCombinations)
	}
	if report.GeneratedCount != 1 {
		t.Errorf("generated = %d, want 1", report.GeneratedCount)
	}
	if report.FailedCount != 2 {
		t.Errorf("failed = %d, want 2", report.FailedCount)
	}
}

func TestSweepReport_CarriesContent(t *testing.T) {
	report := sweepReport("exp-1", 1, []models.GeneratedResponseSummary{
		{
			ID:           "resp-1",
			Temperature:  0.7,
			TopP:         0.95,
			TopK:         40,
			MaxTokens:    2048,
			Content:      "The generated answer text.",
			OverallScore: 0.74,
			FinishReason: "STOP",
		},
	})

	body, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}

	var decoded models.GenerateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if len(decoded.Responses) != 1 {
		t.Fatalf("expected 1 response summary, got %d", len(decoded.Responses))
	}
	if decoded.Responses[0].Content != "The generated answer text." {
		t.Errorf("content = %q, want the stored text", decoded.Responses[0].Content)
	}
	if !strings.Contains(string(body), `"content":"The generated answer text."`) {
		t.Errorf("encoded report missing content field: %s", body)
	}
}
