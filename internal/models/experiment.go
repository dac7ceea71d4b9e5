package models

import (
	"encoding/json"
	"time"

	"github.com/llm-lab/backend/internal/generator"
)

// Experiment is one parameter sweep: a prompt plus the ranges to explore.
type Experiment struct {
	ID              string                    `json:"id"`
	Prompt          string                    `json:"prompt"`
	ParameterRanges generator.ParameterRanges `json:"parameter_ranges"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// ExperimentSummary is the list-view projection of an experiment.
type ExperimentSummary struct {
	ID            string    `json:"id"`
	Prompt        string    `json:"prompt"`
	ResponseCount int       `json:"response_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Response is one stored generation result. TopK and MaxTokens are pointers
// because older rows predate those columns.
type Response struct {
	ID           string           `json:"id"`
	ExperimentID string           `json:"experiment_id"`
	Temperature  float64          `json:"temperature"`
	TopP         float64          `json:"top_p"`
	TopK         *int             `json:"top_k"`
	MaxTokens    *int             `json:"max_tokens"`
	Content      string           `json:"content"`
	FinishReason string           `json:"finish_reason"`
	RawResponse  json.RawMessage  `json:"raw_response,omitempty"`
	Metrics      *ResponseMetrics `json:"metrics,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ResponseMetrics holds the flat quality scores persisted per response, plus
// the full metric breakdown as stored JSON.
type ResponseMetrics struct {
	CoherenceScore    float64         `json:"coherence_score"`
	CompletenessScore float64         `json:"completeness_score"`
	LengthScore       float64         `json:"length_score"`
	ReadabilityScore  float64         `json:"readability_score"`
	StructureScore    float64         `json:"structure_score"`
	OverallScore      float64         `json:"overall_score"`
	Details           json.RawMessage `json:"details,omitempty"`
}

type CreateExperimentRequest struct {
	Prompt          string                    `json:"prompt"`
	ParameterRanges generator.ParameterRanges `json:"parameter_ranges"`
}

type CreateExperimentResponse struct {
	Experiment        Experiment `json:"experiment"`
	TotalCombinations int        `json:"total_combinations"`
}

// GenerateResponse reports the outcome of running an experiment's sweep.
type GenerateResponse struct {
	ExperimentID      string                     `json:"experiment_id"`
	TotalCombinations int                        `json:"total_combinations"`
	GeneratedCount    int                        `json:"generated_count"`
	FailedCount       int                        `json:"failed_count"`
	Responses         []GeneratedResponseSummary `json:"responses"`
}

// GeneratedResponseSummary is the per-combination line item of a sweep run:
// the stored parameters, content, and overall score.
type GeneratedResponseSummary struct {
	ID           string  `json:"id"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	TopK         int     `json:"top_k"`
	MaxTokens    int     `json:"max_tokens"`
	Content      string  `json:"content"`
	OverallScore float64 `json:"overall_score"`
	FinishReason string  `json:"finish_reason"`
}

type ExperimentDetail struct {
	Experiment    Experiment `json:"experiment"`
	ResponseCount int        `json:"response_count"`
	Responses     []Response `json:"responses"`
}

type ExperimentListResponse struct {
	Experiments []ExperimentSummary `json:"experiments"`
	Total       int                 `json:"total"`
}

type ResponseListResponse struct {
	ExperimentID string     `json:"experiment_id"`
	Responses    []Response `json:"responses"`
	Total        int        `json:"total"`
}
