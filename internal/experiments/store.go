package experiments

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/llm-lab/backend/internal/generator"
	"github.com/llm-lab/backend/internal/metrics"
	"github.com/llm-lab/backend/internal/models"
)

// ErrNotFound is returned when an experiment id does not exist.
var ErrNotFound = errors.New("experiment not found")

// responseSortColumns whitelists the sortable columns of the responses
// listing. Anything else falls back to created_at.
var responseSortColumns = map[string]string{
	"overall_score":      "m.overall_score",
	"coherence_score":    "m.coherence_score",
	"completeness_score": "m.completeness_score",
	"temperature":        "r.temperature",
	"created_at":         "r.created_at",
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Experiments ─────────────────────────────────────────

func (s *Store) CreateExperiment(prompt string, ranges generator.ParameterRanges) (*models.Experiment, error) {
	rangesJSON, err := json.Marshal(ranges)
	if err != nil {
		return nil, fmt.Errorf("marshal parameter ranges: %w", err)
	}

	exp := models.Experiment{
		ID:              uuid.NewString(),
		Prompt:          prompt,
		ParameterRanges: ranges,
	}
	err = s.db.QueryRow(
		`INSERT INTO experiments (id, prompt, parameter_ranges, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		exp.ID, exp.Prompt, rangesJSON, time.Now(), time.Now(),
	).Scan(&exp.CreatedAt, &exp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert experiment: %w", err)
	}
	return &exp, nil
}

func (s *Store) GetExperiment(id string) (*models.Experiment, error) {
	var exp models.Experiment
	var rangesJSON []byte
	err := s.db.QueryRow(
		`SELECT id, prompt, parameter_ranges, created_at, updated_at
		 FROM experiments WHERE id = $1`,
		id,
	).Scan(&exp.ID, &exp.Prompt, &rangesJSON, &exp.CreatedAt, &exp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get experiment: %w", err)
	}
	if err := json.Unmarshal(rangesJSON, &exp.ParameterRanges); err != nil {
		return nil, fmt.Errorf("unmarshal parameter ranges: %w", err)
	}
	return &exp, nil
}

func (s *Store) ListExperiments(limit, offset int) ([]models.ExperimentSummary, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM experiments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count experiments: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT e.id, e.prompt, COUNT(r.id), e.created_at
		 FROM experiments e
		 LEFT JOIN responses r ON r.experiment_id = e.id
		 GROUP BY e.id
		 ORDER BY e.updated_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	summaries := []models.ExperimentSummary{}
	for rows.Next() {
		var sum models.ExperimentSummary
		if err := rows.Scan(&sum.ID, &sum.Prompt, &sum.ResponseCount, &sum.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan experiment summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, total, rows.Err()
}

// ── Responses ───────────────────────────────────────────

// SaveResponse persists one generation result and its quality metrics in a
// single transaction and bumps the experiment's updated_at.
func (s *Store) SaveResponse(experimentID string, params generator.Combination, outcome generator.Outcome, quality metrics.QualityMetrics) (*models.Response, error) {
	rawJSON, err := json.Marshal(outcome.RawMetadata)
	if err != nil {
		return nil, fmt.Errorf("marshal raw metadata: %w", err)
	}
	detailsJSON, err := json.Marshal(quality)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	topK := params.TopK
	maxTokens := params.MaxOutputTokens
	resp := models.Response{
		ID:           uuid.NewString(),
		ExperimentID: experimentID,
		Temperature:  params.Temperature,
		TopP:         params.TopP,
		TopK:         &topK,
		MaxTokens:    &maxTokens,
		Content:      outcome.Content,
		FinishReason: outcome.FinishReason,
		RawResponse:  rawJSON,
	}
	err = tx.QueryRow(
		`INSERT INTO responses (id, experiment_id, temperature, top_p, top_k, max_tokens, content, finish_reason, raw_response, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		resp.ID, resp.ExperimentID, resp.Temperature, resp.TopP, resp.TopK, resp.MaxTokens,
		resp.Content, resp.FinishReason, rawJSON, time.Now(),
	).Scan(&resp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert response: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO response_metrics (response_id, coherence_score, completeness_score, length_score, readability_score, structure_score, overall_score, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		resp.ID, quality.CoherenceScore, quality.CompletenessScore, quality.LengthScore,
		quality.ReadabilityScore, quality.StructureScore, quality.OverallScore, detailsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("insert metrics: %w", err)
	}

	_, err = tx.Exec(`UPDATE experiments SET updated_at = NOW() WHERE id = $1`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("touch experiment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit response: %w", err)
	}

	resp.Metrics = &models.ResponseMetrics{
		CoherenceScore:    quality.CoherenceScore,
		CompletenessScore: quality.CompletenessScore,
		LengthScore:       quality.LengthScore,
		ReadabilityScore:  quality.ReadabilityScore,
		StructureScore:    quality.StructureScore,
		OverallScore:      quality.OverallScore,
		Details:           detailsJSON,
	}
	return &resp, nil
}

// ListResponses returns an experiment's responses with their metrics, sorted
// by a whitelisted column. Score sorts default to descending.
func (s *Store) ListResponses(experimentID, sortBy, order string) ([]models.Response, error) {
	column, ok := responseSortColumns[sortBy]
	if !ok {
		column = "r.created_at"
	}
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.experiment_id, r.temperature, r.top_p, r.top_k, r.max_tokens,
		        r.content, r.finish_reason, r.raw_response, r.created_at,
		        m.coherence_score, m.completeness_score, m.length_score,
		        m.readability_score, m.structure_score, m.overall_score, m.details
		 FROM responses r
		 LEFT JOIN response_metrics m ON m.response_id = r.id
		 WHERE r.experiment_id = $1
		 ORDER BY `+column+` `+direction+` NULLS LAST`,
		experimentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		var resp models.Response
		var raw []byte
		var coherence, completeness, length, readability, structure, overall sql.NullFloat64
		var details []byte
		err := rows.Scan(&resp.ID, &resp.ExperimentID, &resp.Temperature, &resp.TopP,
			&resp.TopK, &resp.MaxTokens, &resp.Content, &resp.FinishReason, &raw, &resp.CreatedAt,
			&coherence, &completeness, &length, &readability, &structure, &overall, &details)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		resp.RawResponse = raw
		if overall.Valid {
			resp.Metrics = &models.ResponseMetrics{
				CoherenceScore:    coherence.Float64,
				CompletenessScore: completeness.Float64,
				LengthScore:       length.Float64,
				ReadabilityScore:  readability.Float64,
				StructureScore:    structure.Float64,
				OverallScore:      overall.Float64,
				Details:           details,
			}
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}
