package experiments

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/llm-lab/backend/internal/models"
)

var csvHeader = []string{
	"id", "temperature", "top_p", "top_k", "max_tokens", "finish_reason",
	"coherence_score", "completeness_score", "length_score",
	"readability_score", "structure_score", "overall_score",
	"content", "created_at",
}

func exportCSV(w http.ResponseWriter, exp *models.Experiment, responses []models.Response) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="experiment-%s.csv"`, exp.ID))

	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, resp := range responses {
		cw.Write(responseCSVRow(resp))
	}
	cw.Flush()
}

func responseCSVRow(resp models.Response) []string {
	row := []string{
		resp.ID,
		strconv.FormatFloat(resp.Temperature, 'f', -1, 64),
		strconv.FormatFloat(resp.TopP, 'f', -1, 64),
		optionalInt(resp.TopK),
		optionalInt(resp.MaxTokens),
		resp.FinishReason,
	}
	if resp.Metrics != nil {
		row = append(row,
			formatScore(resp.Metrics.CoherenceScore),
			formatScore(resp.Metrics.CompletenessScore),
			formatScore(resp.Metrics.LengthScore),
			formatScore(resp.Metrics.ReadabilityScore),
			formatScore(resp.Metrics.StructureScore),
			formatScore(resp.Metrics.OverallScore),
		)
	} else {
		row = append(row, "", "", "", "", "", "")
	}
	return append(row, resp.Content, resp.CreatedAt.Format(time.RFC3339))
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func exportJSON(w http.ResponseWriter, exp *models.Experiment, responses []models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="experiment-%s.json"`, exp.ID))

	json.NewEncoder(w).Encode(map[string]interface{}{
		"experiment": exp,
		"responses":  responses,
	})
}
