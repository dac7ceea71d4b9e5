package experiments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/llm-lab/backend/internal/generator"
	"github.com/llm-lab/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.CreateExperiment(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetExperiment(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetExperiment(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) ListExperiments(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r, "limit", 10)
	offset := intQueryParam(r, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	resp, err := h.service.ListExperiments(limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list experiments"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Generate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = "overall_score"
	}
	order := r.URL.Query().Get("order")

	resp, err := h.service.ListResponses(mux.Vars(r)["id"], sortBy, order)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	detail, err := h.service.GetExperiment(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	responses, err := h.service.ListResponses(id, "overall_score", "desc")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch format {
	case "csv":
		exportCSV(w, &detail.Experiment, responses.Responses)
	case "json":
		exportJSON(w, &detail.Experiment, responses.Responses)
	default:
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Unsupported export format: " + format})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *generator.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: verr.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Experiment not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
