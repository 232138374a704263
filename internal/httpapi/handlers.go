package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Handlers serves the questionnaire over JSON/HTTP.
type Handlers struct {
	recommender RecommenderService
	logger      *zap.Logger
}

func NewHandlers(recommender RecommenderService, logger *zap.Logger) *Handlers {
	if recommender == nil {
		panic("nil RecommenderService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{recommender: recommender, logger: logger.Named("http-handler")}
}

type answerRequest struct {
	Node   string `json:"node"`
	Choice string `json:"choice"`
}

// StartSession handles POST /v1/sessions
func (h *Handlers) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.recommender.Start(ctx)
	if err != nil {
		h.handleError(w, "StartSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /v1/sessions/{id}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.recommender.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles POST /v1/sessions/{id}/answers
func (h *Handlers) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Node == "" || req.Choice == "" {
		writeError(w, http.StatusBadRequest, "node and choice are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.recommender.Answer(ctx, mux.Vars(r)["id"], q.NodeID(req.Node), req.Choice)
	if err != nil {
		h.handleError(w, "Answer", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Restart handles POST /v1/sessions/{id}/restart
func (h *Handlers) Restart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.recommender.Restart(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, "Restart", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// EndSession handles DELETE /v1/sessions/{id}
func (h *Handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.recommender.Discard(ctx, mux.Vars(r)["id"]); err != nil {
		h.handleError(w, "EndSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Catalog handles GET /v1/catalog
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.recommender.Catalog())
}

// RecommendationTally handles GET /v1/stats/recommendations?start=&end=
func (h *Handlers) RecommendationTally(w http.ResponseWriter, r *http.Request) {
	start, err := parseBound(r.URL.Query().Get("start"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start: "+err.Error())
		return
	}
	end, err := parseBound(r.URL.Query().Get("end"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end: "+err.Error())
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end date must be after start date")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tally, err := h.recommender.RecommendationTally(ctx, start, end)
	if err != nil {
		h.handleError(w, "RecommendationTally", err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

// parseBound accepts RFC 3339 or a bare date. A bare end date covers the whole day.
func parseBound(raw string, end bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.New("must be RFC 3339 or YYYY-MM-DD")
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (h *Handlers) handleError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		h.logger.Warn("request canceled", zap.String("op", op))
		writeError(w, http.StatusServiceUnavailable, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("request timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, q.ErrInvalidTransition):
		h.logger.Info("invalid answer", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrNoOutcomes):
		writeError(w, http.StatusNotFound, "no outcomes found for the given period")
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}
