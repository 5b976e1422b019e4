package handlers

import (
	"errors"
	"time"

	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/app"
	"github.com/founderdesk/daylog/internal/metrics"
	"github.com/founderdesk/daylog/internal/store"
)

type SubmissionHandler struct {
	service *app.Service
}

func NewSubmissionHandler(service *app.Service) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

// writeEngineError maps the engine failure taxonomy onto HTTP status codes.
// Conflict is the only one a client should retry with fresh state.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrNotEligible):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, store.ErrNotReviewable),
		errors.Is(err, store.ErrAlreadyFinalized),
		errors.Is(err, store.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error.Printf("Internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func today() string {
	return time.Now().Format("2006-01-02")
}

type upsertRequest struct {
	TaskID   string `json:"task_id"`
	Date     string `json:"date"`
	Note     string `json:"note"`
	ProofRef string `json:"proof_ref"`
}

func (h *SubmissionHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	userID, role, err := h.service.Identity(r)
	if err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		req.Date = today()
	}

	sub, err := h.service.Ledger.Upsert(userID, role, req.TaskID, req.Date, req.Note, req.ProofRef)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	outcome := "submit"
	if sub.Version > 1 {
		outcome = "resubmit"
	}
	metrics.SubmissionsTotal.WithLabelValues(sub.OwnerRole, outcome).Inc()

	writeJSON(w, sub)
}

func (h *SubmissionHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	userID, _, err := h.service.Identity(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	logs, err := h.service.Ledger.ListForOwner(userID, r.URL.Query().Get("date"))
	if err != nil {
		logger.Error.Printf("Failed to list submissions: %v", err)
		http.Error(w, "Failed to fetch submissions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"rows":               logs,
		"required_approvals": h.service.Config.Review.RequiredApprovals,
	})
}

func (h *SubmissionHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	_, role, err := h.service.Identity(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tasks, err := h.service.Store.ListActiveTasks()
	if err != nil {
		logger.Error.Printf("Failed to list tasks: %v", err)
		http.Error(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}

	open := tasks[:0]
	for _, task := range tasks {
		if task.OpenTo(role) {
			open = append(open, task)
		}
	}

	writeJSON(w, map[string]interface{}{
		"rows": open,
	})
}
