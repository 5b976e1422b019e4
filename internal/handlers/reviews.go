package handlers

import (
	"time"

	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/app"
	"github.com/founderdesk/daylog/internal/metrics"
	"github.com/founderdesk/daylog/internal/models"
)

type ReviewHandler struct {
	service *app.Service
}

func NewReviewHandler(service *app.Service) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

func (h *ReviewHandler) HandlePendingQueue(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	reviewerID, reviewerRole, err := h.service.Identity(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	queue, err := h.service.Ledger.ListPendingFor(reviewerID, reviewerRole, r.URL.Query().Get("date"))
	if err != nil {
		logger.Error.Printf("Failed to build review queue for %s: %v", reviewerID, err)
		http.Error(w, "Failed to fetch review queue", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"rows": queue,
	})
}

type decisionRequest struct {
	SubmissionID string `json:"submission_id"`
	Decision     string `json:"decision"`
	Comment      string `json:"comment"`
}

func (h *ReviewHandler) HandleDecide(w http.ResponseWriter, r *http.Request) {
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

	reviewerID, reviewerRole, err := h.service.Identity(r)
	if err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.service.Recorder.Decide(
		req.SubmissionID,
		reviewerID,
		reviewerRole,
		models.Verdict(req.Decision),
		req.Comment,
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	metrics.DecisionsTotal.WithLabelValues(reviewerRole, req.Decision).Inc()

	writeJSON(w, sub)
}
