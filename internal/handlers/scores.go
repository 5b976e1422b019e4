package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/app"
	"github.com/founderdesk/daylog/internal/metrics"
	"github.com/founderdesk/daylog/internal/models"
)

type ScoreHandler struct {
	service *app.Service
}

func NewScoreHandler(service *app.Service) *ScoreHandler {
	return &ScoreHandler{
		service: service,
	}
}

func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	userID, role, err := h.service.Identity(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	day := r.URL.Query().Get("date")
	if day == "" {
		day = today()
	}

	snap, err := h.service.Calculator.Score(userID, day)
	if err != nil {
		logger.Error.Printf("Failed to compute score for %s on %s: %v", userID, day, err)
		http.Error(w, "Failed to compute score", http.StatusInternalServerError)
		return
	}

	metrics.DailyScoreHistogram.WithLabelValues(role).Observe(float64(snap.Total))

	writeJSON(w, snap)
}

func (h *ScoreHandler) HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	if _, _, err := h.service.Identity(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rows, err := h.service.Calculator.LifetimeBoard()
	if err != nil {
		logger.Error.Printf("Failed to fetch lifetime board: %v", err)
		http.Error(w, "Failed to fetch scoreboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"rows": rows,
	})
}

// isAdmin gates the admin surface. The CEO doubles as an admin, mirroring
// how the team actually runs the tool.
func isAdmin(role string) bool {
	role = models.NormalizeRole(role)
	return role == "ADMIN" || role == "CEO"
}

func (h *ScoreHandler) HandleAdminDaily(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	_, role, err := h.service.Identity(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !isAdmin(role) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	day := r.URL.Query().Get("date")
	if day == "" {
		day = today()
	}

	stats, err := h.service.Ledger.ListForDay(day)
	if err != nil {
		logger.Error.Printf("Failed to fetch daily stats for %s: %v", day, err)
		http.Error(w, "Failed to fetch daily stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"rows": stats,
	})
}

func (h *ScoreHandler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	_, role, err := h.service.Identity(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !isAdmin(role) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Invalid submission id", http.StatusBadRequest)
		return
	}

	if err := h.service.Ledger.Delete(id); err != nil {
		writeEngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
