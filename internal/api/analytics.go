package api

import (
	"encoding/json"
	"net/http"

	"github.com/prysma/prysma/internal/analytics"
	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

type recordVisitRequest struct {
	ProfileUserID string `json:"profileUserId"`
	Referrer      string `json:"referrer"`
	Path          string `json:"path"`
}

type visitBody struct {
	ID            string `json:"id"`
	ProfileUserID string `json:"profileUserId"`
	VisitedAt     string `json:"visitedAt"`
}

type visitSummaryBody struct {
	ProfileUserID string `json:"profileUserId"`
	TotalVisits   int64  `json:"totalVisits"`
	RecentVisits  int64  `json:"recentVisits"`
	WindowStart   string `json:"windowStart"`
	GeneratedAt   string `json:"generatedAt"`
}

// handleRecordVisit appends one public profile view event.
func (h *Handler) handleRecordVisit(w http.ResponseWriter, r *http.Request) {
	var req recordVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeVisitEmptyProfileID, "invalid request body"))
		return
	}
	visit, err := h.analytics.RecordVisit(r.Context(), analytics.RecordInput{
		ProfileUserID: req.ProfileUserID,
		Referrer:      req.Referrer,
		Path:          req.Path,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, visitBody{
		ID:            visit.ID,
		ProfileUserID: visit.ProfileUserID,
		VisitedAt:     formatTime(visit.VisitedAt),
	})
}

// handleVisitSummary returns visit counts for the owner dashboard.
func (h *Handler) handleVisitSummary(w http.ResponseWriter, r *http.Request) {
	ident, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	summary, err := h.analytics.VisitSummary(r.Context(), ident.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, visitSummaryBody{
		ProfileUserID: summary.ProfileUserID,
		TotalVisits:   summary.TotalVisits,
		RecentVisits:  summary.RecentVisits,
		WindowStart:   formatTime(summary.WindowStart),
		GeneratedAt:   formatTime(summary.GeneratedAt),
	})
}
