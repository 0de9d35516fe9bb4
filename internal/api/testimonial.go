package api

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
	"github.com/prysma/prysma/internal/testimonial"
)

type createTestimonialRequest struct {
	AuthorName string `json:"authorName"`
	AuthorLink string `json:"authorLink"`
	Quote      string `json:"quote"`
}

type testimonialBody struct {
	ID         string `json:"id"`
	AuthorName string `json:"authorName"`
	AuthorLink string `json:"authorLink"`
	Quote      string `json:"quote"`
	CreatedAt  string `json:"createdAt"`
}

func toTestimonialBody(t testimonial.Testimonial) testimonialBody {
	return testimonialBody{
		ID:         t.ID,
		AuthorName: t.AuthorName,
		AuthorLink: t.AuthorLink,
		Quote:      t.Quote,
		CreatedAt:  formatTime(t.CreatedAt),
	}
}

// handleCreateTestimonial adds one testimonial to the caller's profile.
func (h *Handler) handleCreateTestimonial(w http.ResponseWriter, r *http.Request) {
	ident, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req createTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeTestimonialEmptyQuote, "invalid request body"))
		return
	}
	created, err := h.testimonials.Create(r.Context(), testimonial.CreateInput{
		ProfileUserID: ident.ID,
		AuthorName:    req.AuthorName,
		AuthorLink:    req.AuthorLink,
		Quote:         req.Quote,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toTestimonialBody(created))
}

// handleListTestimonials returns the caller's testimonials, newest first.
func (h *Handler) handleListTestimonials(w http.ResponseWriter, r *http.Request) {
	ident, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	listed, err := h.testimonials.List(r.Context(), ident.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	bodies := make([]testimonialBody, 0, len(listed))
	for _, item := range listed {
		bodies = append(bodies, toTestimonialBody(item))
	}
	h.writeJSON(w, http.StatusOK, bodies)
}

// handleDeleteTestimonial removes one testimonial owned by the caller.
func (h *Handler) handleDeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	ident, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	testimonialID := strings.TrimSpace(r.PathValue("testimonialID"))
	if err := h.testimonials.Delete(r.Context(), ident.ID, testimonialID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
