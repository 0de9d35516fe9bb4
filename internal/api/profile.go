package api

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
	"github.com/prysma/prysma/internal/profile"
)

type sectionBody struct {
	ID       string `json:"id,omitempty"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Position int    `json:"position"`
}

type profileBody struct {
	UserID      string        `json:"userId"`
	Username    string        `json:"username"`
	DisplayName string        `json:"displayName"`
	Headline    string        `json:"headline"`
	AvatarURL   string        `json:"avatarUrl"`
	Sections    []sectionBody `json:"sections"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

type saveProfileRequest struct {
	Username             string        `json:"username"`
	DisplayName          string        `json:"displayName"`
	Headline             string        `json:"headline"`
	AvatarURL            string        `json:"avatarUrl"`
	StripeCustomerID     string        `json:"stripeCustomerId"`
	StripeSubscriptionID string        `json:"stripeSubscriptionId"`
	Sections             []sectionBody `json:"sections"`
}

type reorderSectionsRequest struct {
	SectionIDs []string `json:"sectionIds"`
}

func toProfileBody(p profile.Profile) profileBody {
	sections := make([]sectionBody, 0, len(p.Sections))
	for _, section := range p.Sections {
		sections = append(sections, sectionBody{
			ID:       section.ID,
			Kind:     string(section.Kind),
			Title:    section.Title,
			Body:     section.Body,
			Position: section.Position,
		})
	}
	return profileBody{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Headline:    p.Headline,
		AvatarURL:   p.AvatarURL,
		Sections:    sections,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func toSections(bodies []sectionBody) []profile.Section {
	sections := make([]profile.Section, 0, len(bodies))
	for _, body := range bodies {
		sections = append(sections, profile.Section{
			ID:       body.ID,
			Kind:     profile.SectionKind(body.Kind),
			Title:    body.Title,
			Body:     body.Body,
			Position: body.Position,
		})
	}
	return sections
}

// handleGetProfile returns the caller's own profile.
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ident, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	found, err := h.profiles.Get(r.Context(), ident.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProfileBody(found))
}

// handleSaveProfile upserts the caller's profile.
func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	ident, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req saveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeProfileEmptyUsername, "invalid request body"))
		return
	}
	saved, err := h.profiles.Save(r.Context(), profile.SaveInput{
		UserID:               ident.ID,
		Username:             req.Username,
		DisplayName:          req.DisplayName,
		Headline:             req.Headline,
		AvatarURL:            req.AvatarURL,
		StripeCustomerID:     req.StripeCustomerID,
		StripeSubscriptionID: req.StripeSubscriptionID,
		Sections:             toSections(req.Sections),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProfileBody(saved))
}

// handleReorderSections persists a drag-and-drop section reorder.
func (h *Handler) handleReorderSections(w http.ResponseWriter, r *http.Request) {
	ident, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req reorderSectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeProfileInvalidSection, "invalid request body"))
		return
	}
	if err := h.profiles.ReorderSections(r.Context(), ident.ID, req.SectionIDs); err != nil {
		h.writeError(w, err)
		return
	}
	found, err := h.profiles.Get(r.Context(), ident.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProfileBody(found))
}

// handlePublicProfile resolves one public profile card by username.
func (h *Handler) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PathValue("username"))
	found, err := h.profiles.PublicView(r.Context(), username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProfileBody(found))
}
