package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/prysma/prysma/internal/account"
	"github.com/prysma/prysma/internal/api/sessioncookie"
	"github.com/prysma/prysma/internal/identity"
	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

type deletionResults struct {
	Profile      bool `json:"profile"`
	Analytics    bool `json:"analytics"`
	Testimonials bool `json:"testimonials"`
}

type deletionDetails struct {
	UserID                string          `json:"userId"`
	SubscriptionCancelled bool            `json:"subscriptionCancelled"`
	DeletionResults       deletionResults `json:"deletionResults"`
	Timestamp             string          `json:"timestamp"`
}

type deletionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details deletionDetails `json:"details"`
}

type deletionFailureResponse struct {
	Error          string          `json:"error"`
	Details        string          `json:"details"`
	PartialSuccess deletionDetails `json:"partialSuccess"`
}

func toDeletionDetails(result account.DeletionResult) deletionDetails {
	timestamp := result.CompletedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	return deletionDetails{
		UserID:                result.UserID,
		SubscriptionCancelled: result.SubscriptionCancelled,
		DeletionResults: deletionResults{
			Profile:      result.Resources.Profile,
			Analytics:    result.Resources.Analytics,
			Testimonials: result.Resources.Testimonials,
		},
		Timestamp: timestamp.UTC().Format(time.RFC3339),
	}
}

// handleDeleteAccount tears down the caller's own account.
func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	credential, ok := resolveCredential(r)
	if !ok {
		h.writeError(w, identity.ErrUnauthenticated)
		return
	}
	h.deleteAccount(w, r, credential, true)
}

// handleAdminDeleteAccount tears down a target account on behalf of an
// operator. A missing target reports 404 rather than 401.
func (h *Handler) handleAdminDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if h.adminKey == "" || strings.TrimSpace(r.Header.Get("X-Admin-Key")) != h.adminKey {
		h.writeError(w, identity.ErrUnauthenticated)
		return
	}
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		h.writeError(w, identity.ErrNotFound)
		return
	}
	h.deleteAccount(w, r, identity.OperatorCredential(userID), false)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request, credential identity.Credential, clearCookie bool) {
	result, err := h.accounts.DeleteAccount(r.Context(), credential)
	if err != nil {
		switch apperrors.GetCode(err) {
		case apperrors.CodeIdentityDeletion:
			// Partial ledger travels with the failure so an operator can
			// finish cleanup by hand.
			h.writeJSON(w, http.StatusInternalServerError, deletionFailureResponse{
				Error:          "identity deletion failed",
				Details:        err.Error(),
				PartialSuccess: toDeletionDetails(result),
			})
		default:
			h.writeError(w, err)
		}
		return
	}

	if clearCookie {
		sessioncookie.Clear(w)
	}
	h.writeJSON(w, http.StatusOK, deletionResponse{
		Success: true,
		Message: "account deleted",
		Details: toDeletionDetails(result),
	})
}
