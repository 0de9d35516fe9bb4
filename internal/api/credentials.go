package api

import (
	"net/http"
	"strings"

	"github.com/prysma/prysma/internal/api/sessioncookie"
	"github.com/prysma/prysma/internal/identity"
)

// resolveCredential extracts the caller credential from one request.
// Bearer tokens win; the session cookie is the fallback entry path.
func resolveCredential(r *http.Request) (identity.Credential, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		token = strings.TrimSpace(token)
		if token != "" {
			return identity.BearerCredential(token), true
		}
	}
	if sessionID, ok := sessioncookie.Read(r); ok {
		return identity.SessionCredential(sessionID), true
	}
	return identity.Credential{}, false
}

// authenticate resolves the caller's identity for owner-scoped routes.
func (h *Handler) authenticate(r *http.Request) (identity.Identity, error) {
	credential, ok := resolveCredential(r)
	if !ok {
		return identity.Identity{}, identity.ErrUnauthenticated
	}
	return h.identity.Verify(r.Context(), credential)
}
