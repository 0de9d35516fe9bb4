package api

import "net/http"

// handleOEmbed proxies one media-highlight embed lookup.
func (h *Handler) handleOEmbed(w http.ResponseWriter, r *http.Request) {
	body, err := h.embeds.Resolve(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
