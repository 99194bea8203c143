package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/encore/internal/core/ports"
	"github.com/ewilliams-labs/encore/internal/logger"
)

// ListPlaylists handles GET /playlists
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	catalog, ok := h.catalogFor(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	playlists, err := h.svc.ListPlaylists(r.Context(), catalog)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, "playlists.html", playlists)
}

// BuildAndRedirect handles GET /playlists/{id}/build
func (h *Handler) BuildAndRedirect(w http.ResponseWriter, r *http.Request) {
	catalog, ok := h.catalogFor(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	res, err := h.svc.BuildRecommendationPlaylist(r.Context(), catalog, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	http.Redirect(w, r, res.PlaylistURL, http.StatusFound)
}

// BuildRecommendations handles POST /api/playlists/{id}/recommendations
func (h *Handler) BuildRecommendations(w http.ResponseWriter, r *http.Request) {
	catalog, ok := h.catalogFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	res, err := h.svc.BuildRecommendationPlaylist(r.Context(), catalog, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Location", res.PlaylistURL)
	writeJSON(w, http.StatusCreated, res)
}

// catalogFor resolves a catalog for the signed-in user behind r.
func (h *Handler) catalogFor(r *http.Request) (ports.Catalog, bool) {
	sess, ok := h.sessions.FromRequest(r)
	if !ok || !sess.SignedIn() {
		return nil, false
	}
	return h.catalogs(r.Context(), sess.Token), true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, err.Error())
}
