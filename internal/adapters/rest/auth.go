package rest

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/encore/internal/logger"
)

// SignInPage handles GET /
func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.sessions.FromRequest(r); ok && sess.SignedIn() {
		http.Redirect(w, r, "/playlists", http.StatusFound)
		return
	}
	h.render(w, r, "index.html", nil)
}

// SignIn handles GET /sign-in. It starts a session holding a fresh OAuth
// state and sends the browser to the authorize page.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if old, ok := h.sessions.FromRequest(r); ok {
		h.sessions.Delete(old.ID)
	}
	if n := h.sessions.Sweep(); n > 0 {
		logger.FromContext(r.Context()).Debug("swept expired sessions", zap.Int("count", n))
	}

	sess := h.sessions.Create()
	h.sessions.SetCookie(w, sess, h.opts.SecureCookies)
	http.Redirect(w, r, h.auth.AuthURL(sess.State), http.StatusFound)
}

// Callback handles GET /callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if reason := r.URL.Query().Get("error"); reason != "" {
		log.Info("authorization denied", zap.String("reason", reason))
		writeErrorWithCode(w, http.StatusBadRequest, "authorization failed: "+reason, codeAuthDenied)
		return
	}

	sess, ok := h.sessions.FromRequest(r)
	if !ok || sess.State == "" {
		writeErrorWithCode(w, http.StatusBadRequest, "no sign-in in progress", codeInvalidState)
		return
	}

	tok, err := h.auth.Token(r.Context(), sess.State, r)
	if err != nil {
		log.Warn("token exchange failed", zap.Error(err))
		writeErrorWithCode(w, http.StatusBadRequest, "could not complete sign-in", codeInvalidState)
		return
	}

	sess.State = ""
	sess.Token = tok
	sess = h.sessions.Save(sess)
	h.sessions.SetCookie(w, sess, h.opts.SecureCookies)

	http.Redirect(w, r, "/playlists", http.StatusFound)
}
