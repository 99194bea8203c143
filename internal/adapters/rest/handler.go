package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/encore/internal/adapters/session"
	"github.com/ewilliams-labs/encore/internal/core/ports"
	"github.com/ewilliams-labs/encore/internal/core/services"
	"github.com/ewilliams-labs/encore/internal/logger"
	"github.com/ewilliams-labs/encore/internal/metrics"
)

// Authenticator runs the OAuth authorization code flow.
// *spotifyauth.Authenticator satisfies it.
type Authenticator interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Token(ctx context.Context, state string, r *http.Request, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// CatalogFactory builds a catalog client acting on behalf of a signed-in user.
type CatalogFactory func(ctx context.Context, tok *oauth2.Token) ports.Catalog

// Options tunes the HTTP surface.
type Options struct {
	// BuildRatePerMinute limits build requests per client IP. Zero disables the limit.
	BuildRatePerMinute int
	SecureCookies      bool
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc      *services.Recommender
	auth     Authenticator
	catalogs CatalogFactory
	sessions *session.Store
	logger   *zap.Logger
	opts     Options
	router   chi.Router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Recommender, auth Authenticator, catalogs CatalogFactory, sessions *session.Store, log *zap.Logger, opts Options) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		svc:      svc,
		auth:     auth,
		catalogs: catalogs,
		sessions: sessions,
		logger:   log.Named("http"),
		opts:     opts,
		router:   chi.NewRouter(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	r := h.router
	r.Use(h.recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(metrics.Middleware())

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	// Sign-in flow
	r.Get("/", h.SignInPage)
	r.Get("/sign-in", h.SignIn)
	r.Get("/callback", h.Callback)

	// Playlists
	r.Get("/playlists", h.ListPlaylists)
	r.Group(func(r chi.Router) {
		if h.opts.BuildRatePerMinute > 0 {
			r.Use(httprate.LimitByIP(h.opts.BuildRatePerMinute, time.Minute))
		}
		r.Get("/playlists/{id}/build", h.BuildAndRedirect)
		r.Post("/api/playlists/{id}/recommendations", h.BuildRecommendations)
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Encore is live"})
}

// recoverer turns a panic into a JSON 500.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				h.logger.Error("panic recovered", zap.Any("panic", rvr), zap.Stack("stacktrace"))
				writeErrorWithCode(w, http.StatusInternalServerError, "internal error", codeInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one log line per request and puts a request-scoped
// logger in the context.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := chiMiddleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		reqLogger := h.logger.With(zap.String("request_id", requestID))
		ctx := logger.ContextWithLogger(r.Context(), reqLogger)

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", r.RemoteAddr),
		)
	})
}
