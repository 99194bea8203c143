package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/encore/internal/adapters/rest"
	"github.com/ewilliams-labs/encore/internal/adapters/session"
	"github.com/ewilliams-labs/encore/internal/adapters/spotify"
	"github.com/ewilliams-labs/encore/internal/config"
	"github.com/ewilliams-labs/encore/internal/core/ports"
	"github.com/ewilliams-labs/encore/internal/core/services"
	"github.com/ewilliams-labs/encore/internal/logger"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		log.Fatalf("FATAL: %v (set ENCORE_SPOTIFY_CLIENT_ID and ENCORE_SPOTIFY_CLIENT_SECRET)", err)
	}

	zl, err := logger.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// 2. Spotify: OAuth plus a catalog client per signed-in user. Pacing and
	// the circuit breaker are shared by every user's client.
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.SpotifyClientID),
		spotifyauth.WithClientSecret(cfg.SpotifyClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
		),
	)

	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst)
	breaker := spotify.NewBreaker(spotify.DefaultBreakerConfig(), zl)

	catalogs := func(ctx context.Context, tok *oauth2.Token) ports.Catalog {
		return spotify.NewClient(auth.Client(ctx, tok), cfg.APIBaseURL,
			spotify.WithRetry(cfg.MaxRetries, cfg.RetryBackoff()),
			spotify.WithLimiter(limiter),
			spotify.WithBreaker(breaker),
			spotify.WithLogger(zl),
		)
	}

	// 3. Core service
	svc := services.NewRecommender(services.Options{
		SeedCount:    cfg.SeedCount,
		DesiredCount: cfg.DesiredCount,
		FetchLimit:   cfg.RecommendationLimit,
		PlaylistName: cfg.PlaylistName,
	}, zl)

	// 4. HTTP surface
	sessions := session.NewStore(cfg.SessionTTL())
	handler := rest.NewHandler(svc, auth, catalogs, sessions, zl, rest.Options{
		BuildRatePerMinute: cfg.BuildRatePerMinute,
		SecureCookies:      strings.HasPrefix(cfg.RedirectURL, "https://"),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	// 5. Start the server
	serverErr := make(chan error, 1)
	go func() {
		zl.Info("encore api listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			zl.Fatal("http server error", zap.Error(err))
		}
	case <-ctx.Done():
		zl.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("shutdown error", zap.Error(err))
		}
	}
}
