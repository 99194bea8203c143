package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
	"github.com/ewilliams-labs/encore/internal/logger"
	"github.com/ewilliams-labs/encore/internal/metrics"
)

// PlaylistURLPrefix is where a created playlist can be opened.
const PlaylistURLPrefix = "https://open.spotify.com/playlist/"

// Options tunes a recommendation build.
type Options struct {
	SeedCount    int
	DesiredCount int
	// FetchLimit is how many candidates to request before de-duplication.
	FetchLimit   int
	PlaylistName string
}

// DefaultOptions mirrors the catalog's limits: five seeds, twenty
// candidates, ten kept.
func DefaultOptions() Options {
	return Options{
		SeedCount:    domain.DefaultSeedCount,
		DesiredCount: domain.DefaultRecommendationCount,
		FetchLimit:   20,
		PlaylistName: "Song Recommendations",
	}
}

// BuildResult describes a created recommendation playlist.
type BuildResult struct {
	PlaylistID     string                           `json:"playlist_id"`
	PlaylistURL    string                           `json:"playlist_url"`
	SourceName     string                           `json:"source_name"`
	SeedIDs        []string                         `json:"seed_ids"`
	Tracks         []domain.RecommendationCandidate `json:"tracks"`
	SkippedRecords int                              `json:"skipped_records"`
	UnscoredTracks []string                         `json:"unscored_tracks,omitempty"`
}

// Recommender builds recommendation playlists from a user's playlist.
// It holds no per-request state; the catalog is passed on every call.
type Recommender struct {
	opts   Options
	logger *zap.Logger
}

// NewRecommender constructs a Recommender, filling unset options with defaults.
func NewRecommender(opts Options, log *zap.Logger) *Recommender {
	def := DefaultOptions()
	if opts.SeedCount < 1 {
		opts.SeedCount = def.SeedCount
	}
	if opts.DesiredCount < 1 {
		opts.DesiredCount = def.DesiredCount
	}
	if opts.FetchLimit < opts.DesiredCount {
		opts.FetchLimit = max(def.FetchLimit, opts.DesiredCount)
	}
	if opts.PlaylistName == "" {
		opts.PlaylistName = def.PlaylistName
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recommender{opts: opts, logger: log.Named("service")}
}

// BuildRecommendationPlaylist reads the source playlist, selects seed tracks
// by similarity to the playlist's running mean, fetches recommendations that
// are not already in the playlist and saves them as a new playlist.
func (r *Recommender) BuildRecommendationPlaylist(ctx context.Context, catalog ports.CatalogClient, sourcePlaylistID string) (BuildResult, error) {
	res, err := r.build(ctx, catalog, sourcePlaylistID)
	switch {
	case err == nil:
		metrics.ObserveBuild("success")
	case errors.Is(err, domain.ErrInsufficientData):
		metrics.ObserveBuild("insufficient_data")
	case errors.Is(err, domain.ErrUpstreamFetch):
		metrics.ObserveBuild("upstream_error")
	default:
		metrics.ObserveBuild("error")
	}
	return res, err
}

func (r *Recommender) build(ctx context.Context, catalog ports.CatalogClient, sourceID string) (BuildResult, error) {
	if sourceID == "" {
		return BuildResult{}, fmt.Errorf("service: source playlist id cannot be empty: %w", domain.ErrInvalidArgument)
	}
	log := r.logger.With(zap.String("source_playlist", sourceID))
	ctx = logger.ContextWithLogger(ctx, log)

	// 1. Read the source playlist
	sourceName, err := stage(ctx, domain.StagePlaylist, func() (string, error) {
		return catalog.PlaylistName(ctx, sourceID)
	})
	if err != nil {
		return BuildResult{}, err
	}

	trackIDs, err := stage(ctx, domain.StageTrackIDs, func() ([]string, error) {
		return catalog.PlaylistTrackIDs(ctx, sourceID)
	})
	if err != nil {
		return BuildResult{}, err
	}

	records, err := stage(ctx, domain.StageFeatures, func() ([]domain.FeatureRecord, error) {
		if len(trackIDs) == 0 {
			return nil, nil
		}
		return catalog.AudioFeatures(ctx, trackIDs)
	})
	if err != nil {
		return BuildResult{}, err
	}

	// 2. Ingest into a fresh aggregate
	agg, skipped := ingest(ctx, sourceID, records)

	// 3. Rank and pick seeds
	seeds, err := domain.SelectSeeds(agg, r.opts.SeedCount)
	if err != nil {
		return BuildResult{}, fmt.Errorf("service: select seeds for %s: %w", sourceID, err)
	}
	if len(seeds.Unscored) > 0 {
		metrics.AddUnscoredTracks(len(seeds.Unscored))
		log.Warn("similarity undefined for tracks, ranked last", zap.Strings("tracks", seeds.Unscored))
	}
	seedIDs := seeds.IDs()
	log.Debug("selected seeds", zap.Strings("seeds", seedIDs), zap.Int("tracks", agg.Len()))

	// 4. Fetch recommendations not already in the playlist. Tracks whose
	// records were skipped still count as known.
	known := agg.KnownIDs()
	for _, id := range trackIDs {
		known[id] = struct{}{}
	}
	fetch := func(ctx context.Context, ids []string) ([]domain.RecommendationCandidate, error) {
		return catalog.Recommendations(ctx, ids, r.opts.FetchLimit)
	}
	recommended, err := stage(ctx, domain.StageRecommendations, func() ([]domain.RecommendationCandidate, error) {
		return domain.RunRecommendations(ctx, seedIDs, known, fetch, r.opts.DesiredCount)
	})
	if err != nil {
		return BuildResult{}, err
	}

	// 5. Save the result as a new playlist
	description := fmt.Sprintf("Playlist used: %s", sourceName)
	playlistID, err := stage(ctx, domain.StageCreate, func() (string, error) {
		return catalog.CreatePlaylist(ctx, r.opts.PlaylistName, description)
	})
	if err != nil {
		return BuildResult{}, err
	}

	uris := make([]string, len(recommended))
	for i, c := range recommended {
		uris[i] = c.URI
	}
	if _, err := stage(ctx, domain.StagePopulate, func() (struct{}, error) {
		return struct{}{}, catalog.PopulatePlaylist(ctx, playlistID, uris)
	}); err != nil {
		return BuildResult{}, err
	}

	log.Info("recommendation playlist created",
		zap.String("playlist", playlistID),
		zap.Int("tracks", len(recommended)),
		zap.Int("skipped_records", skipped))

	return BuildResult{
		PlaylistID:     playlistID,
		PlaylistURL:    PlaylistURLPrefix + playlistID,
		SourceName:     sourceName,
		SeedIDs:        seedIDs,
		Tracks:         recommended,
		SkippedRecords: skipped,
		UnscoredTracks: seeds.Unscored,
	}, nil
}

// ListPlaylists returns the playlists the signed-in user owns.
func (r *Recommender) ListPlaylists(ctx context.Context, browser ports.PlaylistBrowser) ([]domain.PlaylistSummary, error) {
	return stage(ctx, domain.StagePlaylists, func() ([]domain.PlaylistSummary, error) {
		return browser.CurrentUserPlaylists(ctx)
	})
}

// ingest adds every well-formed record to a new aggregate. Malformed records
// are logged and counted, never defaulted.
func ingest(ctx context.Context, sourceID string, records []domain.FeatureRecord) (*domain.PlaylistAggregate, int) {
	log := logger.FromContext(ctx)
	agg := domain.NewPlaylistAggregate(sourceID)
	skipped := 0
	for _, rec := range records {
		if err := agg.AddTrack(rec, rec.ID); err != nil {
			skipped++
			log.Warn("skipping feature record", zap.String("track", rec.ID), zap.Error(err))
		}
	}
	if skipped > 0 {
		metrics.AddSkippedRecords(skipped)
	}
	return agg, skipped
}

// stage runs one catalog step, tagging failures with the stage name and
// recording its latency.
func stage[T any](ctx context.Context, s domain.Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	metrics.ObserveStage(string(s), start, err)
	if err != nil {
		logger.FromContext(ctx).Error("catalog stage failed", zap.String("stage", string(s)), zap.Error(err))
		return out, fmt.Errorf("service: %w", domain.NewUpstreamFetchError(s, err))
	}
	return out, nil
}
