package ports

import (
	"context"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// CatalogClient is the music catalog a recommendation build reads from and
// writes the resulting playlist to. Implementations own pagination and
// batching.
type CatalogClient interface {
	PlaylistName(ctx context.Context, playlistID string) (string, error)
	PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error)
	AudioFeatures(ctx context.Context, trackIDs []string) ([]domain.FeatureRecord, error)
	Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]domain.RecommendationCandidate, error)
	CreatePlaylist(ctx context.Context, name, description string) (string, error)
	PopulatePlaylist(ctx context.Context, playlistID string, trackURIs []string) error
}

// PlaylistBrowser lists the playlists a signed-in user can build from.
type PlaylistBrowser interface {
	CurrentUserPlaylists(ctx context.Context) ([]domain.PlaylistSummary, error)
}

// Catalog is a signed-in user's view of the catalog.
type Catalog interface {
	CatalogClient
	PlaylistBrowser
}
