package domain

import "context"

// DefaultRecommendationCount is how many recommendations end up in the new playlist.
const DefaultRecommendationCount = 10

// RecommendationCandidate is a track suggested by the catalog.
type RecommendationCandidate struct {
	ID      string `json:"id"`
	URI     string `json:"uri"`
	Name    string `json:"name,omitempty"`
	Artists string `json:"artists,omitempty"`
}

// PlaylistSummary describes one of the current user's playlists.
type PlaylistSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
	TrackCount int    `json:"track_count"`
}

// RecommendationFetcher asks the catalog for candidates seeded by seedIDs.
type RecommendationFetcher func(ctx context.Context, seedIDs []string) ([]RecommendationCandidate, error)

// RunRecommendations fetches candidates for seedIDs, drops every candidate
// already in known and returns at most desired survivors in the order the
// catalog returned them.
func RunRecommendations(
	ctx context.Context,
	seedIDs []string,
	known map[string]struct{},
	fetch RecommendationFetcher,
	desired int,
) ([]RecommendationCandidate, error) {
	if desired < 1 {
		desired = DefaultRecommendationCount
	}

	candidates, err := fetch(ctx, seedIDs)
	if err != nil {
		return nil, NewUpstreamFetchError(StageRecommendations, err)
	}

	return FilterKnown(candidates, known, desired), nil
}

// FilterKnown builds a new slice of candidates not present in known, capped at limit.
func FilterKnown(candidates []RecommendationCandidate, known map[string]struct{}, limit int) []RecommendationCandidate {
	limit = max(limit, 0)
	out := make([]RecommendationCandidate, 0, min(len(candidates), limit))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		if _, dup := known[c.ID]; dup {
			continue
		}
		out = append(out, c)
	}
	return out
}
