package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// AudioFeatures fetches audio features for trackIDs in batches of 100. The
// result has one record per requested id, in request order.
func (c *Client) AudioFeatures(ctx context.Context, trackIDs []string) ([]domain.FeatureRecord, error) {
	records := make([]domain.FeatureRecord, 0, len(trackIDs))

	for start := 0; start < len(trackIDs); start += featureBatchSize {
		batch := trackIDs[start:min(start+featureBatchSize, len(trackIDs))]
		q := url.Values{"ids": {strings.Join(batch, ",")}}

		var resp audioFeaturesResponse
		if err := c.getJSON(ctx, c.baseURL+"/audio-features?"+q.Encode(), &resp); err != nil {
			return nil, err
		}
		if len(resp.AudioFeatures) != len(batch) {
			return nil, fmt.Errorf("spotify adapter: audio features returned %d entries for %d ids",
				len(resp.AudioFeatures), len(batch))
		}

		for i, f := range resp.AudioFeatures {
			records = append(records, mapFeaturesToRecord(batch[i], f))
		}
	}
	return records, nil
}

// Recommendations asks the catalog for up to limit tracks seeded by
// seedTrackIDs, joined in the given order.
func (c *Client) Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]domain.RecommendationCandidate, error) {
	q := url.Values{
		"limit":       {strconv.Itoa(limit)},
		"seed_tracks": {strings.Join(seedTrackIDs, ",")},
	}

	var resp recommendationsResponse
	if err := c.getJSON(ctx, c.baseURL+"/recommendations?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	out := make([]domain.RecommendationCandidate, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		out = append(out, mapTrackToCandidate(t))
	}
	return out, nil
}
