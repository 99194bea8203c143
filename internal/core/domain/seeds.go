package domain

import "errors"

// DefaultSeedCount is the number of seed tracks the catalog accepts per request.
const DefaultSeedCount = 5

// SeedSet is the highest-similarity subset of a playlist.
type SeedSet struct {
	Tracks []*Track
	// Unscored lists tracks whose similarity was undefined; they rank last.
	Unscored []string
}

// IDs returns the seed track ids in rank order.
func (s SeedSet) IDs() []string {
	ids := make([]string, len(s.Tracks))
	for i, t := range s.Tracks {
		ids[i] = t.ID()
	}
	return ids
}

// SelectSeeds scores every track of agg against its running mean and returns
// the top count tracks. A short playlist yields all of its tracks.
func SelectSeeds(agg *PlaylistAggregate, count int) (SeedSet, error) {
	if agg == nil || agg.Len() == 0 {
		return SeedSet{}, ErrInsufficientData
	}
	if count < 1 {
		count = DefaultSeedCount
	}

	var set SeedSet
	mean := agg.MeanFeatures()
	for _, t := range agg.tracks {
		if err := t.ComputeSimilarity(mean); err != nil {
			if !errors.Is(err, ErrArithmetic) {
				return SeedSet{}, err
			}
			t.demote()
			set.Unscored = append(set.Unscored, t.ID())
		}
	}

	ranked := agg.RankedTracks()
	if len(ranked) > count {
		ranked = ranked[:count]
	}
	set.Tracks = ranked
	return set, nil
}
