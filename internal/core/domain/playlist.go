package domain

import (
	"errors"
	"slices"
)

// PlaylistAggregate accumulates the tracks of a source playlist and keeps a
// running mean of their audio features.
//
// The mean is updated by halving: mean = (mean + features) / 2 on every add.
// Later tracks weigh more than earlier ones; seed selection depends on this
// weighting, so it is not a true arithmetic mean.
type PlaylistAggregate struct {
	id       string
	tracks   []*Track
	trackIDs []string
	known    map[string]struct{}
	mean     FeatureVector
}

// NewPlaylistAggregate returns an empty aggregate for the given source playlist.
func NewPlaylistAggregate(id string) *PlaylistAggregate {
	return &PlaylistAggregate{
		id:    id,
		known: make(map[string]struct{}),
	}
}

func (p *PlaylistAggregate) ID() string { return p.id }

func (p *PlaylistAggregate) Len() int { return len(p.tracks) }

// AddTrack ingests one feature record under the given track id.
// A record with a missing or non-finite feature is rejected with a
// DataIntegrityError and leaves the aggregate untouched.
func (p *PlaylistAggregate) AddTrack(record FeatureRecord, id string) error {
	if id == "" {
		return errors.Join(ErrInvalidArgument, &DataIntegrityError{TrackID: id, Feature: "id"})
	}
	if record.ID == "" {
		record.ID = id
	}
	features, err := record.Vector()
	if err != nil {
		return err
	}

	p.tracks = append(p.tracks, NewTrack(id, features))
	p.trackIDs = append(p.trackIDs, id)
	p.known[id] = struct{}{}

	for i := range p.mean {
		p.mean[i] = (p.mean[i] + features[i]) / 2
	}
	return nil
}

// Tracks returns the tracks in ingestion order.
func (p *PlaylistAggregate) Tracks() []*Track {
	return slices.Clone(p.tracks)
}

// TrackIDs returns the raw ids in ingestion order, duplicates included.
func (p *PlaylistAggregate) TrackIDs() []string {
	return slices.Clone(p.trackIDs)
}

// KnownIDs returns the set of ingested ids.
func (p *PlaylistAggregate) KnownIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(p.known))
	for id := range p.known {
		out[id] = struct{}{}
	}
	return out
}

func (p *PlaylistAggregate) Contains(id string) bool {
	_, ok := p.known[id]
	return ok
}

// MeanFeatures returns the current running mean.
func (p *PlaylistAggregate) MeanFeatures() FeatureVector { return p.mean }

// RankedTracks returns the tracks ordered by descending similarity. Equal
// scores keep ingestion order.
func (p *PlaylistAggregate) RankedTracks() []*Track {
	ranked := slices.Clone(p.tracks)
	slices.SortStableFunc(ranked, func(a, b *Track) int {
		switch {
		case a.similarity > b.similarity:
			return -1
		case a.similarity < b.similarity:
			return 1
		default:
			return 0
		}
	})
	return ranked
}
