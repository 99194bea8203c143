package domain

import "math"

// Track represents one song of the source playlist and its closeness to the
// playlist's mean audio profile.
type Track struct {
	id         string
	features   FeatureVector
	similarity float64
}

// NewTrack constructs a Track with an uncomputed (zero) similarity.
func NewTrack(id string, features FeatureVector) *Track {
	return &Track{id: id, features: features}
}

func (t *Track) ID() string { return t.id }

func (t *Track) Features() FeatureVector { return t.features }

// Similarity returns the last computed score, 0 if none was computed.
func (t *Track) Similarity() float64 { return t.similarity }

// ComputeSimilarity scores the track against mean:
//
//	1 - Σ|mean[i]-f[i]| / Σ(mean[i]+f[i])
//
// A perfect match scores 1. When the summed total is zero the score is
// undefined; an ArithmeticError is returned and the previous score is kept.
func (t *Track) ComputeSimilarity(mean FeatureVector) error {
	var totalDifference, total float64
	for i := range mean {
		totalDifference += math.Abs(mean[i] - t.features[i])
		total += mean[i] + t.features[i]
	}
	if total == 0 {
		return &ArithmeticError{TrackID: t.id}
	}
	t.similarity = 1 - (totalDifference / total)
	return nil
}

// demote pushes the track below every scored track.
func (t *Track) demote() {
	t.similarity = math.Inf(-1)
}
