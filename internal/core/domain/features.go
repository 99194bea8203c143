package domain

import "math"

// FeatureCount is the number of audio features tracked per song.
const FeatureCount = 10

// FeatureNames lists the audio features in canonical order. Every
// FeatureVector is populated in this order, so comparison between a track
// and the playlist mean is positional.
var FeatureNames = [FeatureCount]string{
	"acousticness",
	"danceability",
	"energy",
	"instrumentalness",
	"key",
	"loudness",
	"mode",
	"speechiness",
	"tempo",
	"valence",
}

// FeatureVector holds one value per entry of FeatureNames.
type FeatureVector [FeatureCount]float64

// FeatureRecord is a raw audio-features payload as delivered by the catalog.
// A feature missing from Values was not supplied by the catalog.
type FeatureRecord struct {
	ID     string
	Values map[string]float64
}

// Vector extracts the canonical FeatureVector from the record.
// It fails with a DataIntegrityError on the first missing or non-finite feature.
func (r FeatureRecord) Vector() (FeatureVector, error) {
	var v FeatureVector
	for i, name := range FeatureNames {
		val, ok := r.Values[name]
		if !ok {
			return FeatureVector{}, &DataIntegrityError{TrackID: r.ID, Feature: name}
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return FeatureVector{}, &DataIntegrityError{TrackID: r.ID, Feature: name, NonFinite: true}
		}
		v[i] = val
	}
	return v, nil
}

// Map returns the vector keyed by feature name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		m[name] = v[i]
	}
	return m
}
