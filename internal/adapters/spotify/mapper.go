package spotify

import (
	"strings"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// mapFeaturesToRecord converts an audio-features object into a raw record.
// Features the API omitted are left out of the record so ingestion can
// reject it; a nil object yields a record with no values at all.
func mapFeaturesToRecord(requestedID string, f *spotifyAudioFeatures) domain.FeatureRecord {
	rec := domain.FeatureRecord{ID: requestedID, Values: map[string]float64{}}
	if f == nil {
		return rec
	}
	if f.ID != "" {
		rec.ID = f.ID
	}

	fields := map[string]*float64{
		"acousticness":     f.Acousticness,
		"danceability":     f.Danceability,
		"energy":           f.Energy,
		"instrumentalness": f.Instrumentalness,
		"key":              f.Key,
		"loudness":         f.Loudness,
		"mode":             f.Mode,
		"speechiness":      f.Speechiness,
		"tempo":            f.Tempo,
		"valence":          f.Valence,
	}
	for name, v := range fields {
		if v != nil {
			rec.Values[name] = *v
		}
	}
	return rec
}

// mapTrackToCandidate converts a recommended track to a domain candidate.
func mapTrackToCandidate(st spotifyTrack) domain.RecommendationCandidate {
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	uri := st.URI
	if uri == "" && st.ID != "" {
		uri = "spotify:track:" + st.ID
	}

	return domain.RecommendationCandidate{
		ID:      st.ID,
		URI:     uri,
		Name:    st.Name,
		Artists: strings.Join(artistNames, ", "),
	}
}

// mapPlaylistToSummary converts a listed playlist.
func mapPlaylistToSummary(sp *simplePlaylist) domain.PlaylistSummary {
	coverURL := ""
	if len(sp.Images) > 0 {
		coverURL = sp.Images[0].URL
	}
	return domain.PlaylistSummary{
		ID:         sp.ID,
		Name:       strings.TrimRight(sp.Name, " \t\r\n"),
		ImageURL:   coverURL,
		TrackCount: sp.Tracks.Total,
	}
}
