package spotify

// spotifyErrorResponse is the error envelope returned by the Web API.
type spotifyErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyImage struct {
	URL string `json:"url"`
}

// spotifyTrack is the subset of a track object the adapter reads.
type spotifyTrack struct {
	ID      string          `json:"id"`
	URI     string          `json:"uri"`
	Name    string          `json:"name"`
	IsLocal bool            `json:"is_local"`
	Artists []spotifyArtist `json:"artists"`
}

// playlistTrackItem wraps a track inside a playlist page; track is null for
// removed or unavailable items.
type playlistTrackItem struct {
	Track *spotifyTrack `json:"track"`
}

type playlistTracksPage struct {
	Items []playlistTrackItem `json:"items"`
	Next  string              `json:"next"`
}

type playlistNameResponse struct {
	Name string `json:"name"`
}

// spotifyAudioFeatures uses pointers so a feature the API left out stays
// distinguishable from a zero value.
type spotifyAudioFeatures struct {
	ID               string   `json:"id"`
	Acousticness     *float64 `json:"acousticness"`
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Key              *float64 `json:"key"`
	Loudness         *float64 `json:"loudness"`
	Mode             *float64 `json:"mode"`
	Speechiness      *float64 `json:"speechiness"`
	Tempo            *float64 `json:"tempo"`
	Valence          *float64 `json:"valence"`
}

type audioFeaturesResponse struct {
	AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
}

type recommendationsResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type createPlaylistResponse struct {
	ID string `json:"id"`
}

// addTracksRequest represents the request body for adding tracks to a playlist.
type addTracksRequest struct {
	URIs []string `json:"uris"`
}

type currentUserResponse struct {
	ID string `json:"id"`
}

type simplePlaylist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
	Owner  struct {
		ID string `json:"id"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type userPlaylistsPage struct {
	Items []*simplePlaylist `json:"items"`
	Next  string            `json:"next"`
	Total int               `json:"total"`
}
