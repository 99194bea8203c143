package spotify_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/encore/internal/adapters/spotify"
	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// --- Helpers ---

func newTestClient(ts *httptest.Server) *spotify.Client {
	return spotify.NewClient(http.DefaultClient, ts.URL, spotify.WithRetry(2, time.Millisecond))
}

func featuresJSON(id string) string {
	return fmt.Sprintf(`{"id":%q,"acousticness":0.1,"danceability":0.2,"energy":0.3,"instrumentalness":0,`+
		`"key":5,"loudness":-6.5,"mode":1,"speechiness":0.04,"tempo":120.5,"valence":0.6}`, id)
}

// --- Tests ---

func TestPlaylistTrackIDs(t *testing.T) {
	pages := 0
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl1/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		pages++
		switch r.URL.Query().Get("offset") {
		case "":
			if got := r.URL.Query().Get("limit"); got != "100" {
				t.Errorf("limit: got %s, want 100", got)
			}
			fmt.Fprintf(w, `{"items":[{"track":{"id":"t1"}},{"track":null},{"track":{"id":"t2"}}],"next":%q}`,
				ts.URL+"/playlists/pl1/tracks?offset=100")
		case "100":
			fmt.Fprintf(w, `{"items":[{"track":{"id":"t3"}},{"track":{"id":"","is_local":true}}],"next":%q}`,
				ts.URL+"/playlists/pl1/tracks?offset=200")
		default:
			fmt.Fprint(w, `{"items":[{"track":{"id":"t4"}}],"next":null}`)
		}
	}))
	defer ts.Close()

	ids, err := newTestClient(ts).PlaylistTrackIDs(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"t1", "t2", "t3", "t4"}; strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("ids: got %v, want %v", ids, want)
	}
	if pages != 3 {
		t.Fatalf("pages: got %d, want 3", pages)
	}
}

func TestPlaylistTrackIDs_PageBound(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items":[{"track":{"id":"loop"}}],"next":%q}`, ts.URL+"/playlists/pl1/tracks?again=1")
	}))
	defer ts.Close()

	client := spotify.NewClient(http.DefaultClient, ts.URL, spotify.WithMaxPages(3))
	if _, err := client.PlaylistTrackIDs(context.Background(), "pl1"); err == nil {
		t.Fatal("expected an error when the page bound is exceeded")
	}
}

func TestAudioFeatures(t *testing.T) {
	tests := []struct {
		name        string
		ids         int
		wantBatches int
	}{
		{name: "single batch", ids: 3, wantBatches: 1},
		{name: "exactly one full batch", ids: 100, wantBatches: 1},
		{name: "splits above one hundred", ids: 250, wantBatches: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/audio-features" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				batches++
				ids := strings.Split(r.URL.Query().Get("ids"), ",")
				if len(ids) > 100 {
					t.Errorf("batch too large: %d", len(ids))
				}
				entries := make([]string, len(ids))
				for i, id := range ids {
					entries[i] = featuresJSON(id)
				}
				fmt.Fprintf(w, `{"audio_features":[%s]}`, strings.Join(entries, ","))
			}))
			defer ts.Close()

			ids := make([]string, tt.ids)
			for i := range ids {
				ids[i] = fmt.Sprintf("t%d", i)
			}

			records, err := newTestClient(ts).AudioFeatures(context.Background(), ids)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if batches != tt.wantBatches {
				t.Errorf("batches: got %d, want %d", batches, tt.wantBatches)
			}
			if len(records) != tt.ids {
				t.Fatalf("records: got %d, want %d", len(records), tt.ids)
			}
			for i, rec := range records {
				if rec.ID != ids[i] {
					t.Fatalf("record %d: got id %s, want %s", i, rec.ID, ids[i])
				}
			}
			v, err := records[0].Vector()
			if err != nil {
				t.Fatalf("vector: %v", err)
			}
			want := domain.FeatureVector{0.1, 0.2, 0.3, 0, 5, -6.5, 1, 0.04, 120.5, 0.6}
			if v != want {
				t.Fatalf("vector: got %v, want %v", v, want)
			}
		})
	}
}

func TestAudioFeatures_NullAndPartialEntries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"audio_features":[null,{"id":"t2","energy":0.5}]}`)
	}))
	defer ts.Close()

	records, err := newTestClient(ts).AudioFeatures(context.Background(), []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].ID != "t1" || len(records[0].Values) != 0 {
		t.Fatalf("null entry: got %+v", records[0])
	}
	if _, err := records[1].Vector(); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("partial entry: expected data integrity error, got %v", err)
	}
}

func TestRecommendations(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recommendations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("seed_tracks"); got != "s1,s2,s3" {
			t.Errorf("seed_tracks: got %s", got)
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("limit: got %s", got)
		}
		fmt.Fprint(w, `{"tracks":[
			{"id":"r1","uri":"spotify:track:r1","name":"One","artists":[{"name":"A"},{"name":"B"}]},
			{"id":"r2","name":"Two","artists":[]}
		]}`)
	}))
	defer ts.Close()

	got, err := newTestClient(ts).Recommendations(context.Background(), []string{"s1", "s2", "s3"}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.RecommendationCandidate{
		{ID: "r1", URI: "spotify:track:r1", Name: "One", Artists: "A, B"},
		{ID: "r2", URI: "spotify:track:r2", Name: "Two"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCreateAndPopulatePlaylist(t *testing.T) {
	var created map[string]any
	var batches [][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/me/playlists":
			_ = json.Unmarshal(body, &created)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"new-pl"}`)
		case "/playlists/new-pl/tracks":
			var req struct {
				URIs []string `json:"uris"`
			}
			_ = json.Unmarshal(body, &req)
			batches = append(batches, req.URIs)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"snapshot_id":"abc"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	client := newTestClient(ts)
	id, err := client.CreatePlaylist(context.Background(), "Song Recommendations", "Playlist used: Mix")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "new-pl" {
		t.Fatalf("id: got %s", id)
	}
	if created["name"] != "Song Recommendations" || created["description"] != "Playlist used: Mix" {
		t.Fatalf("create body: got %v", created)
	}

	uris := make([]string, 150)
	for i := range uris {
		uris[i] = fmt.Sprintf("spotify:track:%d", i)
	}
	if err := client.PopulatePlaylist(context.Background(), id, uris); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if len(batches) != 2 || len(batches[0]) != 100 || len(batches[1]) != 50 {
		t.Fatalf("unexpected batches: %d", len(batches))
	}
}

func TestCurrentUserPlaylists(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/me":
			fmt.Fprint(w, `{"id":"me"}`)
		case r.URL.Path == "/me/playlists" && r.URL.Query().Get("offset") == "":
			fmt.Fprintf(w, `{"total":3,"next":%q,"items":[
				{"id":"p1","name":"Mine  ","owner":{"id":"me"},"images":[{"url":"http://img/1"}],"tracks":{"total":12}},
				{"id":"p2","name":"Followed","owner":{"id":"other"},"images":[],"tracks":{"total":3}}
			]}`, ts.URL+"/me/playlists?offset=50")
		default:
			fmt.Fprint(w, `{"total":3,"next":null,"items":[
				{"id":"p3","name":"No Cover","owner":{"id":"me"},"images":null,"tracks":{"total":0}}
			]}`)
		}
	}))
	defer ts.Close()

	got, err := newTestClient(ts).CurrentUserPlaylists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.PlaylistSummary{
		{ID: "p1", Name: "Mine", ImageURL: "http://img/1", TrackCount: 12},
		{ID: "p3", Name: "No Cover", TrackCount: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d playlists, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("playlist %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"status":401,"message":"The access token expired"}}`)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).PlaylistName(context.Background(), "pl1")

	var se *spotify.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !se.Unauthorized() || se.Message != "The access token expired" {
		t.Fatalf("unexpected status error: %+v", se)
	}
}
