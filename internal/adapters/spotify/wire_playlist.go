package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// PlaylistName returns the display name of a playlist.
func (c *Client) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	q := url.Values{"fields": {"name"}}
	endpoint := fmt.Sprintf("%s/playlists/%s?%s", c.baseURL, url.PathEscape(playlistID), q.Encode())

	var resp playlistNameResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

// PlaylistTrackIDs returns the ids of every track in the playlist, following
// the API's next-page links until none is returned.
func (c *Client) PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	q := url.Values{
		"limit":  {strconv.Itoa(playlistPageSize)},
		"fields": {"items(track(id,is_local)),next"},
	}
	next := fmt.Sprintf("%s/playlists/%s/tracks?%s", c.baseURL, url.PathEscape(playlistID), q.Encode())

	var ids []string
	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("spotify adapter: playlist %s exceeds %d pages", playlistID, c.maxPages)
		}

		var resp playlistTracksPage
		if err := c.getJSON(ctx, next, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			if item.Track == nil || item.Track.ID == "" || item.Track.IsLocal {
				c.logger.Debug("skipping playlist item without catalog id", zap.String("playlist", playlistID))
				continue
			}
			ids = append(ids, item.Track.ID)
		}
		next = resp.Next
	}
	return ids, nil
}

// CreatePlaylist creates a playlist for the current user and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	endpoint := c.baseURL + "/me/playlists"
	body := createPlaylistRequest{Name: name, Description: description}

	var resp createPlaylistResponse
	if err := c.postJSON(ctx, endpoint, body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("spotify adapter: create playlist returned no id")
	}
	return resp.ID, nil
}

// PopulatePlaylist appends the given track URIs, at most 100 per request.
func (c *Client) PopulatePlaylist(ctx context.Context, playlistID string, trackURIs []string) error {
	endpoint := fmt.Sprintf("%s/playlists/%s/tracks", c.baseURL, url.PathEscape(playlistID))

	for start := 0; start < len(trackURIs); start += addTracksBatch {
		end := min(start+addTracksBatch, len(trackURIs))
		if err := c.postJSON(ctx, endpoint, addTracksRequest{URIs: trackURIs[start:end]}, nil); err != nil {
			return err
		}
	}
	return nil
}

// CurrentUserPlaylists lists the playlists owned by the signed-in user.
func (c *Client) CurrentUserPlaylists(ctx context.Context) ([]domain.PlaylistSummary, error) {
	var me currentUserResponse
	if err := c.getJSON(ctx, c.baseURL+"/me", &me); err != nil {
		return nil, err
	}

	next := fmt.Sprintf("%s/me/playlists?limit=%d", c.baseURL, userPlaylistPage)
	var out []domain.PlaylistSummary
	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("spotify adapter: playlist listing exceeds %d pages", c.maxPages)
		}

		var resp userPlaylistsPage
		if err := c.getJSON(ctx, next, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Items {
			if p == nil || p.Owner.ID != me.ID {
				continue
			}
			out = append(out, mapPlaylistToSummary(p))
		}
		next = resp.Next
	}
	return out, nil
}
