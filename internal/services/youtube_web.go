package services

import (
	"context"
	"errors"
	"net/http"

	ytweb "github.com/kkdai/youtube/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sangnt1552314/ytscout/internal/models"
)

const playlistURLPrefix = "https://www.youtube.com/playlist?list="

// WebUploadsSource reads the uploads playlist from the public web pages
// instead of the Data API, so enrichment does not spend API quota. It costs
// the playlist page, one request per further 100 playlist entries (the
// library always follows every continuation), and the newest video's page.
type WebUploadsSource struct {
	client *ytweb.Client
}

func NewWebUploadsSource(httpClient *http.Client) *WebUploadsSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebUploadsSource{
		client: &ytweb.Client{HTTPClient: httpClient},
	}
}

func (s *WebUploadsSource) LatestUpload(ctx context.Context, playlistID string) (*models.Upload, error) {
	playlist, err := s.client.GetPlaylistContext(ctx, playlistURLPrefix+playlistID)
	if err != nil {
		if errors.Is(err, ytweb.ErrInvalidPlaylist) {
			return nil, goerr.Wrap(models.ErrNotFound, "uploads playlist not found", goerr.V("playlist_id", playlistID))
		}
		return nil, goerr.Wrap(err, "failed to load uploads playlist", goerr.V("playlist_id", playlistID))
	}
	if len(playlist.Videos) == 0 {
		return nil, nil
	}

	// uploads playlists list the newest video first
	entry := playlist.Videos[0]
	video, err := s.client.GetVideoContext(ctx, entry.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load latest upload", goerr.V("video_id", entry.ID))
	}
	if video.PublishDate.IsZero() {
		return nil, goerr.New("latest upload has no publish date", goerr.V("video_id", entry.ID))
	}

	return &models.Upload{
		VideoID:     entry.ID,
		PublishedAt: video.PublishDate.UTC(),
	}, nil
}
