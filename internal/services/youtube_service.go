package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sangnt1552314/ytscout/internal/models"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// PublishedAtLayout is the timestamp format the Data API uses for publishedAt.
const PublishedAtLayout = "2006-01-02T15:04:05Z"

// ChannelAPI is the search and statistics side of the Data API.
type ChannelAPI interface {
	SearchChannels(ctx context.Context, query, pageToken string, pageSize int64) (*models.SearchPage, error)
	// GetChannel returns models.ErrNotFound (wrapped) when the id resolves to nothing.
	GetChannel(ctx context.Context, channelID string) (*models.ChannelStats, error)
}

// UploadsSource looks up the newest item of an uploads playlist. A nil
// upload with a nil error means the playlist is empty.
type UploadsSource interface {
	LatestUpload(ctx context.Context, playlistID string) (*models.Upload, error)
}

// DataAPIClient talks to YouTube Data API v3 with an API key.
type DataAPIClient struct {
	svc *youtube.Service
}

func NewDataAPIClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPIClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create YouTube Data API service")
	}
	return &DataAPIClient{svc: svc}, nil
}

func (c *DataAPIClient) SearchChannels(ctx context.Context, query, pageToken string, pageSize int64) (*models.SearchPage, error) {
	call := c.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, goerr.Wrap(err, "search.list failed", goerr.V("query", query), goerr.V("page_token", pageToken))
	}

	page := &models.SearchPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		channelID := item.Snippet.ChannelId
		if channelID == "" && item.Id != nil {
			channelID = item.Id.ChannelId
		}
		if channelID == "" {
			continue
		}
		page.Candidates = append(page.Candidates, models.Candidate{
			ChannelID: channelID,
			Title:     item.Snippet.Title,
		})
	}
	return page, nil
}

func (c *DataAPIClient) GetChannel(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	resp, err := c.svc.Channels.List([]string{"statistics", "contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(models.ErrNotFound, "channel not found", goerr.V("channel_id", channelID))
		}
		return nil, goerr.Wrap(err, "channels.list failed", goerr.V("channel_id", channelID))
	}
	if len(resp.Items) == 0 {
		return nil, goerr.Wrap(models.ErrNotFound, "channel not found", goerr.V("channel_id", channelID))
	}

	ch := resp.Items[0]
	stats := &models.ChannelStats{ChannelID: channelID}
	if ch.Statistics != nil {
		stats.SubscriberCount = ch.Statistics.SubscriberCount
		stats.VideoCount = ch.Statistics.VideoCount
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		stats.UploadsPlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	return stats, nil
}

func (c *DataAPIClient) LatestUpload(ctx context.Context, playlistID string) (*models.Upload, error) {
	resp, err := c.svc.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(models.ErrNotFound, "uploads playlist not found", goerr.V("playlist_id", playlistID))
		}
		return nil, goerr.Wrap(err, "playlistItems.list failed", goerr.V("playlist_id", playlistID))
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, nil
	}

	snippet := resp.Items[0].Snippet
	publishedAt, err := ParsePublishedAt(snippet.PublishedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid publishedAt", goerr.V("playlist_id", playlistID))
	}

	upload := &models.Upload{PublishedAt: publishedAt}
	if snippet.ResourceId != nil {
		upload.VideoID = snippet.ResourceId.VideoId
	}
	return upload, nil
}

// ParsePublishedAt parses the Data API timestamp. RFC 3339 with fractional
// seconds or an offset is accepted as well; the result is always UTC.
func ParsePublishedAt(s string) (time.Time, error) {
	t, err := time.Parse(PublishedAtLayout, s)
	if err == nil {
		return t, nil
	}
	t, rfcErr := time.Parse(time.RFC3339Nano, s)
	if rfcErr != nil {
		return time.Time{}, goerr.Wrap(err, "failed to parse timestamp", goerr.V("value", s))
	}
	return t.UTC(), nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
