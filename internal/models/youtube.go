package models

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const ChannelURLPrefix = "https://www.youtube.com/channel/"

// ErrNotFound marks an upstream lookup that returned nothing for the given id.
var ErrNotFound = goerr.New("resource not found")

// Candidate is a channel surfaced by a search, before enrichment.
type Candidate struct {
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
}

type SearchPage struct {
	Candidates    []Candidate `json:"candidates"`
	NextPageToken string      `json:"nextPageToken"`
}

// ChannelStats is the subset of channels.list the finder needs.
// UploadsPlaylistID is empty when the channel exposes no uploads playlist.
type ChannelStats struct {
	ChannelID         string `json:"channelId"`
	SubscriberCount   uint64 `json:"subscriberCount"`
	VideoCount        uint64 `json:"videoCount"`
	UploadsPlaylistID string `json:"uploadsPlaylistId"`
}

type Upload struct {
	VideoID     string    `json:"videoId"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ChannelRecord is one matching channel. Records are built once per search
// and never modified afterwards.
type ChannelRecord struct {
	ChannelID       string     `json:"channelId"`
	Title           string     `json:"title"`
	SubscriberCount uint64     `json:"subscriberCount"`
	VideoCount      uint64     `json:"videoCount"`
	LatestUpload    *time.Time `json:"latestUpload,omitempty"`
	ChannelURL      string     `json:"channelUrl"`
}

func ChannelURL(channelID string) string {
	return ChannelURLPrefix + channelID
}
