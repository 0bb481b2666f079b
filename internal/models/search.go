package models

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultLimit   = 50
	MaxSubscribers = 1_000_000
)

var ErrInvalidRequest = goerr.New("invalid search request")

// SearchRequest is the input of one finder run.
type SearchRequest struct {
	Query   string
	MinSubs uint64
	MaxSubs uint64
	Limit   int
}

// Validate trims the query and fills in the default limit. Any subscriber
// bounds are accepted; MinSubs > MaxSubs simply matches nothing.
func (r *SearchRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Limit < 0 {
		return goerr.Wrap(ErrInvalidRequest, "limit must not be negative", goerr.V("limit", r.Limit))
	}
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	return nil
}

// ValidateInput applies the form rules of the interactive front-ends on top
// of Validate: a non-empty query and bounds within 0..MaxSubscribers.
func (r *SearchRequest) ValidateInput() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Query == "" {
		return goerr.Wrap(ErrInvalidRequest, "query is empty")
	}
	if r.MinSubs > MaxSubscribers || r.MaxSubs > MaxSubscribers {
		return goerr.Wrap(ErrInvalidRequest, "subscriber bound out of range",
			goerr.V("min", r.MinSubs),
			goerr.V("max", r.MaxSubs),
			goerr.V("limit", MaxSubscribers),
		)
	}
	return nil
}

func (r SearchRequest) InRange(subs uint64) bool {
	return r.MinSubs <= subs && subs <= r.MaxSubs
}

type SkipReason string

const (
	SkipTopicChannel           SkipReason = "topic_channel"
	SkipDuplicate              SkipReason = "duplicate"
	SkipChannelNotFound        SkipReason = "channel_not_found"
	SkipMissingUploadsPlaylist SkipReason = "missing_uploads_playlist"
	SkipOutOfRange             SkipReason = "out_of_range"
	SkipUploadsNotFound        SkipReason = "uploads_not_found"
	SkipUploadsFetchFailed     SkipReason = "uploads_fetch_failed"
)

// Outcome is the result of processing one candidate: either Record is set,
// or Reason says why the candidate was dropped. Err carries the upstream
// error for the uploads_* reasons.
type Outcome struct {
	Candidate Candidate
	Record    *ChannelRecord
	Reason    SkipReason
	Err       error
}

func (o Outcome) Skipped() bool {
	return o.Record == nil
}

type SearchResult struct {
	Records []ChannelRecord
	Skipped []Outcome
	Pages   int
}

func (r *SearchResult) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, o := range r.Skipped {
		counts[o.Reason]++
	}
	return counts
}
