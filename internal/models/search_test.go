package models_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/sangnt1552314/ytscout/internal/models"
)

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       models.SearchRequest
		wantErr   bool
		wantQuery string
		wantLimit int
	}{
		{"defaults limit", models.SearchRequest{Query: "music", MinSubs: 10, MaxSubs: 20}, false, "music", 50},
		{"keeps limit", models.SearchRequest{Query: "music", MaxSubs: 20, Limit: 5}, false, "music", 5},
		{"trims query", models.SearchRequest{Query: "  music "}, false, "music", 50},
		{"min above max is allowed", models.SearchRequest{Query: "music", MinSubs: 500, MaxSubs: 100}, false, "music", 50},
		{"bounds beyond the form range", models.SearchRequest{Query: "music", MinSubs: 1_000_000, MaxSubs: 5_000_000}, false, "music", 50},
		{"empty query", models.SearchRequest{Query: "  "}, false, "", 50},
		{"negative limit", models.SearchRequest{Query: "music", Limit: -1}, true, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, errors.Is(err, models.ErrInvalidRequest))
				return
			}
			gt.NoError(t, err)
			gt.Equal(t, req.Query, tt.wantQuery)
			gt.Equal(t, req.Limit, tt.wantLimit)
		})
	}
}

func TestSearchRequest_ValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SearchRequest
		wantErr bool
	}{
		{"within range", models.SearchRequest{Query: "music", MinSubs: 10, MaxSubs: 20}, false},
		{"upper bound", models.SearchRequest{Query: "music", MaxSubs: 1_000_000}, false},
		{"min above max is allowed", models.SearchRequest{Query: "music", MinSubs: 500, MaxSubs: 100}, false},
		{"empty query", models.SearchRequest{Query: "  "}, true},
		{"max too large", models.SearchRequest{Query: "music", MaxSubs: 1_000_001}, true},
		{"min too large", models.SearchRequest{Query: "music", MinSubs: 2_000_000, MaxSubs: 10}, true},
		{"negative limit", models.SearchRequest{Query: "music", Limit: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.ValidateInput()
			if tt.wantErr {
				gt.True(t, errors.Is(err, models.ErrInvalidRequest))
				return
			}
			gt.NoError(t, err)
		})
	}
}

func TestSearchRequest_InRange(t *testing.T) {
	req := models.SearchRequest{MinSubs: 100, MaxSubs: 500}
	gt.True(t, req.InRange(100))
	gt.True(t, req.InRange(500))
	gt.True(t, req.InRange(250))
	gt.False(t, req.InRange(99))
	gt.False(t, req.InRange(501))
}

func TestSearchResult_SkipCounts(t *testing.T) {
	result := &models.SearchResult{
		Skipped: []models.Outcome{
			{Reason: models.SkipTopicChannel},
			{Reason: models.SkipOutOfRange},
			{Reason: models.SkipOutOfRange},
		},
	}
	counts := result.SkipCounts()
	gt.Equal(t, counts[models.SkipTopicChannel], 1)
	gt.Equal(t, counts[models.SkipOutOfRange], 2)
	gt.Equal(t, counts[models.SkipDuplicate], 0)
}

func TestChannelURL(t *testing.T) {
	gt.Equal(t, models.ChannelURL("UCabc"), "https://www.youtube.com/channel/UCabc")
}
