package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sangnt1552314/ytscout/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPageSize is the maximum page size search.list accepts.
	DefaultPageSize int64 = 50

	topicMarker = "Topic"
)

// Finder walks channel search results and keeps the channels whose
// subscriber count is inside the requested range.
type Finder struct {
	api      ChannelAPI
	uploads  UploadsSource
	logger   *zap.Logger
	pageSize int64
	workers  int
}

type FinderOption func(*Finder)

// WithWorkers bounds how many candidates are enriched at once. Values below
// one are treated as one.
func WithWorkers(n int) FinderOption {
	return func(f *Finder) {
		if n < 1 {
			n = 1
		}
		f.workers = n
	}
}

func WithPageSize(n int64) FinderOption {
	return func(f *Finder) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

func NewFinder(api ChannelAPI, uploads UploadsSource, logger *zap.Logger, opts ...FinderOption) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Finder{
		api:      api,
		uploads:  uploads,
		logger:   logger,
		pageSize: DefaultPageSize,
		workers:  1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindChannels pages through search results until req.Limit matches are
// collected or the results run out. Per-candidate enrichment problems are
// reported in SearchResult.Skipped; only search and channel lookup failures
// abort the run.
func (f *Finder) FindChannels(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := f.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("query", req.Query),
	)
	logger.Info("starting channel search",
		zap.Uint64("min_subs", req.MinSubs),
		zap.Uint64("max_subs", req.MaxSubs),
		zap.Int("limit", req.Limit),
		zap.Int("workers", f.workers),
	)

	result := &models.SearchResult{}
	seen := make(map[string]struct{})
	pageToken := ""

	for len(result.Records) < req.Limit {
		page, err := f.api.SearchChannels(ctx, req.Query, pageToken, f.pageSize)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search channels", goerr.V("page", result.Pages+1))
		}
		result.Pages++
		logger.Debug("search page received",
			zap.Int("page", result.Pages),
			zap.Int("candidates", len(page.Candidates)),
		)

		if err := f.processPage(ctx, logger, req, page.Candidates, seen, result); err != nil {
			return nil, err
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	logger.Info("channel search finished",
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("pages", result.Pages),
	)
	return result, nil
}

// processPage enriches candidates in discovery order, in windows no larger
// than the number of records still missing, so the limit is never overshot.
func (f *Finder) processPage(ctx context.Context, logger *zap.Logger, req models.SearchRequest, candidates []models.Candidate, seen map[string]struct{}, result *models.SearchResult) error {
	i := 0
	for i < len(candidates) && len(result.Records) < req.Limit {
		size := min(f.workers, req.Limit-len(result.Records))

		window := make([]models.Candidate, 0, size)
		for i < len(candidates) && len(window) < size {
			c := candidates[i]
			i++

			if reason, skip := prefilter(c, seen); skip {
				logger.Debug("candidate skipped",
					zap.String("channel_id", c.ChannelID),
					zap.String("title", c.Title),
					zap.String("reason", string(reason)),
				)
				result.Skipped = append(result.Skipped, models.Outcome{Candidate: c, Reason: reason})
				continue
			}
			seen[c.ChannelID] = struct{}{}
			window = append(window, c)
		}

		outcomes, err := f.enrichWindow(ctx, logger, req, window)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			if o.Skipped() {
				result.Skipped = append(result.Skipped, o)
				continue
			}
			if len(result.Records) < req.Limit {
				result.Records = append(result.Records, *o.Record)
			}
		}
	}
	return nil
}

func prefilter(c models.Candidate, seen map[string]struct{}) (models.SkipReason, bool) {
	if strings.Contains(c.Title, topicMarker) {
		return models.SkipTopicChannel, true
	}
	if _, ok := seen[c.ChannelID]; ok {
		return models.SkipDuplicate, true
	}
	return "", false
}

func (f *Finder) enrichWindow(ctx context.Context, logger *zap.Logger, req models.SearchRequest, window []models.Candidate) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, len(window))

	if len(window) <= 1 {
		for idx, c := range window {
			o, err := f.enrich(ctx, logger, req, c)
			if err != nil {
				return nil, err
			}
			outcomes[idx] = o
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for idx, c := range window {
		g.Go(func() error {
			o, err := f.enrich(gctx, logger, req, c)
			if err != nil {
				return err
			}
			outcomes[idx] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// enrich resolves one candidate into a record or a skip outcome. The
// returned error is reserved for failures that must abort the search.
func (f *Finder) enrich(ctx context.Context, logger *zap.Logger, req models.SearchRequest, c models.Candidate) (models.Outcome, error) {
	logger = logger.With(zap.String("channel_id", c.ChannelID))

	stats, err := f.api.GetChannel(ctx, c.ChannelID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			logger.Info("channel statistics not found, skipping")
			return skip(c, models.SkipChannelNotFound, err), nil
		}
		return models.Outcome{}, goerr.Wrap(err, "failed to get channel statistics", goerr.V("channel_id", c.ChannelID))
	}

	if stats.UploadsPlaylistID == "" {
		logger.Warn("channel has no uploads playlist, skipping", zap.String("title", c.Title))
		return skip(c, models.SkipMissingUploadsPlaylist, nil), nil
	}

	if !req.InRange(stats.SubscriberCount) {
		logger.Debug("subscriber count out of range", zap.Uint64("subscribers", stats.SubscriberCount))
		return skip(c, models.SkipOutOfRange, nil), nil
	}

	upload, err := f.uploads.LatestUpload(ctx, stats.UploadsPlaylistID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Outcome{}, goerr.Wrap(ctxErr, "search cancelled")
		}
		if errors.Is(err, models.ErrNotFound) {
			logger.Warn("uploads playlist not found, skipping",
				zap.String("playlist_id", stats.UploadsPlaylistID),
				zap.Error(err),
			)
			return skip(c, models.SkipUploadsNotFound, err), nil
		}
		logger.Warn("failed to fetch latest upload, skipping",
			zap.String("playlist_id", stats.UploadsPlaylistID),
			zap.Error(err),
		)
		return skip(c, models.SkipUploadsFetchFailed, err), nil
	}

	record := &models.ChannelRecord{
		ChannelID:       c.ChannelID,
		Title:           c.Title,
		SubscriberCount: stats.SubscriberCount,
		VideoCount:      stats.VideoCount,
		ChannelURL:      models.ChannelURL(c.ChannelID),
	}
	if upload != nil {
		publishedAt := upload.PublishedAt
		record.LatestUpload = &publishedAt
	}

	logger.Debug("channel matched", zap.Uint64("subscribers", stats.SubscriberCount))
	return models.Outcome{Candidate: c, Record: record}, nil
}

func skip(c models.Candidate, reason models.SkipReason, err error) models.Outcome {
	return models.Outcome{Candidate: c, Reason: reason, Err: err}
}
