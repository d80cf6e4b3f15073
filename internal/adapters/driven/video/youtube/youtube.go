// Package youtube resolves video metadata for links harvested from
// manuals. Lookups are rate limited so batch processing of large
// document sets stays within API quota.
package youtube

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// ErrVideoNotFound is returned when the platform knows nothing about
// the requested video id.
var ErrVideoNotFound = errors.New("video not found")

const defaultRequestsPerSecond = 2.0

// MetadataService resolves YouTube video metadata via the Data API.
type MetadataService struct {
	svc     *youtube.Service
	limiter *rate.Limiter
}

// New creates a MetadataService from service configuration. Extra
// client options are applied last so tests can redirect the endpoint.
func New(ctx context.Context, cfg config.VideoService, extra ...option.ClientOption) (*MetadataService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, extra...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &MetadataService{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Lookup fetches title, duration and thumbnail for a video id.
func (s *MetadataService) Lookup(ctx context.Context, videoID string) (*driven.VideoInfo, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.svc.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}

	item := resp.Items[0]
	info := &driven.VideoInfo{}
	if item.Snippet != nil {
		info.Title = item.Snippet.Title
		info.Thumbnail = bestThumbnail(item.Snippet.Thumbnails)
	}
	if item.ContentDetails != nil {
		info.Duration = item.ContentDetails.Duration
	}
	return info, nil
}

// bestThumbnail prefers higher resolutions when the platform provides
// them, falling back to the default size.
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, d := range []*youtube.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if d != nil && d.Url != "" {
			return d.Url
		}
	}
	return ""
}
