package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

var _ driven.VideoMetadataService = (*MetadataService)(nil)

func newTestService(t *testing.T, handler http.HandlerFunc) *MetadataService {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := New(context.Background(),
		config.VideoService{APIKey: "test-key", RequestsPerSecond: 1000},
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc
}

func TestLookup(t *testing.T) {
	var gotID string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{
				"snippet": {
					"title": "Fuser replacement walkthrough",
					"thumbnails": {
						"high": {"url": "https://i.ytimg.com/vi/abc/hq.jpg"},
						"default": {"url": "https://i.ytimg.com/vi/abc/default.jpg"}
					}
				},
				"contentDetails": {"duration": "PT4M13S"}
			}]
		}`))
	})

	info, err := svc.Lookup(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", gotID)
	assert.Equal(t, "Fuser replacement walkthrough", info.Title)
	assert.Equal(t, "PT4M13S", info.Duration)
	assert.Equal(t, "https://i.ytimg.com/vi/abc/hq.jpg", info.Thumbnail)
}

func TestLookupNotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": []}`))
	})

	_, err := svc.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), config.VideoService{})
	assert.ErrorContains(t, err, "api key is required")
}

func TestBestThumbnailFallsBack(t *testing.T) {
	assert.Empty(t, bestThumbnail(nil))
}
