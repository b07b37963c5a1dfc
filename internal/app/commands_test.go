package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shelf/internal/app"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestApp_Tags_List(t *testing.T) {
	h := newHarness(t)

	refs, err := h.app.Tags(context.Background(), app.TagsOptions{})
	require.NoError(t, err)
	assert.Empty(t, refs)

	out := h.stdout.String()
	assert.Contains(t, out, "tags: Products, Categories, Cart, Orders")
	assert.Contains(t, out, "query    orders:get\n")
	assert.Contains(t, out, "mutation orderItems:create\n")
}

func TestApp_Tags_Probe(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		args     domain.Args
		want     []domain.TaggedRef
		output   string
	}{
		{
			name:     "query",
			endpoint: "orders:get",
			args:     domain.Args{"id": "o1"},
			want:     []domain.TaggedRef{domain.RefID(domain.TagOrders, "o1")},
			output:   "provides Orders:o1\n",
		},
		{
			name:     "mutation",
			endpoint: "orderItems:create",
			args:     domain.Args{"orderId": "o2", "productId": "p1", "quantity": 1},
			want: []domain.TaggedRef{
				domain.RefID(domain.TagOrders, "o2"),
				domain.RefID(domain.TagProducts, "p1"),
				domain.Ref(domain.TagAnalytics),
			},
			output: "invalidates Orders:o2\ninvalidates Products:p1\ninvalidates Analytics\n",
		},
		{
			name:     "failed mutation",
			endpoint: "orderItems:create",
			args:     domain.Args{"orderId": "missing", "productId": "p1", "quantity": 1},
			output:   "invalidates nothing\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
			h.loader.EXPECT().Load(".").Return(h.config("dataset.yaml"), nil)
			h.loader.EXPECT().LoadDataset("dataset.yaml").Return(fixture(), nil)

			refs, err := h.app.Tags(context.Background(), app.TagsOptions{Endpoint: tt.endpoint, Args: tt.args})
			require.NoError(t, err)
			assert.Equal(t, tt.want, refs)
			assert.Equal(t, tt.output, h.stdout.String())

			_, statErr := os.Stat(domain.DefaultSnapshotPath())
			assert.True(t, os.IsNotExist(statErr), "probing never writes a snapshot")
		})
	}
}

func TestApp_Tags_UnknownEndpoint(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.config("dataset.yaml"), nil)
	h.loader.EXPECT().LoadDataset("dataset.yaml").Return(fixture(), nil)

	_, err := h.app.Tags(context.Background(), app.TagsOptions{Endpoint: "orders:explode"})
	require.ErrorContains(t, err, domain.ErrUnknownEndpoint.Error())
}

func TestApp_Geocode(t *testing.T) {
	h := newHarness(t)
	geocoder := mocks.NewMockGeocoder(gomock.NewController(t))
	h.app.WithGeocoder(geocoder)

	geocoder.EXPECT().Geocode(gomock.Any(), "Unter den Linden 1, Berlin").Return([]domain.Place{
		{DisplayName: "Unter den Linden 1, Berlin", Lat: 52.5, Lng: 13.25},
	}, nil)

	places, err := h.app.Geocode(context.Background(), "Unter den Linden 1, Berlin")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "52.500000,13.250000\tUnter den Linden 1, Berlin\n", h.stdout.String())
}

func TestApp_Geocode_NoResults(t *testing.T) {
	h := newHarness(t)
	geocoder := mocks.NewMockGeocoder(gomock.NewController(t))
	h.app.WithGeocoder(geocoder)

	geocoder.EXPECT().Geocode(gomock.Any(), "nowhere").Return(nil, nil)
	h.logger.EXPECT().Warn(`no places found for "nowhere"`)

	places, err := h.app.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestApp_Clean(t *testing.T) {
	tests := []struct {
		name          string
		opts          app.CleanOptions
		snapshotsLeft bool
		cacheLeft     bool
	}{
		{"snapshots", app.CleanOptions{Snapshots: true}, false, true},
		{"cache", app.CleanOptions{Cache: true}, true, false},
		{"all", app.CleanOptions{Snapshots: true, Cache: true}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

			for _, dir := range []string{domain.DefaultSnapshotPath(), domain.DefaultGeocodeCachePath()} {
				require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "x.json"), []byte("{}"), domain.FilePerm))
			}

			require.NoError(t, h.app.Clean(context.Background(), tt.opts))

			assert.Equal(t, tt.snapshotsLeft, exists(domain.DefaultSnapshotPath()))
			assert.Equal(t, tt.cacheLeft, exists(domain.DefaultGeocodeCachePath()))
		})
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
