package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shelf/internal/adapters/config"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return config.NewLoader(log), log
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	loader, _ := newLoader(t)
	dir := t.TempDir()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(dir), cfg)
}

func TestLoad_DiscoversUpwards(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, domain.ConfigFileName), `
version: "1"
dataset: data/store.yaml
keepUnusedFor: 5s
parallelism: 2
latency: 20ms
geocoder:
  baseUrl: http://localhost:9999/search
  rateLimit: 4
  burst: 2
  cacheTtl: 10m
  maxRetries: 1
`)
	nested := filepath.Join(root, "scenarios", "checkout")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	cfg, err := loader.Load(nested)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, "data", "store.yaml"), cfg.Dataset)
	assert.Equal(t, 5*time.Second, cfg.KeepUnusedFor)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, 20*time.Millisecond, cfg.Latency)
	assert.Equal(t, "http://localhost:9999/search", cfg.Geocoder.BaseURL)
	assert.InDelta(t, 4.0, cfg.Geocoder.RateLimit, 0)
	assert.Equal(t, 2, cfg.Geocoder.Burst)
	assert.Equal(t, 10*time.Minute, cfg.Geocoder.CacheTTL)
	assert.Equal(t, uint64(1), cfg.Geocoder.MaxRetries)
	assert.Equal(t, "shelf", cfg.Geocoder.UserAgent, "unset fields keep their defaults")
}

func TestLoad_ZeroGracePeriod(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, domain.ConfigFileName), "keepUnusedFor: 0s\n")

	cfg, err := loader.Load(root)
	require.NoError(t, err)
	assert.Zero(t, cfg.KeepUnusedFor)
}

func TestLoad_UnknownVersionWarns(t *testing.T) {
	loader, log := newLoader(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, domain.ConfigFileName), "version: \"7\"\n")
	log.EXPECT().Warn(gomock.Any())

	_, err := loader.Load(root)
	require.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "parallelism", content: "parallelism: 0\n", wantErr: domain.ErrInvalidConfig.Error()},
		{name: "negative grace period", content: "keepUnusedFor: -1s\n", wantErr: domain.ErrInvalidConfig.Error()},
		{name: "negative latency", content: "latency: -5ms\n", wantErr: domain.ErrInvalidConfig.Error()},
		{name: "rate limit", content: "geocoder:\n  rateLimit: 0\n", wantErr: domain.ErrInvalidConfig.Error()},
		{name: "malformed", content: "parallelism: [\n", wantErr: domain.ErrConfigParseFailed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			root := t.TempDir()
			writeFile(t, filepath.Join(root, domain.ConfigFileName), tt.content)

			_, err := loader.Load(root)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadDataset(t *testing.T) {
	loader, _ := newLoader(t)
	path := filepath.Join(t.TempDir(), "store.yaml")
	writeFile(t, path, `
products:
  - id: p1
    name: Lamp
    price: 19.90
    stock: 3
    active: true
orders:
  - id: o1
    userId: u1
    status: pending
`)

	ds, err := loader.LoadDataset(path)
	require.NoError(t, err)
	require.Len(t, ds.Products, 1)
	assert.Equal(t, "19.9", ds.Products[0].Price.String())
	require.Len(t, ds.Orders, 1)
	assert.Equal(t, domain.OrderPending, ds.Orders[0].Status)
}

func TestLoadDataset_Missing(t *testing.T) {
	loader, _ := newLoader(t)
	_, err := loader.LoadDataset(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}

func TestLoadScenario(t *testing.T) {
	loader, _ := newLoader(t)
	path := filepath.Join(t.TempDir(), "order-items.yaml")
	writeFile(t, path, `
steps:
  - name: detail-o1
    kind: subscribe
    endpoint: orders:get
    args: {id: o1}
  - name: add-item
    kind: mutate
    endpoint: orderItems:create
    args: {orderId: o1, productId: p1, quantity: 2}
    after: [detail-o1]
  - name: manual
    kind: invalidate
    refs: ["Products", "Orders:o2"]
  - name: check
    kind: expect
    endpoint: orders:get
    args: {id: o1}
    expect:
      status: success
      stale: false
    after: [add-item]
`)

	sc, err := loader.LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "order-items", sc.Name)
	assert.Equal(t, 4, sc.Len())

	add, ok := sc.GetStep("add-item")
	require.True(t, ok)
	assert.Equal(t, domain.StepMutate, add.Kind)
	qty, ok := add.Args.Int("quantity")
	require.True(t, ok)
	assert.Equal(t, 2, qty)

	manual, ok := sc.GetStep("manual")
	require.True(t, ok)
	assert.Equal(t, []domain.TaggedRef{
		{Tag: domain.TagProducts},
		{Tag: domain.TagOrders, ID: "o2"},
	}, manual.Refs)

	check, ok := sc.GetStep("check")
	require.True(t, ok)
	require.NotNil(t, check.Expect)
	require.NotNil(t, check.Expect.Status)
	assert.Equal(t, domain.StatusSuccess, *check.Expect.Status)
	require.NotNil(t, check.Expect.Stale)
	assert.False(t, *check.Expect.Stale)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown tag",
			content: "steps:\n  - {name: a, kind: invalidate, refs: [Widgets]}\n",
			wantErr: domain.ErrUnknownTag.Error(),
		},
		{
			name:    "unknown status",
			content: "steps:\n  - {name: a, kind: expect, endpoint: orders:get, expect: {status: done}}\n",
			wantErr: domain.ErrInvalidStep.Error(),
		},
		{
			name:    "missing dependency",
			content: "steps:\n  - {name: a, kind: invoke, endpoint: orders:get, after: [ghost]}\n",
			wantErr: domain.ErrMissingDependency.Error(),
		},
		{
			name:    "duplicate",
			content: "steps:\n  - {name: a, kind: sleep, duration: 1s}\n  - {name: a, kind: sleep, duration: 1s}\n",
			wantErr: domain.ErrStepAlreadyExists.Error(),
		},
		{
			name:    "cycle",
			content: "steps:\n  - {name: a, kind: sleep, duration: 1s, after: [b]}\n  - {name: b, kind: sleep, duration: 1s, after: [a]}\n",
			wantErr: domain.ErrCycleDetected.Error(),
		},
		{
			name:    "unnamed",
			content: "steps:\n  - {kind: sleep, duration: 1s}\n",
			wantErr: domain.ErrInvalidStep.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			path := filepath.Join(t.TempDir(), "bad.yaml")
			writeFile(t, path, tt.content)

			_, err := loader.LoadScenario(path)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
