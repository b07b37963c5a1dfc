// Package geocode resolves checkout addresses against a Nominatim-compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var _ ports.Geocoder = (*Client)(nil)

const (
	resultLimit            = 5
	defaultRetryInterval   = 500 * time.Millisecond
	maxResponseBytes int64 = 1 << 20
)

// Client is a caching, rate limited geocoding client.
type Client struct {
	cfg           domain.GeocoderConfig
	http          *http.Client
	limiter       *rate.Limiter
	memory        *expirable.LRU[string, []domain.Place]
	disk          *diskCache
	group         singleflight.Group
	logger        ports.Logger
	retryInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithRetryInterval sets the first backoff interval.
func WithRetryInterval(d time.Duration) Option {
	return func(cl *Client) {
		cl.retryInterval = d
	}
}

// New creates a geocoding client. An empty cacheDir disables the disk cache.
func New(cfg domain.GeocoderConfig, cacheDir string, logger ports.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:           cfg,
		http:          &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		memory:        expirable.NewLRU[string, []domain.Place](cfg.CacheSize, nil, cfg.CacheTTL),
		logger:        logger,
		retryInterval: defaultRetryInterval,
	}
	if cacheDir != "" {
		c.disk = &diskCache{dir: cacheDir, ttl: cfg.CacheTTL}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode returns candidate places for the query, best match first.
// Concurrent calls for the same normalized query share one request.
func (c *Client) Geocode(ctx context.Context, query string) ([]domain.Place, error) {
	q := normalize(query)
	if q == "" {
		return nil, domain.ErrEmptyQuery
	}
	if places, ok := c.memory.Get(q); ok {
		return places, nil
	}

	// The shared request outlives any single caller; the HTTP client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(q, func() (any, error) {
		if places, ok := c.memory.Get(q); ok {
			return places, nil
		}
		if places, ok := c.readDisk(q); ok {
			c.memory.Add(q, places)
			return places, nil
		}
		places, err := c.fetchWithRetry(fetchCtx, q)
		if err != nil {
			return nil, err
		}
		c.memory.Add(q, places)
		c.writeDisk(q, places)
		return places, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		places, _ := res.Val.([]domain.Place)
		return places, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) readDisk(q string) ([]domain.Place, bool) {
	if c.disk == nil {
		return nil, false
	}
	places, ok, err := c.disk.get(q)
	if err != nil {
		c.warn(err)
		return nil, false
	}
	return places, ok
}

func (c *Client) writeDisk(q string, places []domain.Place) {
	if c.disk == nil {
		return
	}
	if err := c.disk.put(q, places); err != nil {
		c.warn(err)
	}
}

func (c *Client) warn(err error) {
	if c.logger != nil {
		c.logger.Warn(err.Error())
	}
}

func (c *Client) fetchWithRetry(ctx context.Context, q string) ([]domain.Place, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.MaxElapsedTime = 0

	var places []domain.Place
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		places, err = c.fetch(ctx, q)
		return err
	}
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx))
	if err != nil {
		return nil, zerr.With(err, "query", q)
	}
	return places, nil
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (c *Client) fetch(ctx context.Context, q string) ([]domain.Place, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, backoff.Permanent(zerr.Wrap(err, domain.ErrGeocodeRequestFailed.Error()))
	}
	params := u.Query()
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(resultLimit))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(zerr.Wrap(err, domain.ErrGeocodeRequestFailed.Error()))
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrGeocodeRequestFailed.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		statusErr := zerr.With(domain.ErrGeocodeRequestFailed, "status", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	var raw []nominatimPlace
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&raw); err != nil {
		return nil, backoff.Permanent(zerr.Wrap(err, domain.ErrGeocodeParseFailed.Error()))
	}
	places := make([]domain.Place, 0, len(raw))
	for _, r := range raw {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lng, lngErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lngErr != nil {
			return nil, backoff.Permanent(zerr.With(domain.ErrGeocodeParseFailed, "place", r.DisplayName))
		}
		places = append(places, domain.Place{DisplayName: r.DisplayName, Lat: lat, Lng: lng})
	}
	return places, nil
}

// normalize lower-cases the query and collapses whitespace.
func normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
