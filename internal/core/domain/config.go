package domain

import "time"

const (
	// DefaultKeepUnusedFor matches the grace period of common client data caches.
	DefaultKeepUnusedFor = 60 * time.Second

	// DefaultParallelism bounds concurrently running scenario steps.
	DefaultParallelism = 4

	// DefaultGeocoderURL is the public Nominatim search endpoint.
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org/search"
)

// Config is the resolved project configuration.
type Config struct {
	// Root is the directory holding shelf.yaml, or the working directory when absent.
	Root string
	// Dataset is the seed file path, relative to Root when not absolute.
	Dataset string
	// KeepUnusedFor is how long an unmounted cache entry survives.
	KeepUnusedFor time.Duration
	// Parallelism bounds concurrently running scenario steps.
	Parallelism int
	// Latency is added to every backend call.
	Latency  time.Duration
	Geocoder GeocoderConfig
}

// GeocoderConfig configures the geocoding client.
type GeocoderConfig struct {
	BaseURL    string
	UserAgent  string
	RateLimit  float64
	Burst      int
	CacheSize  int
	CacheTTL   time.Duration
	Timeout    time.Duration
	MaxRetries uint64
}

// DefaultConfig returns the configuration used when no shelf.yaml exists.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:          root,
		KeepUnusedFor: DefaultKeepUnusedFor,
		Parallelism:   DefaultParallelism,
		Geocoder: GeocoderConfig{
			BaseURL:    DefaultGeocoderURL,
			UserAgent:  "shelf",
			RateLimit:  1,
			Burst:      1,
			CacheSize:  256,
			CacheTTL:   time.Hour,
			Timeout:    10 * time.Second,
			MaxRetries: 3,
		},
	}
}

// Dataset holds seed documents for every table.
type Dataset struct {
	Products      []Product      `json:"products" yaml:"products"`
	Categories    []Category     `json:"categories" yaml:"categories"`
	Orders        []Order        `json:"orders" yaml:"orders"`
	OrderItems    []OrderItem    `json:"orderItems" yaml:"orderItems"`
	Users         []User         `json:"users" yaml:"users"`
	Addresses     []Address      `json:"addresses" yaml:"addresses"`
	Coupons       []Coupon       `json:"coupons" yaml:"coupons"`
	CartRules     []CartRule     `json:"cartRules" yaml:"cartRules"`
	Carts         []Cart         `json:"carts" yaml:"carts"`
	Notifications []Notification `json:"notifications" yaml:"notifications"`
}
