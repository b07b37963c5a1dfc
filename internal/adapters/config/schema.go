package config

import "time"

// Shelffile represents the structure of the shelf.yaml configuration file.
type Shelffile struct {
	Version       string         `yaml:"version"`
	Dataset       string         `yaml:"dataset"`
	KeepUnusedFor *time.Duration `yaml:"keepUnusedFor"`
	Parallelism   *int           `yaml:"parallelism"`
	Latency       *time.Duration `yaml:"latency"`
	Geocoder      *GeocoderDTO   `yaml:"geocoder"`
}

// GeocoderDTO represents the geocoder section of shelf.yaml.
type GeocoderDTO struct {
	BaseURL    string         `yaml:"baseUrl"`
	UserAgent  string         `yaml:"userAgent"`
	RateLimit  *float64       `yaml:"rateLimit"`
	Burst      *int           `yaml:"burst"`
	CacheSize  *int           `yaml:"cacheSize"`
	CacheTTL   *time.Duration `yaml:"cacheTtl"`
	Timeout    *time.Duration `yaml:"timeout"`
	MaxRetries *uint64        `yaml:"maxRetries"`
}

// Scenariofile represents the structure of a scenario file.
type Scenariofile struct {
	Name  string     `yaml:"name"`
	Steps []*StepDTO `yaml:"steps"`
}

// StepDTO represents a scenario step definition.
type StepDTO struct {
	Name        string         `yaml:"name"`
	Kind        string         `yaml:"kind"`
	Endpoint    string         `yaml:"endpoint"`
	Args        map[string]any `yaml:"args"`
	Refs        []string       `yaml:"refs"`
	Target      string         `yaml:"target"`
	Duration    time.Duration  `yaml:"duration"`
	Expect      *ExpectDTO     `yaml:"expect"`
	ExpectError bool           `yaml:"expectError"`
	After       []string       `yaml:"after"`
}

// ExpectDTO represents the assertion of an expect step.
type ExpectDTO struct {
	Status string `yaml:"status"`
	Stale  *bool  `yaml:"stale"`
	Absent bool   `yaml:"absent"`
	Error  string `yaml:"error"`
}
