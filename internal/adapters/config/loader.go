// Package config provides the configuration, dataset and scenario loader for shelf.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using YAML files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers shelf.yaml from cwd upwards and resolves it against the defaults.
// When no file is found the defaults rooted at cwd are returned.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	configPath, ok := findConfiguration(cwd)
	if !ok {
		return domain.DefaultConfig(filepath.Clean(cwd)), nil
	}

	var file Shelffile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	cfg := domain.DefaultConfig(filepath.Dir(configPath))
	if err := l.apply(cfg, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

func (l *Loader) apply(cfg *domain.Config, file *Shelffile) error {
	if file.Version != "" && file.Version != "1" {
		l.Logger.Warn(fmt.Sprintf("unknown %s version %q, reading as version 1", domain.ConfigFileName, file.Version))
	}

	if file.Dataset != "" {
		cfg.Dataset = resolvePath(cfg.Root, file.Dataset)
	}
	if file.KeepUnusedFor != nil {
		if *file.KeepUnusedFor < 0 {
			return zerr.With(domain.ErrInvalidConfig, "keepUnusedFor", file.KeepUnusedFor.String())
		}
		cfg.KeepUnusedFor = *file.KeepUnusedFor
	}
	if file.Parallelism != nil {
		if *file.Parallelism < 1 {
			return zerr.With(domain.ErrInvalidConfig, "parallelism", *file.Parallelism)
		}
		cfg.Parallelism = *file.Parallelism
	}
	if file.Latency != nil {
		if *file.Latency < 0 {
			return zerr.With(domain.ErrInvalidConfig, "latency", file.Latency.String())
		}
		cfg.Latency = *file.Latency
	}
	if file.Geocoder != nil {
		return applyGeocoder(&cfg.Geocoder, file.Geocoder)
	}
	return nil
}

func applyGeocoder(cfg *domain.GeocoderConfig, dto *GeocoderDTO) error {
	if dto.BaseURL != "" {
		cfg.BaseURL = dto.BaseURL
	}
	if dto.UserAgent != "" {
		cfg.UserAgent = dto.UserAgent
	}
	if dto.RateLimit != nil {
		if *dto.RateLimit <= 0 {
			return zerr.With(domain.ErrInvalidConfig, "geocoder.rateLimit", *dto.RateLimit)
		}
		cfg.RateLimit = *dto.RateLimit
	}
	if dto.Burst != nil {
		if *dto.Burst < 1 {
			return zerr.With(domain.ErrInvalidConfig, "geocoder.burst", *dto.Burst)
		}
		cfg.Burst = *dto.Burst
	}
	if dto.CacheSize != nil {
		if *dto.CacheSize < 1 {
			return zerr.With(domain.ErrInvalidConfig, "geocoder.cacheSize", *dto.CacheSize)
		}
		cfg.CacheSize = *dto.CacheSize
	}
	if dto.CacheTTL != nil {
		cfg.CacheTTL = *dto.CacheTTL
	}
	if dto.Timeout != nil {
		cfg.Timeout = *dto.Timeout
	}
	if dto.MaxRetries != nil {
		cfg.MaxRetries = *dto.MaxRetries
	}
	return nil
}

// LoadDataset reads seed documents from path.
func (l *Loader) LoadDataset(path string) (*domain.Dataset, error) {
	var ds domain.Dataset
	if err := readAndUnmarshalYAML(path, &ds); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return &ds, nil
}

// LoadScenario reads and validates the scenario at path.
func (l *Loader) LoadScenario(path string) (*domain.Scenario, error) {
	var file Scenariofile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	name := file.Name
	if name == "" {
		name = trimExt(filepath.Base(path))
	}

	sc := domain.NewScenario(name)
	for i, dto := range file.Steps {
		if dto == nil {
			continue
		}
		step, err := buildStep(dto)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "path", path), "index", i)
		}
		if err := sc.AddStep(step); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return sc, nil
}

func buildStep(dto *StepDTO) (*domain.Step, error) {
	step := &domain.Step{
		Name:        dto.Name,
		Kind:        domain.StepKind(dto.Kind),
		Endpoint:    dto.Endpoint,
		Args:        domain.Args(dto.Args),
		Target:      dto.Target,
		Duration:    dto.Duration,
		ExpectError: dto.ExpectError,
		After:       dto.After,
	}
	if step.Name == "" {
		return nil, zerr.With(domain.ErrInvalidStep, "missing", "name")
	}

	for _, raw := range dto.Refs {
		ref, err := domain.ParseTaggedRef(raw)
		if err != nil {
			return nil, zerr.With(err, "step", dto.Name)
		}
		step.Refs = append(step.Refs, ref)
	}

	if dto.Expect != nil {
		exp := &domain.Expectation{
			Stale:  dto.Expect.Stale,
			Absent: dto.Expect.Absent,
			Error:  dto.Expect.Error,
		}
		if dto.Expect.Status != "" {
			status, ok := domain.ParseStatus(dto.Expect.Status)
			if !ok {
				return nil, zerr.With(zerr.With(domain.ErrInvalidStep, "step", dto.Name), "status", dto.Expect.Status)
			}
			exp.Status = &status
		}
		step.Expect = exp
	}
	return step, nil
}

// findConfiguration walks from cwd to the filesystem root looking for shelf.yaml.
func findConfiguration(cwd string) (string, bool) {
	currentDir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

// resolvePath resolves p against root unless it is absolute.
func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(root, p))
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](path string, target *T) error {
	// #nosec G304 -- path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
