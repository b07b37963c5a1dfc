// Package app implements the application layer for shelf.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/shelf/internal/adapters/docstore"
	"go.trai.ch/shelf/internal/adapters/geocode"
	"go.trai.ch/shelf/internal/adapters/watcher"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	store        *docstore.Store
	watchers     watcher.Factory
	geocoder     ports.Geocoder
	stdout       io.Writer
	stderr       io.Writer
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, log ports.Logger, store *docstore.Store, watchers watcher.Factory) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		store:        store,
		watchers:     watchers,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithOutput redirects renderer and command output.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithGeocoder replaces the HTTP geocoding client.
func (a *App) WithGeocoder(g ports.Geocoder) *App {
	a.geocoder = g
	return a
}

// Geocode resolves an address and prints the candidates.
func (a *App) Geocode(ctx context.Context, query string) ([]domain.Place, error) {
	g := a.geocoder
	if g == nil {
		cfg, err := a.configLoader.Load(".")
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load configuration")
		}
		g = geocode.New(cfg.Geocoder, domain.DefaultGeocodeCachePath(), a.logger)
	}

	places, err := g.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		a.logger.Warn(fmt.Sprintf("no places found for %q", query))
	}
	for _, p := range places {
		_, _ = fmt.Fprintf(a.stdout, "%.6f,%.6f\t%s\n", p.Lat, p.Lng, p.DisplayName)
	}
	return places, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Snapshots bool
	Cache     bool
}

// Clean removes local state based on the provided options.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Snapshots {
		remove(domain.DefaultSnapshotPath(), "document snapshots")
	}
	if options.Cache {
		remove(domain.DefaultGeocodeCachePath(), "geocoding cache")
	}

	return errs
}
