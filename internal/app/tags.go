package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/shelf/internal/adapters/telemetry"
	"go.trai.ch/shelf/internal/api"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/engine/tagcache"
	"go.trai.ch/zerr"
)

// TagsOptions configuration for the Tags method.
type TagsOptions struct {
	// Endpoint, when set, is invoked once and its tagged references are printed.
	Endpoint string
	Args     domain.Args
	// Dataset overrides the dataset configured in shelf.yaml.
	Dataset string
}

// Tags prints the tag enumeration and endpoints, or probes one endpoint.
// Probing never writes a snapshot, so mutations leave no trace.
func (a *App) Tags(ctx context.Context, opts TagsOptions) ([]domain.TaggedRef, error) {
	var (
		mu   sync.Mutex
		refs []domain.TaggedRef
	)
	layer := tagcache.New(a.store, telemetry.NewOTelTracer("shelf"), a.logger,
		tagcache.WithKeepUnusedFor(0),
		tagcache.WithListener(func(ev domain.Event) {
			if ev.Kind == domain.EventMutation && ev.Name == opts.Endpoint {
				mu.Lock()
				refs = ev.Refs
				mu.Unlock()
			}
		}),
	)
	defer layer.Close()
	if err := api.Register(layer); err != nil {
		return nil, err
	}
	eps := layer.Endpoints()

	if opts.Endpoint == "" {
		names := make([]string, 0, len(domain.AllTags()))
		for _, t := range domain.AllTags() {
			names = append(names, t.String())
		}
		_, _ = fmt.Fprintf(a.stdout, "tags: %s\n", strings.Join(names, ", "))
		for _, q := range eps.Queries {
			_, _ = fmt.Fprintf(a.stdout, "query    %s\n", q)
		}
		for _, m := range eps.Mutations {
			_, _ = fmt.Fprintf(a.stdout, "mutation %s\n", m)
		}
		return nil, nil
	}

	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	datasetPath := cfg.Dataset
	if opts.Dataset != "" {
		datasetPath = opts.Dataset
	}
	if err := a.seed(datasetPath, opts.Dataset != ""); err != nil {
		return nil, err
	}

	switch {
	case slices.Contains(eps.Queries, opts.Endpoint):
		entry, err := layer.Invoke(ctx, opts.Endpoint, opts.Args)
		if err != nil {
			return nil, err
		}
		if entry.Err != nil {
			a.logger.Warn(fmt.Sprintf("%s failed: %v", opts.Endpoint, entry.Err))
		}
		refs = entry.Provided
		a.printRefs("provides", refs)
	case slices.Contains(eps.Mutations, opts.Endpoint):
		// A failed write is logged by the layer; its refs are still reported.
		_, _ = layer.InvokeMutation(ctx, opts.Endpoint, opts.Args)
		mu.Lock()
		defer mu.Unlock()
		a.printRefs("invalidates", refs)
	default:
		return nil, zerr.With(domain.ErrUnknownEndpoint, "endpoint", opts.Endpoint)
	}
	return refs, nil
}

func (a *App) printRefs(verb string, refs []domain.TaggedRef) {
	if len(refs) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "%s nothing\n", verb)
		return
	}
	for _, r := range refs {
		_, _ = fmt.Fprintf(a.stdout, "%s %s\n", verb, r)
	}
}
