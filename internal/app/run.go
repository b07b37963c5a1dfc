package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/shelf/internal/adapters/detector"
	"go.trai.ch/shelf/internal/adapters/linear"
	"go.trai.ch/shelf/internal/adapters/telemetry"
	"go.trai.ch/shelf/internal/adapters/tui"
	"go.trai.ch/shelf/internal/adapters/watcher"
	"go.trai.ch/shelf/internal/api"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/shelf/internal/engine/scenario"
	"go.trai.ch/shelf/internal/engine/tagcache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Dataset overrides the dataset configured in shelf.yaml.
	Dataset string
	// Fresh seeds from the dataset even when a snapshot exists.
	Fresh bool
	// NoSave leaves the snapshot untouched after the run.
	NoSave bool
	// Watch keeps the layer alive and reloads the dataset when it changes.
	Watch bool
	// Inspect keeps the dashboard open after the run until the user quits.
	Inspect bool
	// OutputMode is "auto", "tui", "linear" or "ci".
	OutputMode string
}

// Run executes a scenario against a fresh data layer.
//
//nolint:cyclop // orchestration function
func (a *App) Run(ctx context.Context, scenarioPath string, opts RunOptions) (scenario.Report, error) {
	// 1. Load configuration and scenario
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return scenario.Report{}, zerr.Wrap(err, "failed to load configuration")
	}
	sc, err := a.configLoader.LoadScenario(scenarioPath)
	if err != nil {
		return scenario.Report{}, err
	}

	// 2. Seed the document store
	datasetPath := cfg.Dataset
	if opts.Dataset != "" {
		datasetPath = opts.Dataset
	}
	if opts.Watch && datasetPath == "" {
		return scenario.Report{}, domain.ErrNoDataset
	}
	if err := a.seed(datasetPath, opts.Fresh || opts.Dataset != ""); err != nil {
		return scenario.Report{}, err
	}
	a.store.SetLatency(cfg.Latency)

	// 3. Initialize Renderer
	override, err := detector.ParseMode(opts.OutputMode)
	if err != nil {
		return scenario.Report{}, err
	}
	mode := detector.Resolve(detector.Detect(detector.ProcessEnv()), override)

	var renderer ports.Renderer
	if mode == detector.ModeTUI {
		model := tui.NewModel(a.stderr)
		optsTea := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
		renderer = tui.NewRenderer(&model, optsTea...)
	} else {
		renderer = linear.NewRenderer(a.stdout, a.stderr)
	}

	// 4. Initialize Telemetry
	shutdown := telemetry.Install(telemetry.NewBridge(renderer))
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer("shelf")

	// 5. Initialize the data layer and runner
	layer := tagcache.New(a.store, tracer, a.logger,
		tagcache.WithKeepUnusedFor(cfg.KeepUnusedFor),
		tagcache.WithListener(renderer.OnEvent),
	)
	defer layer.Close()
	if err := api.Register(layer); err != nil {
		return scenario.Report{}, err
	}
	runner := scenario.NewRunner(layer, tracer, renderer)

	// 6. Run Renderer and Runner concurrently
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		err := renderer.Wait()
		if mode == detector.ModeTUI {
			// Quitting the dashboard ends a watch session.
			cancel()
		}
		return err
	})

	var report scenario.Report
	g.Go(func() error {
		defer func() {
			runner.Release()
			// Ensure renderer stops when the run finishes, UNLESS inspection mode is on.
			if !opts.Inspect {
				_ = renderer.Stop()
			}
		}()

		var runErr error
		report, runErr = runner.Run(gctx, sc, cfg.Parallelism)
		if opts.Watch {
			if err := a.watch(gctx, layer, datasetPath); err != nil {
				return err
			}
		}
		if runErr != nil {
			return errors.Join(domain.ErrScenarioFailed, runErr)
		}
		return nil
	})

	err = g.Wait()

	// 7. Persist and summarize
	if !opts.NoSave {
		if saveErr := a.store.Save(); saveErr != nil {
			err = errors.Join(err, saveErr)
		}
	}
	if len(report.Steps) > 0 {
		a.logger.Info(fmt.Sprintf("scenario %s: %d step(s), %d passed, %d failed",
			report.Scenario, len(report.Steps), len(report.Steps)-report.Failed(), report.Failed()))
	}
	return report, err
}

// seed restores the last snapshot, or loads the dataset when there is none or fresh is set.
func (a *App) seed(datasetPath string, fresh bool) error {
	if !fresh {
		restored, err := a.store.Restore()
		if err != nil {
			return err
		}
		if restored {
			a.logger.Info("restored documents from snapshot")
			return nil
		}
	}
	if datasetPath == "" {
		a.logger.Warn("no dataset configured, starting with empty tables")
		return a.store.Load(&domain.Dataset{})
	}
	ds, err := a.configLoader.LoadDataset(datasetPath)
	if err != nil {
		return err
	}
	return a.store.Load(ds)
}

// watch reloads the dataset on change and invalidates every entry, until ctx is done.
func (a *App) watch(ctx context.Context, layer *tagcache.Layer, datasetPath string) error {
	w, err := a.watchers()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, datasetPath); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("watching %s for changes", datasetPath))

	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(_ []string) {
		if err := a.reload(ctx, layer, datasetPath); err != nil {
			a.logger.Error(err)
		}
	})
	for range w.Events() {
		debouncer.Add(datasetPath)
	}
	debouncer.Flush()
	return nil
}

func (a *App) reload(ctx context.Context, layer *tagcache.Layer, datasetPath string) error {
	if ctx.Err() != nil {
		return nil
	}
	ds, err := a.configLoader.LoadDataset(datasetPath)
	if err != nil {
		return err
	}
	if err := a.store.Load(ds); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("reloaded %s", datasetPath))
	return layer.InvalidateAll(ctx)
}
