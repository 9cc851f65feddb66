// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/Chauhan-saab2006/music--app/internal/adapter/eventbus"
	"github.com/Chauhan-saab2006/music--app/internal/adapter/media/beep"
	"github.com/Chauhan-saab2006/music--app/internal/adapter/media/mock"
	"github.com/Chauhan-saab2006/music--app/internal/adapter/repository/file"
	"github.com/Chauhan-saab2006/music--app/internal/adapter/repository/memory"
	fyneui "github.com/Chauhan-saab2006/music--app/internal/adapter/ui/fyne"
	"github.com/Chauhan-saab2006/music--app/internal/adapter/web"
	"github.com/Chauhan-saab2006/music--app/internal/config"
	"github.com/Chauhan-saab2006/music--app/internal/logger"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
	"github.com/Chauhan-saab2006/music--app/internal/service"
)

// AppID identifies the desktop application to Fyne (preferences storage, notifications).
const AppID = "io.github.tunedeck"

// catalogLoadTimeout bounds reading a catalog, including directory scans.
const catalogLoadTimeout = 2 * time.Minute

// The browser server drives the same controller as the desktop window.
var _ web.Controller = (*service.PlayerController)(nil)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the CLI
type Application struct {
	cfg *config.Config

	// Core dependencies
	logger    *slog.Logger
	logCloser io.Closer

	// Infrastructure
	eventBus ports.EventBus
	media    ports.MediaBackend

	// Services
	catalog     *service.CatalogService
	controller  *service.PlayerController
	preferences *service.PreferenceService

	// Web UI
	hub    *web.Hub
	server *web.Server

	// Desktop UI
	fyneApp    fyne.App
	mainWindow *fyneui.MainWindow
	presenter  *fyneui.Presenter

	// Catalog watching
	watchMu sync.Mutex
	watcher *service.CatalogWatcher
	runCtx  context.Context

	shutdownOnce sync.Once
}

// Options carries dependencies injected by tests.
type Options struct {
	// LogOutput replaces stderr as the log destination
	LogOutput io.Writer

	// FyneApp allows injecting a test Fyne app for the desktop mode (nil for production)
	FyneApp fyne.App
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Application{cfg: cfg}

	// Step 1: Create logger
	log, closer, err := logger.NewLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level, slog.LevelInfo),
		Format: cfg.Log.Format,
		Output: opts.LogOutput,
		File: logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = log
	a.logCloser = closer
	a.logger.Info("initializing application",
		slog.String("mode", cfg.UI.Mode),
		slog.String("config_file", cfg.File))

	// Step 2: Create an event bus
	a.eventBus = eventbus.NewSyncEventBus(a.logger)

	// Step 3: Load the catalog
	a.catalog = service.NewCatalogService(a.logger, service.NewCatalogSource(cfg.Catalog.Source, a.logger))
	ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
	tracks, err := a.catalog.Load(ctx)
	cancel()
	if err != nil {
		a.closeEarly()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Step 4: Create the media backend and the view for the selected UI
	var view ports.View
	var remote *web.RemoteMedia
	var prefsRepo ports.PreferencesRepository
	switch cfg.UI.Mode {
	case config.ModeDesktop:
		a.media = a.newLocalBackend()
		if opts.FyneApp != nil {
			a.fyneApp = opts.FyneApp
		} else {
			a.fyneApp = fyneapp.NewWithID(AppID)
		}
		a.mainWindow = fyneui.NewMainWindow(a.fyneApp, cfg.UI.Title)
		prefsRepo = memory.NewPreferencesRepository(a.fyneApp.Preferences())

	default:
		a.hub = web.NewHub(a.logger, cfg.Web.AllowedOrigins)
		remote = web.NewRemoteMedia(a.logger, a.eventBus, a.hub, web.MediaResolver(a.catalog))
		a.media = remote
		view = web.NewView(a.logger, a.hub)
		prefsRepo = file.NewPreferencesRepository(cfg.Prefs.Path)
	}

	// Step 5: Create services (with dependency injection)
	a.controller = service.NewPlayerController(
		a.logger,
		service.NewPlaylistState(tracks),
		a.media,
		view,
		a.eventBus,
	)
	a.controller.SetVolumeStep(cfg.UI.VolumeStep)

	if a.mainWindow != nil {
		a.presenter = fyneui.NewPresenter(a.logger, a.controller, a.mainWindow)
		a.presenter.SetCatalogOpener(a.OpenCatalog)
		a.mainWindow.SetPresenter(a.presenter)
		a.controller.SetView(a.presenter)
	}

	if a.hub != nil {
		a.server = web.NewServer(a.logger, web.Config{Addr: cfg.Web.Addr}, a.hub, remote, a.controller, a.catalog)
	}

	// Step 6: Restore saved preferences
	a.preferences = service.NewPreferenceService(a.logger, prefsRepo, a.eventBus)
	a.preferences.Apply(a.controller)

	return a, nil
}

// newLocalBackend picks the desktop audio backend, falling back to the silent
// mock backend when speaker output is unavailable in this build.
func (a *Application) newLocalBackend() ports.MediaBackend {
	if a.cfg.Audio.Backend == config.AudioBeep && beep.Available {
		return beep.NewBackend(a.logger, a.eventBus, beep.Config{
			SampleRate:       a.cfg.Audio.SampleRate,
			BufferSize:       a.cfg.Audio.BufferSize,
			ProgressInterval: a.cfg.Audio.ProgressInterval,
		})
	}
	if a.cfg.Audio.Backend == config.AudioBeep {
		a.logger.Warn("audio output is not available in this build, playing silently")
	}
	return mock.NewBackend(a.logger, a.eventBus)
}

func (a *Application) closeEarly() {
	_ = a.eventBus.Close()
	_ = a.logCloser.Close()
}

// Run starts the application and blocks until ctx is cancelled or, in the
// desktop mode, the window is closed.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.logger.Info("tunedeck started", slog.String("version", GetVersionInfo().FullString()))

	if a.hub != nil {
		a.hub.Start()
	}
	a.controller.Start()

	a.watchMu.Lock()
	a.runCtx = ctx
	a.watchMu.Unlock()
	if err := a.startWatcher(); err != nil {
		a.logger.Warn("catalog watching disabled", slog.Any("error", err))
	}

	if a.server != nil {
		return a.server.Run(ctx)
	}

	closed := make(chan struct{})
	a.mainWindow.SetOnClosed(func() { close(closed) })
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(a.mainWindow.Close)
		case <-closed:
		}
	}()
	// Blocks until the window is closed
	a.mainWindow.ShowAndRun()
	return nil
}

// startWatcher (re)starts watching the current catalog source when enabled.
func (a *Application) startWatcher() error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	if !a.cfg.Catalog.Watch || a.runCtx == nil {
		return nil
	}
	if _, ok := service.WatchPath(a.catalog.Source()); !ok {
		return nil
	}

	watcher, err := service.NewCatalogWatcher(a.logger, a.catalog, a.controller, a.cfg.Catalog.ReloadDelay)
	if err != nil {
		return err
	}
	if err := watcher.Start(a.runCtx); err != nil {
		watcher.Close()
		return err
	}
	a.watcher = watcher
	return nil
}

// OpenCatalog switches to the catalog file or music folder at path. The player
// keeps its current catalog when the new one cannot be loaded.
func (a *Application) OpenCatalog(path string) error {
	previous := a.catalog.Source()
	a.catalog.SetSource(service.NewCatalogSource(path, a.logger))

	ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
	defer cancel()
	tracks, err := a.catalog.Load(ctx)
	if err != nil {
		a.catalog.SetSource(previous)
		return err
	}

	a.controller.ReplaceCatalog(tracks)
	if err := a.startWatcher(); err != nil {
		a.logger.Warn("catalog watching disabled", slog.Any("error", err))
	}
	return nil
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	var errs []error
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		a.watchMu.Lock()
		if a.watcher != nil {
			a.watcher.Close()
			a.watcher = nil
		}
		a.runCtx = nil
		a.watchMu.Unlock()

		if a.hub != nil {
			a.hub.Stop()
		}
		a.controller.Shutdown()
		a.preferences.Shutdown()

		if err := a.media.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close media backend: %w", err))
		}
		if err := a.eventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}

		a.logger.Info("application shutdown complete")
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	})
	return errors.Join(errs...)
}

// Controller returns the player controller.
func (a *Application) Controller() *service.PlayerController {
	return a.controller
}

// Catalog returns the catalog service.
func (a *Application) Catalog() *service.CatalogService {
	return a.catalog
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Handler returns the web UI handler, or nil in the desktop mode.
func (a *Application) Handler() http.Handler {
	if a.server == nil {
		return nil
	}
	return a.server.Handler()
}
