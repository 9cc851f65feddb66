package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
	"github.com/Chauhan-saab2006/music--app/internal/ports"
)

// DefaultReloadDelay is how long the watcher waits for file changes to settle.
const DefaultReloadDelay = 500 * time.Millisecond

// CatalogTarget receives reloaded catalogs. PlayerController satisfies it.
type CatalogTarget interface {
	ReplaceCatalog(tracks []domain.Track)
}

// WatchPath returns the path to watch for a catalog source, or false for
// sources that are not backed by the file system.
func WatchPath(source ports.CatalogSource) (string, bool) {
	switch s := source.(type) {
	case FileSource:
		return s.Path, true
	case DirectorySource:
		return s.Root, true
	default:
		return "", false
	}
}

// CatalogWatcher reloads the catalog when its file or music directory changes
// and hands the result to a CatalogTarget. Failed reloads keep the current catalog.
type CatalogWatcher struct {
	logger  *slog.Logger
	catalog *CatalogService
	target  CatalogTarget
	delay   time.Duration

	root      string
	file      string // base name when watching a single catalog file
	recursive bool

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewCatalogWatcher creates a watcher for the catalog service's source.
func NewCatalogWatcher(
	logger *slog.Logger,
	catalog *CatalogService,
	target CatalogTarget,
	delay time.Duration,
) (*CatalogWatcher, error) {
	path, ok := WatchPath(catalog.Source())
	if !ok {
		return nil, domain.NewServiceError("CatalogWatcher", "New",
			catalog.Source().Describe()+" cannot be watched", nil)
	}
	if delay <= 0 {
		delay = DefaultReloadDelay
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w := &CatalogWatcher{
		logger:  logger.With("component", "catalog-watcher"),
		catalog: catalog,
		target:  target,
		delay:   delay,
		done:    make(chan struct{}),
	}
	if _, isDir := catalog.Source().(DirectorySource); isDir {
		w.root = abs
		w.recursive = true
	} else {
		// Editors replace files by rename, so the parent directory is watched.
		w.root = filepath.Dir(abs)
		w.file = filepath.Base(abs)
	}
	return w, nil
}

// Start installs the watches and begins processing events in the background.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher

	if w.recursive {
		err = w.addRecursive(w.root)
	} else {
		err = watcher.Add(w.root)
	}
	if err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	go w.run(ctx)

	w.logger.Info("watching catalog", slog.String("path", w.root), slog.Bool("recursive", w.recursive))
	return nil
}

func (w *CatalogWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", slog.String("path", path), slog.Any("error", err))
		}
		return nil
	})
}

func (w *CatalogWatcher) run(ctx context.Context) {
	defer close(w.done)
	defer func() { _ = w.watcher.Close() }()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.Any("error", err))

		case <-fire:
			fire = nil
			w.reload(ctx)
		}
	}
}

func (w *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.file != "" {
		return filepath.Base(event.Name) == w.file
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return true
		}
	}
	// Removed or renamed directories have no extension and must trigger a rescan too.
	return IsSupportedFile(event.Name) || filepath.Ext(event.Name) == ""
}

func (w *CatalogWatcher) reload(ctx context.Context) {
	tracks, err := w.catalog.Load(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Warn("catalog reload failed, keeping current catalog", slog.Any("error", err))
		}
		return
	}
	w.target.ReplaceCatalog(tracks)
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *CatalogWatcher) Close() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-w.done
}
