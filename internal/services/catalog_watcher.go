package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const catalogWatchDebounce = 500 * time.Millisecond

// reloader is the part of CatalogService the watcher drives
type reloader interface {
	Reload(ctx context.Context) (*IndexStats, error)
}

// CatalogWatcher reloads the catalog whenever the local card file changes.
// It watches the parent directory so editors that save via rename are seen.
// Do not use it together with SheetSource: every download rewrites the file.
type CatalogWatcher struct {
	path     string
	catalog  reloader
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

func NewCatalogWatcher(path string, catalog reloader) (*CatalogWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve card file path: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &CatalogWatcher{
		path:     abs,
		catalog:  catalog,
		watcher:  watcher,
		debounce: catalogWatchDebounce,
	}, nil
}

// Start runs the watch loop until ctx is cancelled or Close is called
func (w *CatalogWatcher) Start(ctx context.Context) {
	log.Printf("Catalog watcher started: %s", w.path)

	// A stopped timer that fires once after the last burst of events
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Catalog watcher stopping...")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Catalog watcher: %v", err)

		case <-timer.C:
			log.Printf("Catalog watcher: %s changed, reloading", filepath.Base(w.path))
			if _, err := w.catalog.Reload(ctx); err != nil {
				log.Printf("Catalog watcher: reload failed: %v", err)
			}
		}
	}
}

func (w *CatalogWatcher) Close() error {
	return w.watcher.Close()
}

func (w *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
