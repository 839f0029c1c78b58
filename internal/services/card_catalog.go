package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codyseavey/card-linker/internal/metrics"
)

// DefaultLoadWait is how long a trigger waits for an in-progress reload
// before it is dropped
const DefaultLoadWait = time.Second

var (
	ErrCatalogLoading = errors.New("catalog is reloading")
	ErrNoCatalog      = errors.New("no catalog loaded")
)

// CatalogService owns the active index bundle. Reloads build a complete new
// bundle off to the side and publish it with one atomic swap, so readers see
// either the old catalog or the new one and never a partial index.
type CatalogService struct {
	source   CatalogSource
	loadWait time.Duration

	bundle  atomic.Pointer[IndexBundle]
	loading atomic.Bool

	// reloadMu serializes rebuilds; mu guards the fields below it
	reloadMu sync.Mutex
	mu       sync.Mutex
	done     chan struct{} // closed when the running reload finishes
	lastErr  error
	lastLoad time.Time
}

// CatalogStatus is reported by the status endpoint
type CatalogStatus struct {
	Loading   bool        `json:"loading"`
	Loaded    bool        `json:"loaded"`
	LastLoad  time.Time   `json:"last_load,omitempty"`
	LastError string      `json:"last_error,omitempty"`
	Index     *IndexStats `json:"index,omitempty"`
}

func NewCatalogService(source CatalogSource, loadWait time.Duration) *CatalogService {
	if loadWait <= 0 {
		loadWait = DefaultLoadWait
	}
	return &CatalogService{
		source:   source,
		loadWait: loadWait,
	}
}

// Reload loads the catalog from the source and swaps in a freshly built
// bundle. On failure the previous bundle stays active.
func (s *CatalogService) Reload(ctx context.Context) (*IndexStats, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	done := make(chan struct{})
	s.mu.Lock()
	s.done = done
	s.mu.Unlock()
	s.loading.Store(true)

	defer func() {
		s.loading.Store(false)
		close(done)
		metrics.CatalogReloadDuration.Observe(time.Since(start).Seconds())
	}()

	records, err := s.source.Load(ctx)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("failed").Inc()
		s.setResult(err)
		log.Printf("Catalog: reload failed, keeping previous index: %v", err)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	bundle := BuildIndex(records)
	s.bundle.Store(bundle)
	s.setResult(nil)

	stats := bundle.Stats()
	metrics.CatalogReloadsTotal.WithLabelValues("success").Inc()
	metrics.CatalogCards.Set(float64(stats.Indexed))
	for name, count := range stats.KeyCount {
		metrics.IndexKeys.WithLabelValues(string(name)).Set(float64(count))
	}

	log.Printf("Catalog: loaded %d cards (%d skipped) in %v", stats.Indexed, stats.Skipped, time.Since(start).Round(time.Millisecond))
	return &stats, nil
}

func (s *CatalogService) setResult(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err == nil {
		s.lastLoad = time.Now()
	}
}

// Bundle returns the active bundle, nil before the first successful load
func (s *CatalogService) Bundle() *IndexBundle {
	return s.bundle.Load()
}

// Loading reports whether a reload is in progress
func (s *CatalogService) Loading() bool {
	return s.loading.Load()
}

// Ready returns the bundle to serve a trigger with. While a reload runs it
// waits up to the configured delay; if the reload is still going after that
// the trigger is dropped with ErrCatalogLoading rather than queued.
func (s *CatalogService) Ready(ctx context.Context) (*IndexBundle, error) {
	if s.loading.Load() {
		s.mu.Lock()
		done := s.done
		s.mu.Unlock()

		timer := time.NewTimer(s.loadWait)
		defer timer.Stop()

		select {
		case <-done:
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if s.loading.Load() {
			metrics.DroppedWhileLoading.Inc()
			return nil, ErrCatalogLoading
		}
	}

	bundle := s.bundle.Load()
	if bundle == nil {
		return nil, ErrNoCatalog
	}
	return bundle, nil
}

func (s *CatalogService) Status() CatalogStatus {
	s.mu.Lock()
	status := CatalogStatus{
		Loading:  s.loading.Load(),
		LastLoad: s.lastLoad,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	if bundle := s.bundle.Load(); bundle != nil {
		stats := bundle.Stats()
		status.Loaded = true
		status.Index = &stats
	}
	return status
}
