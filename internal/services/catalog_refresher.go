package services

import (
	"context"
	"log"
	"time"
)

// CatalogRefresher re-downloads the catalog on a fixed interval so edits to
// the shared sheet reach the bot without an admin reload
type CatalogRefresher struct {
	catalog  reloader
	interval time.Duration
}

func NewCatalogRefresher(catalog reloader, interval time.Duration) *CatalogRefresher {
	return &CatalogRefresher{
		catalog:  catalog,
		interval: interval,
	}
}

// Start runs until ctx is cancelled. The initial load is the caller's job.
func (r *CatalogRefresher) Start(ctx context.Context) {
	log.Printf("Catalog refresher started: reloading every %v", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Catalog refresher stopping...")
			return
		case <-ticker.C:
			if _, err := r.catalog.Reload(ctx); err != nil {
				log.Printf("Catalog refresher: reload failed: %v", err)
			}
		}
	}
}
