package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/card-linker/internal/api"
	"github.com/codyseavey/card-linker/internal/config"
	"github.com/codyseavey/card-linker/internal/database"
	"github.com/codyseavey/card-linker/internal/services"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.DBPath, cfg.MissRetention); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Catalog source: the shared sheet when configured, the local file otherwise
	var source services.CatalogSource
	if cfg.GoogleSheetID != "" {
		source = services.NewSheetSource(cfg.GoogleSheetID, cfg.CardFilePath)
		log.Printf("Catalog source: Google Sheet %s (cached at %s)", cfg.GoogleSheetID, cfg.CardFilePath)
	} else {
		source = &services.FileSource{Path: cfg.CardFilePath}
		log.Printf("Catalog source: %s", cfg.CardFilePath)
	}

	catalogService := services.NewCatalogService(source, cfg.LoadWait)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A failed first load leaves the bot running without a catalog; triggers
	// are dropped until a reload succeeds
	if _, err := catalogService.Reload(ctx); err != nil {
		log.Printf("Initial catalog load failed: %v", err)
	}

	if cfg.Token == "" {
		log.Println("Warning: DISCORD_TOKEN not set, responses cannot be delivered")
	}
	if cfg.BotUserID == 0 {
		log.Println("Warning: BOT_USER_ID not set, messages from every bot will be ignored")
	}
	messenger := services.NewDiscordMessenger(cfg.Token, cfg.ChatAPIBaseURL, cfg.ChatRateLimit)
	sessionManager := services.NewSessionManager()
	missLog := services.NewMissLogService(database.GetDB())
	linker := services.NewLinker(catalogService, sessionManager, messenger, missLog, cfg.BotUserID)

	// Start background catalog workers with panic recovery
	if cfg.WatchCardFile {
		watcher, err := services.NewCatalogWatcher(cfg.CardFilePath, catalogService)
		if err != nil {
			log.Printf("Failed to start catalog watcher: %v", err)
		} else {
			defer watcher.Close()
			go runWithRestart(ctx, "catalog watcher", watcher.Start)
		}
	}
	if cfg.RefreshInterval > 0 {
		refresher := services.NewCatalogRefresher(catalogService, cfg.RefreshInterval)
		go runWithRestart(ctx, "catalog refresher", refresher.Start)
	}

	// Setup router
	router := api.SetupRouter(linker, catalogService, sessionManager, missLog, cfg.CORSOrigins)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the catalog workers
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// restartDelay is the pause before a panicked worker is started again
var restartDelay = 30 * time.Second

// runWithRestart keeps a background worker alive across panics until ctx is
// cancelled. A worker that returns normally is not restarted.
func runWithRestart(ctx context.Context, name string, start func(context.Context)) {
	for {
		if !runRecovered(ctx, name, start) {
			log.Printf("%s stopped", name)
			return
		}

		select {
		case <-ctx.Done():
			return // Graceful shutdown
		case <-time.After(restartDelay):
			log.Printf("%s restarting after panic recovery...", name)
		}
	}
}

// runRecovered runs start once and reports whether it panicked
func runRecovered(ctx context.Context, name string, start func(context.Context)) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in %s: %v - restarting in %v", name, r, restartDelay)
			panicked = true
		}
	}()
	start(ctx)
	return false
}
