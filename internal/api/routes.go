package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/card-linker/internal/api/handlers"
	"github.com/codyseavey/card-linker/internal/services"
)

func SetupRouter(linker *services.Linker, catalog *services.CatalogService, sessions *services.SessionManager, misses *services.MissLogService, corsOrigins []string) *gin.Engine {
	router := gin.Default()
	router.Use(requestID(), recordMetrics())

	// CORS for the admin UI; the gateway bridge calls server to server
	config := cors.DefaultConfig()
	if len(corsOrigins) > 0 {
		config.AllowOrigins = corsOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(linker)
	catalogHandler := handlers.NewCatalogHandler(catalog, sessions)
	lookupHandler := handlers.NewLookupHandler(misses)

	// API routes
	api := router.Group("/api")
	{
		// Chat gateway events
		api.POST("/events", eventHandler.PostEvent)

		// Catalog routes
		catalogRoutes := api.Group("/catalog")
		{
			catalogRoutes.POST("/reload", catalogHandler.Reload)
			catalogRoutes.GET("/status", catalogHandler.GetStatus)
		}

		api.GET("/cards/resolve", catalogHandler.Resolve)
		api.GET("/sessions", catalogHandler.GetSessions)

		// Lookup miss routes
		lookups := api.Group("/lookups")
		{
			lookups.GET("/misses", lookupHandler.GetMisses)
			lookups.DELETE("/misses/:key", lookupHandler.ClearMiss)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
