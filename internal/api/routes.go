package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/pogo-parser/backend/internal/api/handlers"
	"github.com/codyseavey/pogo-parser/backend/internal/metrics"
	"github.com/codyseavey/pogo-parser/backend/internal/services"
)

// Services bundles what the HTTP layer needs
type Services struct {
	Catalog    *services.CatalogService
	Matcher    *services.SpeciesMatcher
	Extractor  *services.TextExtractor
	Dates      *services.DateRangeParser
	Events     *services.EventService
	Unresolved *services.ResolutionLog
}

func SetupRouter(svc Services) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(requestMetrics())

	// Initialize handlers
	speciesHandler := handlers.NewSpeciesHandler(svc.Catalog, svc.Matcher, svc.Extractor, svc.Unresolved)
	dateHandler := handlers.NewDateHandler(svc.Dates)
	eventHandler := handlers.NewEventHandler(svc.Events)

	// API routes
	api := router.Group("/api")
	{
		species := api.Group("/species")
		{
			species.POST("/resolve", speciesHandler.ResolveSpecies)
			species.POST("/extract", speciesHandler.ExtractSpecies)
			species.GET("/domains", speciesHandler.ListDomains)
			species.GET("/:id", speciesHandler.GetSpecies)
		}

		dates := api.Group("/dates")
		{
			dates.POST("/parse", dateHandler.ParseDates)
		}

		if svc.Events != nil {
			events := api.Group("/events")
			{
				events.GET("", eventHandler.ListEvents)
				events.POST("", eventHandler.CreateEvent)
				events.GET("/:id", eventHandler.GetEvent)
			}
		}

		if svc.Unresolved != nil {
			api.GET("/unresolved", speciesHandler.ListUnresolved)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

// requestMetrics records request counts and latency per route template
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
