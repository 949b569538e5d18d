package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/codyseavey/pogo-parser/backend/internal/api"
	"github.com/codyseavey/pogo-parser/backend/internal/database"
	"github.com/codyseavey/pogo-parser/backend/internal/services"
)

func main() {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./pogo_parser.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Species catalog
	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "./data/species.json"
	}
	catalogService, err := services.NewCatalogService(catalogPath)
	if err != nil {
		log.Fatalf("Failed to load species catalog: %v", err)
	}

	matcher, err := services.NewSpeciesMatcher(catalogService.Catalog(), services.MatcherOptions{})
	if err != nil {
		log.Fatalf("Failed to initialize species matcher: %v", err)
	}

	// Date parsing uses wall-clock time in this location
	loc := time.UTC
	if name := os.Getenv("DATE_LOCATION"); name != "" {
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
		} else {
			log.Printf("Warning: unknown DATE_LOCATION %q, using UTC: %v", name, err)
		}
	}
	dateParser := services.NewDateRangeParser(loc)

	extractor := services.NewTextExtractor(services.ExtractorConfig{
		Blacklist: splitList(os.Getenv("EXTRACT_BLACKLIST")),
		Whitelist: splitList(os.Getenv("EXTRACT_WHITELIST")),
	})

	fetchRate := 1.0
	if s := os.Getenv("FETCH_RATE_PER_SEC"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			fetchRate = v
		}
	}
	fetchCacheSize := 64
	if s := os.Getenv("FETCH_CACHE_SIZE"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			fetchCacheSize = v
		}
	}
	fetcher := services.NewPageFetcher(services.PageFetcherConfig{
		RatePerSecond: fetchRate,
		CacheSize:     fetchCacheSize,
	})

	db := database.GetDB()
	unresolved := services.NewResolutionLog(db)
	eventService := services.NewEventService(db, catalogService, matcher, extractor, dateParser, fetcher)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retentionDays := 30
	if s := os.Getenv("UNRESOLVED_RETENTION_DAYS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			retentionDays = v
		}
	}
	go unresolved.StartPruner(ctx, time.Duration(retentionDays)*24*time.Hour, 6*time.Hour)

	// Setup router
	router := api.SetupRouter(api.Services{
		Catalog:    catalogService,
		Matcher:    matcher,
		Extractor:  extractor,
		Dates:      dateParser,
		Events:     eventService,
		Unresolved: unresolved,
	})

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the pruner
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// splitList parses a comma-separated env value; empty means use the defaults
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
