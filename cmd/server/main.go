package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"map-catalog-service/internal/adapters/primary/http/handlers"
	"map-catalog-service/internal/adapters/primary/http/middleware"
	"map-catalog-service/internal/adapters/secondary/cache"
	"map-catalog-service/internal/adapters/secondary/metrics"
	"map-catalog-service/internal/adapters/secondary/nominatim"
	"map-catalog-service/internal/adapters/secondary/postgres"
	"map-catalog-service/internal/config"
	"map-catalog-service/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// The connector dials lazily and retries after a failed attempt, so a
	// database that is down at boot only degrades requests until it returns.
	db := postgres.NewConnector(postgres.NewPoolDialer(cfg.Database))
	defer db.Close()

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := db.Pool(bootCtx); err != nil {
		log.WithError(err).Warn("database not ready at startup, will retry on first request")
	}
	cancelBoot()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	mapRepo := postgres.NewMapRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	cursorCache := cache.NewFreecache(cfg.Catalog.CursorCacheSize, cfg.Catalog.CursorTTL)
	suggestCache := cache.NewFreecache(cfg.Suggest.CacheSize, cfg.Suggest.CacheTTL)
	geocoder := nominatim.NewNominatimClient(&cfg.Suggest)
	recorder := metrics.NewRecorder()

	// Core Services (Application Layer)
	catalogSvc := services.NewCatalogService(mapRepo, cursorCache, recorder, cfg.Catalog.MaxPageSize)
	mapSvc := services.NewMapService(mapRepo)
	voteSvc := services.NewVoteService(mapRepo, recorder)
	creditSvc := services.NewCreditLedgerService(accountRepo, recorder, cfg.Credits.DefaultBalance)
	purchaseSvc := services.NewPurchaseService(mapRepo, creditSvc, recorder)
	suggestionSvc := services.NewSuggestionService(geocoder, suggestCache, cfg.Suggest.ExcludedType)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(catalogSvc, mapSvc, voteSvc, purchaseSvc, creditSvc, suggestionSvc, cfg.Catalog.DefaultPageSize)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Identity(), middleware.Logging(), gin.Recovery())
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics(recorder))
		router.GET(cfg.Metrics.Path, gin.WrapH(recorder.Handler()))
		log.Infof("metrics exposed on %s", cfg.Metrics.Path)
	}

	api := router.Group("/api/v1/catalog")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "db": db.State().String(), "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": db.State().String()})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
