package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/islandpros/directory_api/internal/cache"
	"github.com/islandpros/directory_api/internal/config"
	"github.com/islandpros/directory_api/internal/database"
	"github.com/islandpros/directory_api/internal/handler"
	"github.com/islandpros/directory_api/internal/metrics"
	"github.com/islandpros/directory_api/internal/middleware"
	"github.com/islandpros/directory_api/internal/repository"
	"github.com/islandpros/directory_api/internal/service"
	"github.com/islandpros/directory_api/internal/sse"
	"github.com/islandpros/directory_api/internal/worker"
)

// main is the application entrypoint for the Island Pros directory API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting directory api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis. Only reference lists are cached, so the API
	// keeps serving from Postgres when Redis is down.
	var (
		refCache    service.ReferenceCache
		cachePinger handler.CachePinger
	)
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, reference cache disabled")
	} else {
		defer redisClient.Close()
		refCache = cache.NewReferenceCache(redisClient, cfg.Directory.ReferenceCacheTTL)
		cachePinger = redisClient
		log.Info().Msg("redis connected successfully")
	}

	// 4. Metrics
	m := metrics.New()

	// 5. Initialize repositories
	providerRepo := repository.NewProviderRepository(db, cfg.Directory.QueryTimeout)
	referenceRepo := repository.NewReferenceRepository(db)

	// 6. Initialize services
	sseHub := sse.NewHub()
	directorySvc := service.NewDirectoryService(providerRepo, m, time.Now)
	providerSvc := service.NewProviderService(providerRepo, m, sse.NewHubNotifier(sseHub))
	referenceSvc := service.NewReferenceService(referenceRepo, refCache)

	// 7. Initialize handlers
	handlers := &handler.Handlers{
		Health:        handler.NewHealthHandler(db, cachePinger),
		Directory:     handler.NewDirectoryHandler(directorySvc),
		Reference:     handler.NewReferenceHandler(referenceSvc),
		ProviderAdmin: handler.NewProviderAdminHandler(providerSvc),
		SSE:           handler.NewSSEHandler(sseHub, cfg.JWTSecret),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret)
	defer jwtMw.Close()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, handlers, jwtMw)

	// 10. Cancel on interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// 11. Start workers
	if refCache != nil {
		g.Go(func() error {
			worker.NewReferenceRefreshWorker(referenceSvc, cfg.Worker.ReferenceRefreshInterval).Start(gctx)
			return nil
		})
	}

	// 12. Start HTTP server
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// 13. Shutdown HTTP server with timeout once the context ends
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited")
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
