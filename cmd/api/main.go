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

	"booking_portal_backend/internal/apiclient"
	"booking_portal_backend/internal/attachments"
	"booking_portal_backend/internal/booking"
	"booking_portal_backend/internal/booking/service"
	"booking_portal_backend/internal/booking/session"
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/internal/booking/wizard"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/internal/geocoding"
	apphttp "booking_portal_backend/internal/http"
	"booking_portal_backend/internal/http/router"
	"booking_portal_backend/internal/services"
	"booking_portal_backend/internal/services/repository"
	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/db"
	"booking_portal_backend/platform/logger"
	"booking_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// redisHealth adapts the Redis client to the readiness check.
type redisHealth struct {
	rdb *redis.Client
}

func (h redisHealth) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var health []apphttp.HealthChecker

	redisOpts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		panic("invalid REDIS_URL: " + err.Error())
	}
	rdb := redis.NewClient(redisOpts)
	defer func() {
		_ = rdb.Close()
	}()
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	health = append(health, redisHealth{rdb: rdb})
	log.Info("redis connection established")

	catalogRepo, catalogProbe, closeCatalog := initCatalog(ctx, cfg, log)
	if closeCatalog != nil {
		defer closeCatalog()
		health = append(health, catalogProbe)
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Booking photos (MinIO). Uploads are disabled without an endpoint.
	var (
		photos    service.Photos
		previewer wizard.Previewer
	)
	if cfg.IsMinIOEnabled() {
		store, err := attachments.NewMinIOStore(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure booking-photos bucket", 5, 2*time.Second, func() error {
			return store.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketBookingPhotos())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		photoService := attachments.NewService(store, cfg.GetMinIOMaxFileSize(), log)
		photos, previewer = photoService, photoService
		health = append(health, store)
		log.Info("storage service initialized", "bookingPhotosBucket", cfg.GetMinioBucketBookingPhotos())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; photo uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	geocoder := geocoding.NewClient(cfg, geocoding.NewRedisCache(rdb, log), log)
	geocodingModule := geocoding.NewModule(geocoder)

	servicesModule := services.NewModule(catalogRepo, log)

	api := apiclient.New(cfg, log)
	requests := submitter.New(api, cfg.GetBookingTimeZone(), log)

	bookingModule, err := booking.NewModule(
		session.NewStore(rdb, cfg.GetBookingSessionTTL(), log),
		wizard.Deps{
			Catalog:   servicesModule.Service(),
			Geocoder:  geocoder,
			Submitter: requests,
			Profile:   requests,
			Drafts:    requests,
			Previewer: previewer,
			Log:       log,
		},
		photos,
		requests,
		eventBus,
		val,
		log,
	)
	if err != nil {
		log.Error("failed to initialize booking module", "error", err)
		panic("failed to initialize booking module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: health,
		Modules: []apphttp.Module{
			servicesModule,
			geocodingModule,
			bookingModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initCatalog returns the service catalog: the YAML file by default, or the
// Postgres table when CATALOG_SOURCE=database. The pool, when opened, is also
// returned as a readiness probe.
func initCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Reader, apphttp.HealthChecker, func()) {
	if cfg.GetCatalogSource() != "database" {
		repo, err := repository.LoadStaticFile(cfg.GetCatalogFile())
		if err != nil {
			log.Error("failed to load service catalog", "error", err, "file", cfg.GetCatalogFile())
			panic("failed to load service catalog: " + err.Error())
		}
		log.Info("service catalog loaded", "file", cfg.GetCatalogFile())
		return repo, nil, nil
	}

	var pool *pgxpool.Pool
	err := withRetry(ctx, log, "database", 5, 2*time.Second, func() error {
		var openErr error
		pool, openErr = db.Open(ctx, cfg, "migrations")
		return openErr
	})
	if err != nil {
		log.Error("failed to prepare database", "error", err)
		panic("failed to prepare database: " + err.Error())
	}
	log.Info("database ready, migrations applied")

	return repository.New(pool), pool, pool.Close
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
