package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pethotel/internal/api"
	"pethotel/internal/availability"
	"pethotel/internal/config"
	"pethotel/internal/database"
	"pethotel/internal/documents"
	"pethotel/internal/domain"
	"pethotel/internal/events"
	"pethotel/internal/export"
	"pethotel/internal/geo"
	"pethotel/internal/logging"
	"pethotel/internal/metrics"
	"pethotel/internal/repository"
	"pethotel/internal/scheduler"
	"pethotel/internal/service"
	"pethotel/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	store := initDocumentStore(cfg, db, redisClient, logger)
	writer := documents.NewWriter(store, documents.WriterOptions{
		Debounce:     time.Duration(cfg.Documents.DebounceMS) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Documents.WriteTimeoutMS) * time.Millisecond,
		Retry:        worker.PolicyFromConfig(cfg.Documents.Retry),
	}, logger)
	docs := documents.NewService(store, writer, logger)

	bus := events.NewEventBus()
	bus.SubscribeAll(func(event *events.Event) error {
		logger.Debug().Str("event", event.Type).RawJSON("payload", event.Payload).Msg("domain event")
		return nil
	})

	svc, closeServices, err := initServices(ctx, cfg, db, docs, bus, logger)
	if err != nil {
		_ = docs.Close(context.Background())
		return err
	}
	defer closeServices()

	sched, err := initScheduler(cfg, svc.Exporter, database.NewBackupService(db.Path(), cfg.Backup, logger), logger)
	if err != nil {
		_ = docs.Close(context.Background())
		return err
	}

	startMetrics(ctx, cfg, logger)

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}
	httpServer := api.NewHTTPServer(cfg.API, svc, logger)

	return serve(ctx, httpServer, sched, docs, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// the failover store keeps probing, so the client stays open
		logger.Warn().Err(err).Msg("redis connection failed, documents fall back to sqlite")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

func initDocumentStore(cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.DocumentStore {
	switch cfg.Documents.Backend {
	case "memory":
		logger.Warn().Msg("documents are kept in memory and lost on restart")
		return repository.NewMemoryDocumentStore()
	case "redis":
		if redisClient != nil {
			return repository.NewFailoverDocumentStore(repository.NewRedisDocumentStore(redisClient), db, logger)
		}
		logger.Warn().Msg("redis backend selected without redis address, using sqlite")
	}
	return db
}

func initServices(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	docs *documents.Service,
	bus *events.EventBus,
	logger *zerolog.Logger,
) (api.Services, func(), error) {
	seasons := make([]availability.DateRange, 0, len(cfg.Calendar.HighSeason))
	for _, r := range cfg.Calendar.HighSeason {
		seasons = append(seasons, availability.DateRange{From: r.From, To: r.To})
	}
	calendar, err := availability.NewCalendar(cfg.Calendar.Holidays, seasons)
	if err != nil {
		return api.Services{}, nil, fmt.Errorf("init calendar: %w", err)
	}
	hotel, err := availability.NewHotel(cfg.Hotel.HotelOneLastRoom, cfg.Hotel.HotelTwoFirstRoom, cfg.Hotel.HotelTwoLastRoom)
	if err != nil {
		return api.Services{}, nil, fmt.Errorf("init hotel: %w", err)
	}

	prices := service.NewPricingService(docs, calendar, bus, logger)
	if err := prices.Load(ctx); err != nil {
		return api.Services{}, nil, fmt.Errorf("load pricing: %w", err)
	}
	settings := service.NewSettingsService(docs, bus, logger)
	if err := settings.Load(ctx); err != nil {
		prices.Close()
		return api.Services{}, nil, fmt.Errorf("load settings: %w", err)
	}

	reservations := service.NewReservationService(
		db,
		availability.NewGrooming(calendar, cfg.Grooming.DailyLimit),
		hotel,
		prices,
		bus,
		logger,
	)

	svc := api.Services{
		Reservations: reservations,
		Pricing:      prices,
		Settings:     settings,
		Products:     service.NewProductService(db, bus, logger),
		Documents:    docs,
		Exporter:     export.NewExporter(reservations, cfg.Exports.Path, logger),
		Geo:          geo.NewClient(cfg.Geo, logger),
	}
	closeAll := func() {
		settings.Close()
		prices.Close()
	}
	return svc, closeAll, nil
}

func initScheduler(cfg *config.Config, exporter *export.Exporter, backup *database.BackupService, logger *zerolog.Logger) (*scheduler.Service, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	sched, err := scheduler.New(cfg.Scheduler, logger)
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	var backupRunner scheduler.BackupRunner
	if cfg.Backup.Enabled && cfg.Database.Path != ":memory:" {
		backupRunner = backup
	}
	if err := sched.RegisterJobs(cfg.Scheduler, exporter, backupRunner); err != nil {
		_ = sched.Stop()
		return nil, fmt.Errorf("register jobs: %w", err)
	}
	return sched, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(
	ctx context.Context,
	httpServer *api.HTTPServer,
	sched *scheduler.Service,
	docs *documents.Service,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if sched != nil {
		sched.Start()
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("documents", cfg.Documents.Backend).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)
	if sched != nil {
		if err := sched.Stop(); err != nil {
			logger.Warn().Err(err).Msg("scheduler stop")
		}
	}
	// flush debounced document writes before the store goes away
	if err := docs.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("flush documents")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
