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

	"sportspot/internal/api"
	"sportspot/internal/auth"
	"sportspot/internal/config"
	"sportspot/internal/database"
	"sportspot/internal/domain"
	"sportspot/internal/events"
	"sportspot/internal/logging"
	"sportspot/internal/metrics"
	"sportspot/internal/models"
	"sportspot/internal/repository"
	"sportspot/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, baseLogger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(baseLogger, "api-main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := database.NewPool(cfg.Database.Path, cfg.Database.BusyTimeout, logging.Component(baseLogger, "database"))
	defer pool.Close()
	db := database.NewDB(pool, logging.Component(baseLogger, "database"))

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}
	tokens := initTokenStore(redisClient, logging.Component(baseLogger, "tokens"))

	bus := events.NewEventBus(logging.Component(baseLogger, "events"))
	events.SubscribeMetrics(bus)
	events.SubscribeLogging(bus, logging.Component(baseLogger, "audit"))

	serviceLogger := logging.Component(baseLogger, "service")
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, tokens)
	venueService := service.NewVenueService(db, db, serviceLogger)
	services := api.Services{
		Auth:     service.NewAuthService(db, tokens, issuer, auth.NewBcryptHasher(bcrypt.DefaultCost), nil, cfg.Auth, serviceLogger),
		Users:    service.NewUserService(db, serviceLogger),
		Venues:   venueService,
		Bookings: service.NewBookingService(db, db, bus, cfg.Booking.DefaultVenueID, serviceLogger),
		Store:    pool,
	}

	if err := seedVenues(ctx, venueService, logger); err != nil {
		return err
	}

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, baseLogger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}
	httpServer := api.NewHTTPServer(cfg.API, services, logging.Component(baseLogger, "http"))

	startMetrics(ctx, cfg, logger)

	backup := database.NewBackupService(pool, cfg.Backup, logging.Component(baseLogger, "backup"))
	go backup.Start(ctx)

	return startServers(ctx, pool, grpcServer, httpServer, cfg, logger)
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

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, closer, nil
}

func loadVenues(logger *zerolog.Logger) ([]models.Venue, error) {
	venuesPath := os.Getenv("VENUES_PATH")
	if venuesPath == "" {
		venuesPath = "configs/venues.yaml"
	}
	venuesData, err := os.ReadFile(venuesPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("venues_path", venuesPath).Msg("venues file not found, skipping seed")
		return nil, nil
	}
	if err != nil {
		logger.Error().Err(err).Str("venues_path", venuesPath).Msg("read venues")
		return nil, err
	}

	var venuesConfig struct {
		Venues []models.Venue `yaml:"venues"`
	}
	if err := yaml.Unmarshal(venuesData, &venuesConfig); err != nil {
		logger.Error().Err(err).Str("venues_path", venuesPath).Msg("parse venues")
		return nil, err
	}
	return venuesConfig.Venues, nil
}

func seedVenues(ctx context.Context, venues *service.VenueService, logger *zerolog.Logger) error {
	seed, err := loadVenues(logger)
	if err != nil || len(seed) == 0 {
		return err
	}

	added, err := venues.Seed(ctx, seed)
	if err != nil {
		// The store may come up later; the pool retries on the next request.
		logger.Warn().Err(err).Msg("venue seed failed, continuing")
		return nil
	}
	logger.Info().Int("added", added).Int("configured", len(seed)).Msg("venues seeded")
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, starting in fallback mode")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

func initTokenStore(client *redis.Client, logger *zerolog.Logger) domain.TokenStore {
	memory := repository.NewMemoryTokenStore()
	if client == nil {
		logger.Info().Msg("redis disabled, using in-memory token store")
		return memory
	}
	return repository.NewFailoverTokenStore(repository.NewRedisTokenStore(client), memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	pool *database.Pool,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
		go watchStore(ctx, pool, grpcServer, logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Bool("grpc", grpcServer != nil).Msg("API server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.HTTP.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return runErr
}

// watchStore keeps the gRPC health status in line with store reachability.
func watchStore(ctx context.Context, pool *database.Pool, grpcServer *api.GRPCServer, logger *zerolog.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	serving := false
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := pool.Ping(pingCtx)
		cancel()

		if ok := err == nil; ok != serving {
			serving = ok
			grpcServer.SetServing(ok)
			if ok {
				logger.Info().Msg("store reachable, reporting SERVING")
			} else {
				logger.Warn().Err(err).Msg("store unreachable, reporting NOT_SERVING")
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
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
