// API server entry point for tendergate.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tendergate/tendergate/internal/application/batch"
	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/application/gapclosure"
	"github.com/tendergate/tendergate/internal/application/market"
	"github.com/tendergate/tendergate/internal/application/strategy"
	"github.com/tendergate/tendergate/internal/config"
	"github.com/tendergate/tendergate/internal/domain/dictionary"
	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres/repositories"
	rediscache "github.com/tendergate/tendergate/internal/infrastructure/database/redis"
	"github.com/tendergate/tendergate/internal/infrastructure/messaging/kafka"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/tendergate/tendergate/internal/interfaces/http"
	"github.com/tendergate/tendergate/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrationsDir := flag.String("migrations", "", "apply migrations from this directory before serving")
	flag.Parse()

	if err := run(*configPath, *migrationsDir); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, migrationsDir string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: config file %s not found, using defaults\n", configPath)
		configPath = ""
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	logger.Info("starting tendergate API server",
		logging.String("addr", cfg.Server.Addr()))

	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if migrationsDir != "" {
		if err := conn.RunMigrations(migrationsDir); err != nil {
			return err
		}
		logger.Info("migrations applied", logging.String("dir", migrationsDir))
	}

	// Repositories.
	conditions := repositories.NewConditionRepo(conn, logger)
	rules := repositories.NewRuleRepo(conn, logger)
	items := repositories.NewItemRepo(conn, logger)
	options := repositories.NewGapOptionRepo(conn, logger)
	partners := repositories.NewPartnerRepo(conn, logger)
	competitors := repositories.NewCompetitorRepo(conn, logger)

	var tenders reference.TenderRepository = repositories.NewTenderRepo(conn, logger)

	healthChecks := map[string]handlers.HealthChecker{
		"postgres": conn,
	}

	// Optional Redis cache in front of tender reads.
	if cfg.Redis.Addr != "" {
		redisClient, err := rediscache.NewClient(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		cache := rediscache.NewCache(redisClient, cfg.Redis, logger)
		tenders = rediscache.NewCachedTenderRepository(tenders, cache, 0, logger)
		healthChecks["redis"] = redisPinger{redisClient}
		logger.Info("tender cache enabled", logging.String("redis", cfg.Redis.Addr))
	}

	// Optional Kafka event publishing.
	producer := kafka.NewNopProducer()
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka, logger)
		logger.Info("event publishing enabled",
			logging.Any("brokers", cfg.Kafka.Brokers))
	}
	defer producer.Close()
	events := kafka.NewEventPublisher(producer)

	// Application services.
	metrics := prometheus.New(prom.DefaultRegisterer)

	classifier := prometheus.InstrumentClassifier(classification.NewService(
		classification.NewRecorder(conditions, events, logger), logger), metrics)
	facts := classification.NewFactSource(rules, items, classification.DefaultRuleNames)
	gaps := gapclosure.NewService(options, partners, dictionary.NewNormalizer(),
		cfg.Engine.MaxPartnerSuggestions, logger)
	strategies := strategy.NewService(logger)
	markets := market.NewService(competitors, tenders, cfg.Engine, logger)
	orchestrator := prometheus.InstrumentOrchestrator(
		batch.NewOrchestrator(cfg.Engine.BatchItemDelay, logger), metrics)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Conditions: handlers.NewConditionHandler(conditions, classifier, facts, logger),
		Analysis:   handlers.NewAnalysisHandler(conditions, tenders, gaps, strategies, markets, logger),
		Batch:      handlers.NewBatchHandler(conditions, orchestrator, classifier, facts, events, logger),
		Health:     handlers.NewHealthHandler(healthChecks),
		Metrics:    metrics,
		Logger:     logger,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", logging.String("signal", sig.String()))
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown failed", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// redisPinger adapts a redis client to the health check interface.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
