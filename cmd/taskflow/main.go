package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/ai"
	"github.com/Raisondetr3/taskflow-service/internal/cache"
	"github.com/Raisondetr3/taskflow-service/internal/config"
	"github.com/Raisondetr3/taskflow-service/internal/notify"
	"github.com/Raisondetr3/taskflow-service/internal/queue"
	"github.com/Raisondetr3/taskflow-service/internal/repository"
	"github.com/Raisondetr3/taskflow-service/internal/service"
	grpcTransport "github.com/Raisondetr3/taskflow-service/internal/transport/grpc"
	httpTransport "github.com/Raisondetr3/taskflow-service/internal/transport/http"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceName = "taskflow"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	loggerCfg := logger.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
		FileName: cfg.Logging.FileName,
	}

	if err := logger.SetupLogger(loggerCfg, serviceName); err != nil {
		panic("Failed to setup logger: " + err.Error())
	}

	logger.LogServiceStart(serviceName, map[string]interface{}{
		"http_port":     cfg.Server.HTTPPort,
		"grpc_port":     cfg.Server.GRPCPort,
		"storage":       cfg.Storage.Backend,
		"log_level":     cfg.Logging.Level,
		"redis_enabled": cfg.Redis.Enabled,
		"kafka_enabled": cfg.Kafka.Enabled,
		"ai_enabled":    cfg.AI.Enabled,
	})

	defer logger.LogServiceStop(serviceName, "shutdown")

	flowRepo, closeStorage, err := initStorage(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	if cfg.Redis.Enabled {
		flowCache, err := cache.NewRedisCache(cfg.Redis.URLs, cfg.Redis.Password, cfg.Redis.DB, true)
		if err != nil {
			slog.Error("Failed to initialize Redis cache", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer flowCache.Close()
		flowRepo = repository.NewCachedFlowRepository(flowRepo, flowCache, cfg.Redis.TTL)
	}

	events, reminders := initPublishers(cfg)
	defer closePublisher(events)
	defer closePublisher(reminders)

	var suggester ai.Suggester = ai.Disabled{}
	if cfg.AI.Enabled {
		suggester, err = ai.NewOllamaSuggester(cfg.AI.Host, cfg.AI.Model, cfg.AI.Timeout)
		if err != nil {
			slog.Error("Failed to initialize AI client", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	healthService := service.NewHealthService(repository.NewHealthRepository(flowRepo), cfg.Storage.Backend)
	flowService := service.NewFlowService(flowRepo, events, suggester, nil)
	scheduleService := service.NewScheduleService(flowRepo, nil)
	suggestionService := service.NewSuggestionService(suggester, cfg.AI.Timeout)

	handlers := httpTransport.NewHTTPHandlers(cfg, healthService, flowService, scheduleService, suggestionService)
	httpServer := httpTransport.NewHTTPServer(cfg, handlers)
	grpcServer := grpcTransport.NewGRPCServer(cfg, flowService, scheduleService)

	var wg sync.WaitGroup

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	notifyCtx, stopNotifier := context.WithCancel(context.Background())
	defer stopNotifier()

	if cfg.Notifications.Enabled {
		var sink notify.Sink = notify.LogSink{}
		if cfg.Kafka.Enabled {
			sink = notify.NewQueueSink(reminders)
		}
		notifier := notify.NewNotifier(flowRepo, sink, cfg.Notifications.Interval, cfg.Notifications.Window)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := notifier.Run(notifyCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Notifier stopped", slog.String("error", err.Error()))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("Starting HTTP server", slog.String("port", cfg.Server.HTTPPort))

		if err := httpServer.StartServer(); err != nil {
			slog.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("Starting gRPC server", slog.String("port", cfg.Server.GRPCPort))

		if err := grpcServer.StartServer(); err != nil {
			slog.Error("gRPC server error", slog.String("error", err.Error()))
		}
	}()

	<-quit
	slog.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopNotifier()

	slog.Info("Stopping HTTP server...")
	if err := httpServer.Stop(ctx); err != nil {
		slog.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	slog.Info("Stopping gRPC server...")
	if err := grpcServer.Stop(ctx); err != nil {
		slog.Error("Error stopping gRPC server", slog.String("error", err.Error()))
	}

	slog.Info("Waiting for servers to stop...")
	wg.Wait()

	slog.Info("All servers stopped successfully")
}

// initStorage opens the configured flow repository. The returned func
// releases whatever the backend holds open.
func initStorage(cfg *config.Config) (repository.FlowRepository, func(), error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pool, err := initDatabaseWithRetry(cfg, 10, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return repository.NewPostgresFlowRepository(pool), pool.Close, nil

	case config.StorageFile:
		repo, err := repository.NewFileFlowRepository(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using file storage", slog.String("path", cfg.Storage.FilePath))
		return repo, func() {}, nil

	case config.StorageMemory:
		slog.Warn("Using in-memory storage, flows are lost on restart")
		return repository.NewMemoryFlowRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// initPublishers returns the domain event publisher and the reminder
// publisher. Without Kafka both only log.
func initPublishers(cfg *config.Config) (queue.Publisher, queue.Publisher) {
	if !cfg.Kafka.Enabled {
		return queue.NewLogPublisher(cfg.Kafka.EventsTopic), queue.NewLogPublisher(cfg.Kafka.NotificationTopic)
	}

	slog.Info("Publishing events to Kafka",
		slog.Any("brokers", cfg.Kafka.Brokers),
		slog.String("events_topic", cfg.Kafka.EventsTopic),
		slog.String("notification_topic", cfg.Kafka.NotificationTopic))

	return queue.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic),
		queue.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
}

func closePublisher(p queue.Publisher) {
	if err := p.Close(); err != nil {
		slog.Error("Error closing publisher", slog.String("error", err.Error()))
	}
}

func initDatabaseWithRetry(cfg *config.Config, maxRetries int, delay time.Duration) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	for i := 0; i < maxRetries; i++ {
		slog.Info("Attempting to connect to database",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", maxRetries))

		pool, err = initDatabase(cfg)
		if err == nil {
			slog.Info("Successfully connected to database")
			return pool, nil
		}

		slog.Warn("Database connection failed, retrying...",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", delay))

		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return nil, err
}

func initDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.LogDatabaseConnection(ctx, cfg.Database.DSN(), "connect", err)
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.LogDatabaseConnection(ctx, cfg.Database.DSN(), "ping", err)
		return nil, err
	}

	logger.LogDatabaseConnection(ctx, cfg.Database.DSN(), "connect", nil)

	return pool, nil
}
