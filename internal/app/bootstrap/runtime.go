package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/cache"
	eventadapter "github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/events"
	grpcadapter "github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/grpc"
	httpadapter "github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/memory"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/postgres"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpcadapter.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	consumer   *eventadapter.ConsumerWorker
	cleanupFn  func(context.Context)
}

// storage bundles the repositories and cache of one storage driver.
type storage struct {
	profiles      ports.ProfileRepository
	stats         ports.ProfileStatsRepository
	activities    ports.ActivityRepository
	contributions ports.ContributionRepository
	connections   ports.ConnectionRepository
	notifications ports.NotificationRepository
	outbox        ports.OutboxRepository
	eventDedup    ports.EventDedupRepository
	idempotency   ports.IdempotencyRepository
	cache         ports.Cache
	closers       []func()
}

func (s storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	encryption, err := security.NewAESGCMEncryption(cfg.EncryptionSeed)
	if err != nil {
		return nil, err
	}
	verifier, err := security.NewJWTVerifier(cfg.JWTSigningKey, cfg.JWTPublicKeyPEM, cfg.JWTIssuer)
	if err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, logger, cfg, encryption)
	if err != nil {
		return nil, err
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:      cfg.ServiceID,
			ProfileCacheTTL:  cfg.ProfileCacheTTL,
			IdempotencyTTL:   cfg.IdempotencyTTL,
			EventDedupTTL:    cfg.EventDedupTTL,
			SearchRateLimit:  cfg.SearchRateLimit,
			SearchRateWindow: cfg.SearchRateWindow,
			DefaultPageSize:  cfg.DefaultPageSize,
			MaxPageSize:      cfg.MaxPageSize,
			Location:         location,
		},
		Logger:        logger,
		Profiles:      store.profiles,
		Stats:         store.stats,
		Activities:    store.activities,
		Contributions: store.contributions,
		Connections:   store.connections,
		Notifications: store.notifications,
		Outbox:        store.outbox,
		EventDedup:    store.eventDedup,
		Idempotency:   store.idempotency,
		Tokens:        verifier,
		Cache:         store.cache,
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpcadapter.NewServer(logger, cfg.ServiceID)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		store.close()
		return nil, err
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	consumerAdapter := ports.EventConsumer(eventadapter.NewNoopConsumer())
	var closers []io.Closer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.PublishTopics())
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}

		kafkaConsumer, conErr := eventadapter.NewKafkaConsumer(
			cfg.KafkaBrokers,
			cfg.KafkaConsumerGroup,
			[]string{cfg.KafkaTopicUserRegistered, cfg.KafkaTopicUserDeleted, cfg.KafkaTopicActivityRecorded},
		)
		if conErr != nil {
			logger.WarnContext(ctx, "kafka consumer disabled, using noop consumer", "error", conErr)
		} else {
			consumerAdapter = kafkaConsumer
			closers = append(closers, kafkaConsumer)
		}
	}
	outbox := eventadapter.NewOutboxWorker(logger, store.outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize).
		WithRetention(cfg.OutboxRetention)
	consumer := eventadapter.NewConsumerWorker(logger, consumerAdapter, service, cfg.TopicEvents(), cfg.ConsumerPollInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		consumer:   consumer,
		cleanupFn: func(context.Context) {
			for _, closer := range closers {
				_ = closer.Close()
			}
			store.close()
		},
	}, nil
}

func openStorage(ctx context.Context, logger *slog.Logger, cfg Config, encryption ports.Encryption) (storage, error) {
	if cfg.StorageDriver == StorageMemory {
		repos := memory.NewRepositories()
		return storage{
			profiles:      repos.Profiles,
			stats:         repos.Stats,
			activities:    repos.Activities,
			contributions: repos.Contributions,
			connections:   repos.Connections,
			notifications: repos.Notifications,
			outbox:        repos.Outbox,
			eventDedup:    repos.EventDedup,
			idempotency:   repos.Idempotency,
			cache:         memory.NewCache(),
		}, nil
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxConns: cfg.MaxDBConns})
	if err != nil {
		return storage{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return storage{}, err
	}
	applied, err := postgres.RunMigrations(ctx, db)
	if err != nil {
		_ = sqlDB.Close()
		return storage{}, err
	}
	if len(applied) > 0 {
		logger.InfoContext(ctx, "migrations applied",
			"module", "bootstrap",
			"layer", "runtime",
			"operation", "run_migrations",
			"outcome", "success",
			"versions", applied,
		)
	}
	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return storage{}, err
	}
	repos := postgres.NewRepositories(db, encryption)
	return storage{
		profiles:      repos.Profiles,
		stats:         repos.Stats,
		activities:    repos.Activities,
		contributions: repos.Contributions,
		connections:   repos.Connections,
		notifications: repos.Notifications,
		outbox:        repos.Outbox,
		eventDedup:    repos.EventDedup,
		idempotency:   repos.Idempotency,
		cache:         cache.NewRedisCache(redisClient, cfg.CachePrefix),
		closers: []func(){
			func() { _ = sqlDB.Close() },
			func() { _ = redisClient.Close() },
		},
	}, nil
}

// RunAPI serves HTTP and gRPC until ctx ends or a signal arrives. With the
// memory driver there is no shared store for a separate worker process, so
// the workers run in-process.
func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 4)

	go func() {
		r.logger.InfoContext(ctx, "http server listening", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	if r.cfg.StorageDriver == StorageMemory {
		r.startWorkers(ctx, errCh)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.grpcServer.SetServing(false)
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)
	r.startWorkers(ctx, errCh)

	select {
	case <-ctx.Done():
		r.cleanupFn(context.Background())
		return nil
	case err := <-errCh:
		r.cleanupFn(context.Background())
		return err
	}
}

func (r *Runtime) startWorkers(ctx context.Context, errCh chan<- error) {
	go func() {
		if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
