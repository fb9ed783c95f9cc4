package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/config"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/database"
	kafkainfra "github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/kafka"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/logger"
	redisinfra "github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/redis"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/security"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/telemetry"
	postgresrepo "github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/repository/postgres"
	redisrepo "github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/repository/redis"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/transport/http/middleware"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/transport/http/routes"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/usecase"
)

// Application owns the wired service graph and its long-lived resources.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

// New builds the full service graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	hasher, err := security.NewHasher(security.Argon2Config{
		Memory:        cfg.Argon2.Memory,
		Iterations:    cfg.Argon2.Iterations,
		Parallelism:   cfg.Argon2.Parallelism,
		SaltLength:    cfg.Argon2.SaltLength,
		KeyLength:     cfg.Argon2.KeyLength,
		MaxConcurrent: cfg.Argon2.MaxConcurrent,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init hasher: %w", err)
	}

	jwtManager, err := security.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init jwt manager: %w", err)
	}

	validator := security.NewPolicyValidator(security.PasswordPolicyConfig{
		MinLength:        cfg.Password.MinLength,
		DenyList:         cfg.Password.DenyList,
		SpecialChars:     cfg.Password.SpecialChars,
		MinStrengthScore: cfg.Password.MinStrengthScore,
	})

	authMetrics, err := telemetry.NewAuthMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init auth metrics: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	repos := postgresrepo.NewRepositories(pool)
	throttleStore := redisrepo.NewThrottleRepository(redisClient.Client(), cfg.Redis.ThrottlePrefix)

	auditService := usecase.NewAuditService(repos.Audit, eventPublisher, authMetrics, log)
	throttle := usecase.NewLoginThrottle(throttleStore, auditService, authMetrics, cfg.Throttle, log)
	registrationService := usecase.NewRegistrationService(repos.Users, validator, hasher, eventPublisher, authMetrics, log)
	authService := usecase.NewAuthService(repos.Users, hasher, jwtManager, throttle, auditService, authMetrics, log)

	engine := routes.Register(routes.Dependencies{
		Config:     cfg,
		Logger:     log,
		JWTManager: jwtManager,
		AuditRepo:  repos.Audit,
		Metrics:    httpMetrics,
		Database:   pool,
		Cache:      redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Audit:        auditService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting user service API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
