package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/domain"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/core/port"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/config"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/infra/security"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/transport/http/handlers"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/transport/http/middleware"
	"github.com/Le-Hoang-Thinh-The-Automationist/pfh-user-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Audit        *usecase.AuditService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config     *config.AppConfig
	Logger     *zap.Logger
	Services   ServiceSet
	JWTManager *security.JWTManager
	AuditRepo  port.AuditLogRepository
	Metrics    *middleware.HTTPMetrics
	Database   DatabaseChecker
	Cache      CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/health", healthHandler.Status)
	r.GET("/health/ready", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")

		handlers.NewRegistrationHandler(deps.Services.Registration).RegisterRoutes(authGroup)
		handlers.NewAuthHandler(deps.Services.Auth).RegisterRoutes(authGroup)

		if deps.AuditRepo != nil {
			auditGroup := authGroup.Group("")
			auditGroup.Use(
				middleware.RequireAuth(deps.JWTManager),
				middleware.RequireRole(string(domain.UserRoleAuditor), string(domain.UserRoleAdmin)),
			)
			handlers.NewAuditHandler(deps.Services.Audit, deps.AuditRepo).RegisterRoutes(auditGroup)
		}
	}

	return r
}
