// @title                       CRM Service API
// @version                     1.0
// @description                 Customer directory with role and privilege based access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devcrm/crm-service/internal/api"
	"github.com/devcrm/crm-service/internal/core/service"
	mongodb "github.com/devcrm/crm-service/internal/infrastructure/db/mongo"
	redisdb "github.com/devcrm/crm-service/internal/infrastructure/db/redis"
	"github.com/devcrm/crm-service/internal/infrastructure/http/handlers"
	"github.com/devcrm/crm-service/internal/infrastructure/security"
	"github.com/devcrm/crm-service/internal/pkg/config"
	"github.com/devcrm/crm-service/pkg/logger"
)

const (
	serviceName     = "crm-service"
	shutdownTimeout = 10 * time.Second
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: serviceName})
		log := logger.Get()
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Pretty:      cfg.IsDevelopment(),
		Service:     serviceName,
		Environment: cfg.Env,
	})
	log := logger.Get()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb unavailable")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Name:     serviceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis unavailable")
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	roles := mongodb.NewRoleRepository(db)
	privileges := mongodb.NewPrivilegeRepository(db)
	customers := mongodb.NewCustomerRepository(db)
	audit := mongodb.NewAuditRepository(db)
	tx := mongodb.NewTxManager(mongoClient, cfg.Mongo.Transactions)

	// --- Security ---
	hasher := security.NewBcryptHasher(0)
	tokens := security.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	authenticator := security.NewPasswordAuthenticator(users)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)

	// --- Services ---
	seeder := service.NewSeeder(users, roles, privileges, tx, hasher, logger.Component("seeder"))
	if err := seeder.Seed(ctx, service.AdminAccount{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to seed authorization catalog")
	}

	router := api.NewRouter(api.Dependencies{
		Auth: service.NewAuthService(users, roles, privileges, tx, hasher, authenticator, tokens, throttle,
			logger.Component("auth_service")),
		Customers:  service.NewCustomerService(customers, tx, logger.Component("customer_service")),
		Roles:      service.NewRoleService(roles, privileges, users, tx, audit, logger.Component("role_service")),
		Privileges: service.NewPrivilegeService(privileges, tx, audit, logger.Component("privilege_service")),
		Users:      service.NewUserService(users, roles, tx, audit, logger.Component("user_service")),
		Tokens:     tokens,
		Readiness: []handlers.Dependency{
			handlers.MongoDependency(db),
			handlers.RedisDependency(rdb),
		},
		Info: handlers.BuildInfo{
			Name:        serviceName,
			Version:     version,
			Description: "Customer directory with role and privilege based access control",
			Environment: cfg.Env,
		},
		Log: logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
