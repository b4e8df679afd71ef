package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-management/backend/config"
	"github.com/pageza/recipe-management/backend/internal/api"
	"github.com/pageza/recipe-management/backend/internal/cache"
	"github.com/pageza/recipe-management/backend/internal/database"
	"github.com/pageza/recipe-management/backend/internal/logger"
	"github.com/pageza/recipe-management/backend/internal/messaging"
	"github.com/pageza/recipe-management/backend/internal/middleware"
	"github.com/pageza/recipe-management/backend/internal/router"
	"github.com/pageza/recipe-management/backend/internal/server"
	"github.com/pageza/recipe-management/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment == config.Development); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.WithModule("main")
	log.Info("starting recipe management API", zap.String("environment", string(cfg.Environment)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db.DB)
	if err != nil {
		return err
	}
	if err := migrator.Up(ctx); err != nil {
		return err
	}

	checks := map[string]api.Checker{"database": db}
	opts := []service.Option{}

	var limiter *middleware.RateLimiter
	if cfg.Redis.URL != "" {
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		opts = append(opts, service.WithCache(cache.NewRedisRecipeCache(client, cfg.Redis.TTL)))
		checks["redis"] = api.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		if cfg.RateLimit.Writes > 0 {
			limiter = middleware.NewRateLimiter(client, middleware.RateLimitConfig{
				Window: cfg.RateLimit.Window,
				Limit:  cfg.RateLimit.Writes,
			})
		}
	} else {
		log.Info("redis not configured, recipe cache and rate limiting disabled")
	}

	if cfg.RabbitMQ.Enabled() {
		publisher, err := messaging.NewRabbitPublisher(cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer publisher.Close()
		opts = append(opts, service.WithPublisher(publisher))
	} else {
		log.Info("broker not configured, recipe events disabled")
	}

	handler, err := router.SetupRouter(router.Dependencies{
		Recipes:      service.NewRecipeService(db.DB, opts...),
		Checks:       checks,
		WriteLimiter: limiter,
		Origins:      cfg.Origins(),
	})
	if err != nil {
		return err
	}

	return server.New(cfg, handler).Run(ctx)
}
