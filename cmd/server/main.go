// Package main is the entry point for the API server.
// It loads configuration, connects the stores, wires the services,
// and serves HTTP until it receives a shutdown signal.
package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/config"
	"eventflex/internal/gateway"
	"eventflex/internal/handlers"
	"eventflex/internal/jobs"
	"eventflex/internal/logger"
	"eventflex/internal/metrics"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/cache"
	"eventflex/internal/repositories/mongostore"
	"eventflex/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

const (
	version         = "1.0.0"
	sessionCacheTTL = 15 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	cfg.ApplyDevDefaults()
	logger.Setup(cfg.LogLevel, config.IsProduction())
	log := logger.Log

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := repositories.InitDB(cfg.Postgres)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get database instance")
	}
	log.Info("connected to PostgreSQL")

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cacheService := cache.NewCacheService(redisClient, sessionCacheTTL)
	if err := cacheService.HealthCheck(context.Background()); err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	log.Info("connected to Redis")

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, mongoDB, err := mongostore.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.Info("connected to MongoDB")

	gw, err := gateway.New(cfg.Gateway)
	if err != nil {
		log.WithError(err).Fatal("failed to configure payment gateway")
	}

	services := routes.NewServices(routes.Infrastructure{
		Config:  cfg,
		DB:      db,
		Cache:   cacheService,
		Mongo:   mongoDB,
		Gateway: gw,
	})

	stopStats := make(chan struct{})
	go logPoolStats(sqlDB, cacheService, stopStats)

	scheduler := jobs.NewScheduler(cfg.Jobs, services.Escrow, services.Pool)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("failed to start background jobs")
	}

	app := fiber.New(fiber.Config{
		AppName:      "eventflex",
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.Middleware())

	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
		},
	})
	app.Use("/api/auth/register", authLimiter)
	app.Use("/api/auth/login", authLimiter)

	health := handlers.NewHealthHandler(version, map[string]handlers.Pinger{
		"database": func(ctx context.Context) error { return repositories.Ping(ctx, db) },
		"redis":    cacheService.HealthCheck,
		"mongo":    func(ctx context.Context) error { return mongostore.Ping(ctx, mongoClient) },
	})
	app.Get("/health", health.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to EventFlex API",
			"version": version,
			"docs":    "/api",
		})
	})

	routes.SetupRoutes(app, services, cfg.JWT)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.WithError(err).Fatal("server stopped")
		}
	}()
	log.WithField("port", cfg.Server.Port).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.WithError(err).Warn("failed to shut down HTTP server cleanly")
	}
	scheduler.Stop(ctx)
	close(stopStats)

	if err := mongoClient.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("failed to close MongoDB connection")
	}
	if err := cacheService.Close(); err != nil {
		log.WithError(err).Warn("failed to close Redis connection")
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("failed to close database connection")
	}
}

// errorHandler renders errors that escape a handler, such as unmatched routes
// and body limit violations, in the standard envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	var ae *apperr.Error
	switch {
	case errors.As(err, &fe):
		status, message = fe.Code, strings.ToLower(fe.Message)
	case errors.As(err, &ae):
		status, message = ae.Status, ae.Message
	}
	if status >= fiber.StatusInternalServerError {
		logger.WithRequest(c).WithError(err).Error("unhandled error")
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// logPoolStats periodically reports connection pool usage for Postgres and Redis.
func logPoolStats(sqlDB *sql.DB, redis *cache.CacheService, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			db := sqlDB.Stats()
			rs := redis.GetStats()
			logger.Log.WithFields(logrus.Fields{
				"db_open":        db.OpenConnections,
				"db_idle":        db.Idle,
				"db_in_use":      db.InUse,
				"db_wait_count":  db.WaitCount,
				"redis_total":    rs.TotalConns,
				"redis_idle":     rs.IdleConns,
				"redis_timeouts": rs.Timeouts,
			}).Debug("connection pool stats")
		}
	}
}
