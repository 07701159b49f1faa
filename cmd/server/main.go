// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pawatasty/internal/config"
	"pawatasty/internal/repositories"
	"pawatasty/internal/routes"
	"pawatasty/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"
)

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg := config.Load()

	// Initialize databases (PostgreSQL + Redis)
	db, cacheService, err := repositories.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer repositories.Close(db, cacheService)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Cached users and schedules may predate a deploy's migrations.
	if err := cacheService.Flush(context.Background()); err != nil {
		log.Printf("⚠️ Failed to flush Redis cache: %v", err)
	} else {
		log.Println("✅ Redis cache flushed on startup")
	}

	// Add a periodic check of connection pool stats
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			stats := sqlDB.Stats()
			log.Printf("DB Stats: Open=%d, Idle=%d, InUse=%d, WaitCount=%d, WaitDuration=%s",
				stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
			redisStats := cacheService.GetStats()
			log.Printf("Redis Stats: Total=%d, Idle=%d, Hits=%d, Misses=%d, Timeouts=%d",
				redisStats.TotalConns, redisStats.IdleConns, redisStats.Hits, redisStats.Misses, redisStats.Timeouts)
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      "pawatasty",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return response.Error(c, e.Code, e.Message)
			}
			return response.FromError(c, err)
		},
	})

	app.Use(recover.New())

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	port, err := strconv.Atoi(cfg.Redis.Port)
	if err != nil {
		log.Fatalf("Invalid REDIS_PORT %q: %v", cfg.Redis.Port, err)
	}
	// Rate limits hold across instances, using a separate database from the cache.
	limiterStorage := redisstorage.New(redisstorage.Config{
		Host:     cfg.Redis.Host,
		Port:     port,
		Password: cfg.Redis.Password,
		Database: cfg.Redis.LimiterDB,
		Reset:    false,
	})
	defer limiterStorage.Close()

	routes.SetupRoutes(app, cfg, db, cacheService, limiterStorage)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Server shutdown failed: %v", err)
		}
	}()

	log.Printf("🚀 Listening on :%s (%s)", cfg.Port, cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
