package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixmycity/backend/internal/config"
	"github.com/fixmycity/backend/internal/delivery/http"
	"github.com/fixmycity/backend/internal/metrics"
	"github.com/fixmycity/backend/internal/priority"
	"github.com/fixmycity/backend/internal/repository/postgres"
	"github.com/fixmycity/backend/internal/service"
)

func main() {
	log.SetHandler(text.New(os.Stderr))

	// Configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.Env == "development" {
		log.SetLevel(log.DebugLevel)
	}

	metrics.Register()

	// Dependency Injection: Repositories
	repo, closeRepo := openRepository(cfg)
	defer closeRepo()

	// Dependency Injection: Engine and services
	engine, err := priority.New(cfg.Priority)
	if err != nil {
		log.WithError(err).Fatal("Invalid priority engine configuration")
	}

	geocoder := service.NewGeocoder(cfg.GeocoderURL, cfg.GeocoderCity)
	complaintSvc := service.NewComplaintService(repo, geocoder)
	prioritySvc := service.NewPriorityService(repo, engine, cfg.DefaultTop)
	analyticsSvc := service.NewAnalyticsService(repo)
	dashboardSvc := service.NewDashboardService(analyticsSvc, prioritySvc)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "FixMyCity API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := http.NewHandler(complaintSvc, prioritySvc, analyticsSvc, dashboardSvc, geocoder, repo)
	http.SetupRoutes(app, handler)

	// Graceful shutdown
	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.Port,
			"epsilon": cfg.Priority.Epsilon,
			"metric":  cfg.Priority.Metric,
		}).Info("Server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("Server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.WithError(err).Warn("Server forced to shutdown")
	}
	log.Info("Server exited gracefully")
}

// openRepository connects to PostgreSQL, falling back to an in-memory store
// seeded with demo complaints when no database is reachable
func openRepository(cfg *config.Config) (service.ComplaintRepository, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err == nil {
			log.Info("Connected to PostgreSQL")
			repo := postgres.NewPostgresRepository(pool)
			if cfg.AutoMigrate {
				if err := repo.EnsureSchema(ctx); err != nil {
					log.WithError(err).Fatal("Could not apply schema")
				}
			}
			return repo, pool.Close
		}
		if pool != nil {
			pool.Close()
		}
		log.WithError(err).Warn("Could not connect to database")
	}

	log.Info("Running with demo data only")
	return postgres.NewMockRepository(postgres.DemoComplaints(time.Now())...), func() {}
}
