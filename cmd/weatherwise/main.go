package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"

	httpapi "github.com/weatherwise/weatherwise/internal/api/http"
	"github.com/weatherwise/weatherwise/internal/config"
	"github.com/weatherwise/weatherwise/internal/pipeline"
	"github.com/weatherwise/weatherwise/internal/scheduler"
	"github.com/weatherwise/weatherwise/internal/store"
	"github.com/weatherwise/weatherwise/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable local state: the city list and user preferences.
	kv := store.OpenKV(afero.NewOsFs(), cfg.StatePath)
	cityStore := store.NewCityStore(kv)
	prefs := config.NewPreferences(kv)

	// Weather provider client and the acquisition pipeline.
	client := weather.NewClient(httpClient, weather.ClientConfig{
		APIKey:       cfg.OpenWeatherAPIKey,
		WeatherURL:   cfg.WeatherBaseURL,
		ForecastURL:  cfg.ForecastBaseURL,
		DirectoryURL: cfg.DirectoryBaseURL,
	})
	pipe := pipeline.New(client, cityStore, nil, cfg.SuggestionTTL)

	// First start: resolve the default city list.
	if cityStore.Len() == 0 && len(cfg.DefaultCities) > 0 {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		pipe.SeedDefaults(seedCtx, cfg.DefaultCities)
		cancel()
	}

	// Scheduler that periodically refreshes every tracked city.
	sched := scheduler.New(pipe, prefs)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weatherwise",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherwise",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, pipe, cityStore, prefs)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
