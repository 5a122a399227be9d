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

	httpapi "github.com/i474232898/openweathermap-client/internal/api/http"
	"github.com/i474232898/openweathermap-client/internal/config"
	"github.com/i474232898/openweathermap-client/internal/events"
	"github.com/i474232898/openweathermap-client/internal/geo"
	"github.com/i474232898/openweathermap-client/internal/retrieval"
	"github.com/i474232898/openweathermap-client/internal/scheduler"
	"github.com/i474232898/openweathermap-client/internal/store"
	"github.com/i474232898/openweathermap-client/internal/transport"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Retrieval history: Redis when configured, memory otherwise.
	var history store.Store = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	if cfg.RedisURL != "" {
		client, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer client.Close()
		history = store.NewRedisStore(client, cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}

	// Provider client with resilience (backoff + circuit breaker).
	client := transport.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.OpenWeatherAPIKey,
		transport.WithBaseURL(cfg.OpenWeatherBaseURL),
	)

	executor := retrieval.New(client,
		retrieval.WithPool(retrieval.NewBoundedPool(cfg.WorkerPoolSize)),
		retrieval.WithObserver(func(rec retrieval.Record) {
			saveCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := history.Save(saveCtx, rec); err != nil {
				log.Printf("ERROR: failed to save retrieval record %s: %v", rec.ID, err)
			}
		}),
	)

	units := weather.UnitSystem(cfg.DefaultUnits)
	schedOpts := scheduler.Options{Units: units, Language: cfg.DefaultLanguage}
	if cfg.GeocoderAPIKey != "" {
		resolver, err := geo.NewGoogleResolver(cfg.GeocoderAPIKey)
		if err != nil {
			log.Fatalf("failed to configure geocoder: %v", err)
		}
		schedOpts.Resolver = resolver
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("failed to create kafka producer: %v", err)
		}
		defer producer.Close()
		schedOpts.Publisher = producer
	}

	// Scheduler that periodically prefetches forecasts.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, executor, schedOpts)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "owm-gateway",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "owm-gateway",
		})
	})

	httpapi.RegisterRoutes(app, executor, history, httpapi.Defaults{
		Units:    units,
		Language: cfg.DefaultLanguage,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
