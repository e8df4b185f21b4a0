package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/weather-now/internal/api/http"
	"github.com/i474232898/weather-now/internal/auth"
	"github.com/i474232898/weather-now/internal/config"
	"github.com/i474232898/weather-now/internal/metrics"
	"github.com/i474232898/weather-now/internal/scheduler"
	"github.com/i474232898/weather-now/internal/store"
	"github.com/i474232898/weather-now/internal/users"
	"github.com/i474232898/weather-now/internal/weather"
	"github.com/i474232898/weather-now/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.SetupLogging(); err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	// User registry shared by every handler for the process lifetime.
	hasher, err := users.NewHasher(cfg.PasswordHasher)
	if err != nil {
		logrus.Fatalf("failed to configure password hasher: %v", err)
	}
	if err := users.ValidatePassword(hasher, cfg.Admin.Password); err != nil {
		logrus.Fatalf("invalid admin password: %v", err)
	}
	registry := users.NewStore(hasher)
	admin := registry.EnsureAdmin(cfg.Admin.Nickname, cfg.Admin.HomeCity, cfg.Admin.Password)
	logrus.WithField("admin", admin.Nickname()).Info("admin account ready")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory lookup cache with configured retention.
	cache := store.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheMaxAge)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, registry.Len, cache.Len)

	// Provider with resilience (backoff + circuit breaker).
	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	if cfg.OpenWeatherAPIKey == "" {
		logrus.Warn("OPENWEATHER_API_KEY is not set; weather lookups will fail")
	}

	service := weather.NewService(provider, cache,
		weather.WithLimiter(rate.NewLimiter(rate.Limit(cfg.LookupRate), cfg.LookupBurst)),
		weather.WithRecorder(m),
	)

	// Scheduler that periodically prunes the cache and logs usage.
	sched := scheduler.New(cfg.MaintenanceInterval, service, registry, admin)
	if err := sched.Start(); err != nil {
		logrus.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-now",
		Immutable:             true,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler(m),
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-now",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Users:   registry,
		Weather: service,
		Tokens:  auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.Errorf("fiber server stopped: %v", err)
		}
	}()
	logrus.WithField("port", cfg.Port).Info("server listening")

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logrus.Errorf("error during shutdown: %v", err)
	}
}
