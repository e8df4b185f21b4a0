package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// AdminConfig is the bootstrap admin account created at startup.
type AdminConfig struct {
	Nickname string
	HomeCity string
	Password string
}

type AppConfig struct {
	OpenWeatherAPIKey string

	// HTTPTimeout bounds each outbound weather API call.
	HTTPTimeout time.Duration

	// Lookup cache retention.
	CacheMaxEntries int           // max number of cached cities (0 = unlimited)
	CacheMaxAge     time.Duration // how long a cached reading stays fresh

	// MaintenanceInterval controls how often the cache is pruned and usage is logged.
	MaintenanceInterval time.Duration

	// Outbound lookup rate limit.
	LookupRate  float64 // requests per second
	LookupBurst int

	Admin AdminConfig

	JWTSecret      string
	TokenTTL       time.Duration
	PasswordHasher string

	LogLevel  string
	LogFormat string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "20s"); err != nil {
		return nil, err
	}

	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 256)
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", "10m"); err != nil {
		return nil, err
	}
	if cfg.MaintenanceInterval, err = getenvDuration("MAINTENANCE_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	rateStr := getenvDefault("LOOKUP_RATE", "1")
	cfg.LookupRate, err = strconv.ParseFloat(rateStr, 64)
	if err != nil || cfg.LookupRate <= 0 {
		return nil, fmt.Errorf("invalid LOOKUP_RATE: %q", rateStr)
	}
	cfg.LookupBurst = getenvInt("LOOKUP_BURST", 10)

	cfg.Admin = AdminConfig{
		Nickname: os.Getenv("ADMIN_NICKNAME"),
		HomeCity: os.Getenv("ADMIN_HOME_CITY"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.Admin.Nickname == "" || cfg.Admin.HomeCity == "" || cfg.Admin.Password == "" {
		return nil, errors.New("ADMIN_NICKNAME, ADMIN_HOME_CITY and ADMIN_PASSWORD must be set")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.TokenTTL, err = getenvDuration("TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	cfg.PasswordHasher = getenvDefault("PASSWORD_HASHER", "sha256")

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "text")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// SetupLogging applies the configured level and format to the global logrus logger.
func (c *AppConfig) SetupLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logrus.SetLevel(level)

	switch c.LogFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
