package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	OTLP   OTLPConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	DurationMsMetric bool
}

type StoreConfig struct {
	Driver         string
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
	LogLevel    slog.Level
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, fmt.Errorf("store config: %w", err)
	}

	otlp, err := loadOTLPConfig()
	if err != nil {
		return nil, fmt.Errorf("otlp config: %w", err)
	}

	return &Config{
		Server: *server,
		Store:  *store,
		OTLP:   *otlp,
	}, nil
}

func loadServerConfig() (*ServerConfig, error) {
	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	durationMs, err := parseBoolEnv("SERVER_DURATION_MS_METRIC", false)
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		Host:             getEnv("SERVER_HOST", "0.0.0.0"),
		Port:             getEnv("SERVER_PORT", "8080"),
		ReadTimeout:      readTimeout,
		WriteTimeout:     writeTimeout,
		IdleTimeout:      idleTimeout,
		ShutdownTimeout:  shutdownTimeout,
		DurationMsMetric: durationMs,
	}, nil
}

func loadStoreConfig() (*StoreConfig, error) {
	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMongo))
	if driver != StoreDriverMongo && driver != StoreDriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER: unsupported driver %q", driver)
	}

	connectTimeout, err := parseDurationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &StoreConfig{
		Driver:         driver,
		URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database:       getEnv("MONGO_DATABASE", "catalog"),
		Collection:     getEnv("MONGO_COLLECTION", "product"),
		ConnectTimeout: connectTimeout,
	}, nil
}

func loadOTLPConfig() (*OTLPConfig, error) {
	enabled, err := parseBoolEnv("OTEL_ENABLED", true)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "debug"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return &OTLPConfig{
		Enabled:     enabled,
		Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "products-api"),
		Environment: getEnv("OTEL_ENVIRONMENT", "development"),
		LogLevel:    level,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
