package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Service names select which validation rules apply
const (
	ServiceBooking   = "booking-service"
	ServiceInventory = "inventory-service"
)

// Config holds all configuration for one service process
type Config struct {
	// Service name (booking-service or inventory-service)
	Service string

	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Inventory client configuration (booking-service only)
	Inventory InventoryConfig

	// Redis configuration for the offers cache (booking-service only)
	Redis RedisConfig

	// CORS configuration
	CORS CORSConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Reconciliation job configuration (booking-service only)
	Reconcile ReconcileConfig

	// Tracing configuration
	Tracing TracingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration.
// Both services share the secret so tokens issued for the booking
// service are accepted by the inventory service.
type JWTConfig struct {
	Secret            string
	Issuer            string
	AccessTokenExpiry time.Duration
}

// InventoryConfig holds the outbound inventory client configuration
type InventoryConfig struct {
	BaseURL      string
	Timeout      time.Duration // per attempt
	MaxRetries   int           // extra attempts on transport errors and 5xx
	RetryBackoff time.Duration
}

// RedisConfig holds the offers cache configuration
type RedisConfig struct {
	URL       string // empty disables the cache
	OffersTTL time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig holds the per-user booking creation limits
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// ReconcileConfig holds the stale PENDING booking sweep configuration
type ReconcileConfig struct {
	Enabled      bool
	Schedule     string // cron expression with seconds
	PendingAfter time.Duration
	BatchSize    int
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	JaegerEndpoint string // empty disables export
}

// Load loads configuration for the named service from environment variables
func Load(service string) (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	defaultPort := "8080"
	if service == ServiceInventory {
		defaultPort = "8081"
	}

	config := &Config{
		Service: service,
		Server: ServerConfig{
			Port:        getEnv("PORT", defaultPort),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			Issuer:            getEnv("JWT_ISSUER", "staybook"),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		Inventory: InventoryConfig{
			BaseURL:      strings.TrimRight(getEnv("INVENTORY_BASE_URL", ""), "/"),
			Timeout:      getEnvAsDuration("INVENTORY_TIMEOUT", 5*time.Second),
			MaxRetries:   getEnvAsInt("INVENTORY_MAX_RETRIES", 2),
			RetryBackoff: getEnvAsDuration("INVENTORY_RETRY_BACKOFF", 200*time.Millisecond),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			OffersTTL: getEnvAsDuration("OFFERS_CACHE_TTL", 30*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("BOOKING_RATE_LIMIT_PER_MINUTE", 30),
			Burst:             getEnvAsInt("BOOKING_RATE_LIMIT_BURST", 5),
		},
		Reconcile: ReconcileConfig{
			Enabled:      getEnvAsBool("RECONCILE_ENABLED", true),
			Schedule:     getEnv("RECONCILE_CRON", "0 * * * * *"),
			PendingAfter: getEnvAsDuration("RECONCILE_PENDING_AFTER", 2*time.Minute),
			BatchSize:    getEnvAsInt("RECONCILE_BATCH_SIZE", 100),
		},
		Tracing: TracingConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Service != ServiceBooking && c.Service != ServiceInventory {
		return fmt.Errorf("unknown service %q", c.Service)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Service == ServiceBooking {
		if c.Inventory.BaseURL == "" {
			return fmt.Errorf("INVENTORY_BASE_URL is required for %s", ServiceBooking)
		}
		if c.Inventory.Timeout <= 0 {
			return fmt.Errorf("INVENTORY_TIMEOUT must be positive")
		}
		if c.Inventory.MaxRetries < 0 {
			return fmt.Errorf("INVENTORY_MAX_RETRIES cannot be negative")
		}
		if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
			return fmt.Errorf("booking rate limit and burst must be positive")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("5s", "2m")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
