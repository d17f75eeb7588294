// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session store backends.
const (
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

// DefaultFarmerID owns products created over WhatsApp until senders are linked to profiles.
const DefaultFarmerID = "00000000-0000-0000-0000-000000000001"

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	UseMemoryStore bool

	// Postgres
	DBHost                 string
	DBPort                 string
	DBUser                 string
	DBPass                 string
	DBName                 string
	DBSSLMode              string
	InstanceConnectionName string

	// Sessions
	SessionStore     string
	SessionTTL       time.Duration
	SessionIdleSweep time.Duration
	RedisAddr        string
	RedisPassword    string

	// WhatsApp
	WhatsAppProvider      string
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string
	WhatsAppAPIVersion    string
	WhatsAppGraphURL      string

	// Twilio
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	DefaultFarmerID  string
	EnableTestRoutes bool
}

// Load reads configuration from environment variables
func Load() *Config {
	env := getEnv("ENV", "development")
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      env,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		UseMemoryStore: getEnvAsBool("USE_MEMORY_STORE", false),

		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPass:                 getEnv("DB_PASS", ""),
		DBName:                 getEnv("DB_NAME", "agriconnect"),
		DBSSLMode:              getEnv("DB_SSLMODE", "disable"),
		InstanceConnectionName: getEnv("INSTANCE_CONNECTION_NAME", ""),

		SessionStore:     strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", SessionStoreMemory))),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 0),
		SessionIdleSweep: getEnvAsDuration("SESSION_IDLE_SWEEP", 0),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),

		WhatsAppProvider:      strings.ToLower(strings.TrimSpace(getEnv("WHATSAPP_PROVIDER", "auto"))),
		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", "your_verify_token"),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppAPIVersion:    getEnv("WHATSAPP_API_VERSION", "v18.0"),
		WhatsAppGraphURL:      getEnv("WHATSAPP_GRAPH_URL", "https://graph.facebook.com"),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),

		DefaultFarmerID:  getEnv("DEFAULT_FARMER_ID", DefaultFarmerID),
		EnableTestRoutes: getEnvAsBool("ENABLE_TEST_ROUTES", env == "development"),
	}
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// StorageType is a human readable name of the catalog backend, used by the info route.
func (c *Config) StorageType() string {
	if c.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	case SessionStorePostgres:
		if c.UseMemoryStore {
			return fmt.Errorf("SESSION_STORE=%s requires USE_MEMORY_STORE=false", c.SessionStore)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if _, err := uuid.Parse(c.DefaultFarmerID); err != nil {
		return fmt.Errorf("DEFAULT_FARMER_ID must be a uuid: %w", err)
	}
	if c.SessionTTL < 0 || c.SessionIdleSweep < 0 {
		return fmt.Errorf("session durations must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
