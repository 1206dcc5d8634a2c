package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	Environment    string
	Shopify        ShopifyConfig
	SessionStore   SessionStoreConfig
	TitleRefresh   TitleRefreshConfig
	LogLevel       string
	WebhookSecret  string // SHOPIFY_WEBHOOK_SECRET: verify incoming Shopify webhooks (X-Shopify-Hmac-Sha256)
	ServiceKeyHash string // SERVICE_KEY_HASH: bcrypt hash guarding /internal routes; empty disables them
}

type ShopifyConfig struct {
	ShopDomain string
	APIVersion string
	// Endpoint overrides the Admin GraphQL URL when set. Used for mock
	// gateways; normally derived from ShopDomain and APIVersion.
	Endpoint string
}

// SessionStoreConfig selects the offline-session backend once at process
// start. Backend is "postgres" or "mysql".
type SessionStoreConfig struct {
	Backend  string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// TitleRefreshConfig drives the periodic product title rewrite job.
type TitleRefreshConfig struct {
	Enabled  bool
	Interval time.Duration
	Timezone string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SESSION_STORE", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("TITLE_REFRESH_ENABLED", "true")
	viper.SetDefault("TITLE_REFRESH_INTERVAL", "1m")
	viper.SetDefault("TITLE_REFRESH_TIMEZONE", "America/Vancouver")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	interval, err := time.ParseDuration(getEnvOrViper("TITLE_REFRESH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TITLE_REFRESH_INTERVAL: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Shopify: ShopifyConfig{
			ShopDomain: strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			APIVersion: getEnvOrViper("SHOPIFY_API_VERSION", "2024-10"),
			Endpoint:   strings.TrimSpace(getEnvOrViper("SHOPIFY_ENDPOINT", "")),
		},
		SessionStore: SessionStoreConfig{
			Backend:  strings.ToLower(getEnvOrViper("SESSION_STORE", "postgres")),
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "priceapi"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		TitleRefresh: TitleRefreshConfig{
			Enabled:  getEnvOrViper("TITLE_REFRESH_ENABLED", "true") == "true",
			Interval: interval,
			Timezone: getEnvOrViper("TITLE_REFRESH_TIMEZONE", "America/Vancouver"),
		},
		LogLevel:       getEnvOrViper("LOG_LEVEL", "info"),
		WebhookSecret:  strings.TrimSpace(getEnvOrViper("SHOPIFY_WEBHOOK_SECRET", "")),
		ServiceKeyHash: strings.TrimSpace(getEnvOrViper("SERVICE_KEY_HASH", "")),
	}

	// Validate required fields
	if cfg.Shopify.ShopDomain == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	switch cfg.SessionStore.Backend {
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("SESSION_STORE must be postgres or mysql, got %q", cfg.SessionStore.Backend)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
