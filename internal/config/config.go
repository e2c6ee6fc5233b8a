/**
 * @description
 * This file handles the configuration management for the subscription-service.
 * It uses the 'viper' library to load configuration from environment variables,
 * providing a centralized and consistent way to manage application settings.
 */
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int    `mapstructure:"DB_MIN_CONNS"`
	AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`

	JWTSecretKey          string `mapstructure:"JWT_SECRET_KEY"`
	JWTIssuer             string `mapstructure:"JWT_ISSUER"`
	JWTAccessTokenExpires int    `mapstructure:"JWT_ACCESS_TOKEN_EXPIRES"`

	RedisURL                string `mapstructure:"REDIS_URL"`
	RedisKeyPrefix          string `mapstructure:"REDIS_KEY_PREFIX"`
	PlanCacheTTLSeconds     int    `mapstructure:"PLAN_CACHE_TTL_SECONDS"`
	LoginRateLimitPerMinute int    `mapstructure:"LOGIN_RATE_LIMIT_PER_MINUTE"`

	RabbitMQURL                string `mapstructure:"RABBITMQ_URL"`
	SubscriptionEventsExchange string `mapstructure:"SUBSCRIPTION_EVENTS_EXCHANGE"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	SeedAdminEmail    string `mapstructure:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `mapstructure:"SEED_ADMIN_PASSWORD"`
}

var keys = []string{
	"SERVER_PORT",
	"PORT",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"AUTO_MIGRATE",
	"JWT_SECRET_KEY",
	"JWT_ISSUER",
	"JWT_ACCESS_TOKEN_EXPIRES",
	"REDIS_URL",
	"REDIS_KEY_PREFIX",
	"PLAN_CACHE_TTL_SECONDS",
	"LOGIN_RATE_LIMIT_PER_MINUTE",
	"RABBITMQ_URL",
	"SUBSCRIPTION_EVENTS_EXCHANGE",
	"CORS_ALLOWED_ORIGINS",
	"SEED_ADMIN_EMAIL",
	"SEED_ADMIN_PASSWORD",
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("DB_MAX_CONNS", 20)
	viper.SetDefault("DB_MIN_CONNS", 2)
	viper.SetDefault("AUTO_MIGRATE", true)
	viper.SetDefault("JWT_ISSUER", "subscription-service")
	viper.SetDefault("JWT_ACCESS_TOKEN_EXPIRES", 3600)
	viper.SetDefault("REDIS_KEY_PREFIX", "subscriptions")
	viper.SetDefault("PLAN_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("LOGIN_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("SUBSCRIPTION_EVENTS_EXCHANGE", "subscription_events")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")
	viper.SetDefault("SEED_ADMIN_EMAIL", "admin@gmail.com")
	viper.SetDefault("SEED_ADMIN_PASSWORD", "admin123")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range keys {
		_ = viper.BindEnv(key)
	}

	if err = viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode configuration: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	err = config.validate()
	return
}

func (c Config) validate() error {
	var problems []string
	if strings.TrimSpace(c.DatabaseURL) == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		problems = append(problems, "JWT_SECRET_KEY is required")
	}
	if c.DBMaxConns < 1 {
		problems = append(problems, "DB_MAX_CONNS must be at least 1")
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		problems = append(problems, "DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}
	if c.JWTAccessTokenExpires < 1 {
		problems = append(problems, "JWT_ACCESS_TOKEN_EXPIRES must be a positive number of seconds")
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// AccessTokenTTL returns the lifetime of issued access tokens.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTAccessTokenExpires) * time.Second
}

// PlanCacheTTL returns how long plan catalogue entries stay cached.
func (c Config) PlanCacheTTL() time.Duration {
	return time.Duration(c.PlanCacheTTLSeconds) * time.Second
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
