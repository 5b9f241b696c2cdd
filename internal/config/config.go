package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string `validate:"required"`
	AppEnv             string `validate:"required,oneof=development staging production"`
	AppPort            string `validate:"required"`
	DatabaseURL        string `validate:"required"`
	RedisURL           string
	NATSURL            string
	JWTSecret          string `validate:"required"`
	FeedbackCacheTTL   time.Duration
	OpenAIAPIKey       string
	AIModel            string `validate:"required"`
	AIMaxTokens        int
	AITimeout          time.Duration
	GenerateRateLimit  int
	GenerateRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIConfigured reports whether a generative-AI credential is available. Its
// absence is a valid runtime state, not a startup failure: reviews then
// resolve to the deterministic fallback report.
func (c Config) AIConfigured() bool {
	return c.OpenAIAPIKey != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PIXELPATH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "PixelPath API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("feedback.cache_ttl", "10m")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.timeout_ms", 20000)
	v.SetDefault("generate.rate_limit", 5)
	v.SetDefault("generate.rate_window", "1m")

	ttl, err := time.ParseDuration(v.GetString("feedback.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid feedback cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("generate.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid generate rate window: %w", err)
	}

	timeoutMs := v.GetInt("ai.timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 20000
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		FeedbackCacheTTL:   ttl,
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		AIModel:            v.GetString("ai.model"),
		AIMaxTokens:        v.GetInt("ai.max_tokens"),
		AITimeout:          time.Duration(timeoutMs) * time.Millisecond,
		GenerateRateLimit:  v.GetInt("generate.rate_limit"),
		GenerateRateWindow: rateWindow,
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 2048
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
