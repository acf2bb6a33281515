package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://127.0.0.1:3000"`

	DatabaseURL    string `envconfig:"DATABASE_URL"`
	RedisAddr      string `envconfig:"REDIS_ADDR"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"wingscafe:"`

	PricingPolicy       string `envconfig:"PRICING_POLICY" default:"freeze"`
	ProductDeletePolicy string `envconfig:"PRODUCT_DELETE_POLICY" default:"restrict"`
	LowStockThreshold   int    `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	SeedDemo            bool   `envconfig:"SEED_DEMO" default:"true"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}
