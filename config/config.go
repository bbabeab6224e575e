package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	StorageDir        string `mapstructure:"STORAGE_DIR"`
	StoragePublicPath string `mapstructure:"STORAGE_PUBLIC_PATH"`

	// Rate limiting. An empty RedisAddr keeps the limiter in process.
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RateLimitAuth   int           `mapstructure:"RATE_LIMIT_AUTH"`
	RateLimitAPI    int           `mapstructure:"RATE_LIMIT_API"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"APP_ENV":             "development",
	"PORT":                "8080",
	"LOG_LEVEL":           "info",
	"DATABASE_URL":        "",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "",
	"DB_NAME":             "storefront",
	"DB_SSLMODE":          "disable",
	"JWT_SECRET":          "",
	"TOKEN_TTL":           "24h",
	"STORAGE_DIR":         "./storage/app/public",
	"STORAGE_PUBLIC_PATH": "/storage",
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"RATE_LIMIT_AUTH":     10,
	"RATE_LIMIT_API":      60,
	"RATE_LIMIT_WINDOW":   "1m",
	"CORS_ORIGINS":        "*",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.RateLimitAuth <= 0 || c.RateLimitAPI <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// DSN prefers DATABASE_URL and otherwise assembles one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
