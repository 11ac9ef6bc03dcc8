package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Config holds the runtime settings read from the environment
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	PaginationLimit int

	MailProvider     string
	PostmarkAPIToken string
	SendgridAPIKey   string
	EmailSender      string

	PaymentApprovalLimit decimal.Decimal
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional .env file at path and then the environment.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Debug().Str("path", path).Msg("No .env file found. Proceeding with environment variables.")
		}
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8000"),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "ecommerce"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		MailProvider:     getEnv("MAIL_PROVIDER", "log"),
		PostmarkAPIToken: os.Getenv("POSTMARK_API_TOKEN"),
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailSender:      os.Getenv("EMAIL_SENDER"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.PaginationLimit, err = getInt("PAGINATION_LIMIT", 8); err != nil {
		return nil, err
	}
	if cfg.CartTTL, err = getDuration("CART_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if raw := os.Getenv("PAYMENT_APPROVAL_LIMIT"); raw != "" {
		if cfg.PaymentApprovalLimit, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("config: invalid PAYMENT_APPROVAL_LIMIT: %w", err)
		}
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("config: MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return v, nil
}
