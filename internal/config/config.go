package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr      = ":8080"
	defaultJWTAccessTTL    = "24h"
	defaultFullRefundHours = "24"
	defaultHalfRefundHours = "6"
	defaultCurrency        = "NGN"
)

// Config is the runtime configuration loaded from the environment.
// Refund thresholds live here so the cancellation workflow receives an
// explicit value object instead of reading ambient settings.
type Config struct {
	AppEnv      string
	ListenAddr  string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	Currency string

	// Cancellation policy thresholds, in hours before check-in.
	FullRefundHours float64
	HalfRefundHours float64
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = envOrDefault("LISTEN_ADDR", defaultListenAddr)
	cfg.Currency = envOrDefault("WALLET_CURRENCY", defaultCurrency)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	ttl, err := time.ParseDuration(envOrDefault("JWT_ACCESS_TTL", defaultJWTAccessTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWTAccessTTL = ttl

	cfg.FullRefundHours, err = envFloat("CANCELLATION_FULL_REFUND_HOURS", defaultFullRefundHours)
	if err != nil {
		return nil, err
	}
	cfg.HalfRefundHours, err = envFloat("CANCELLATION_HALF_REFUND_HOURS", defaultHalfRefundHours)
	if err != nil {
		return nil, err
	}
	if cfg.HalfRefundHours > cfg.FullRefundHours {
		return nil, fmt.Errorf("CANCELLATION_HALF_REFUND_HOURS must not exceed CANCELLATION_FULL_REFUND_HOURS")
	}

	return cfg, nil
}

func envOrDefault(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func envFloat(name, def string) (float64, error) {
	raw := envOrDefault(name, def)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
