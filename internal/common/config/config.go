package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vector-portal/backend/internal/common/constants"
	commonerrors "github.com/vector-portal/backend/internal/common/errors"
)

type PortalConfig struct {
	HTTPPort       string
	DatabaseURL    string
	RedisURL       string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

func LoadPortalConfig() (PortalConfig, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return PortalConfig{}, err
	}

	return PortalConfig{
		HTTPPort:       getEnv("PORTAL_HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:    databaseURL,
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionTTL:     getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		RequestTimeout: getDurationEnv("PORTAL_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
