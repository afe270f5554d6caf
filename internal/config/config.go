package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries all runtime settings for the gateway. Backend addresses and
// secrets are passed in here at construction time instead of being read from
// scattered globals.
type Config struct {
	HTTPAddr string

	IdentityURL  string
	InventoryURL string
	GeoURL       string

	RedisAddr   string
	KafkaBroker string

	CacheTTL      time.Duration
	ReadTimeout   time.Duration
	UploadTimeout time.Duration

	LogMode string
}

// FromEnv builds a Config from environment variables, falling back to
// docker-compose service names like the rest of the stack.
func FromEnv() Config {
	return Config{
		HTTPAddr: getenv("GATEWAY_HTTP_ADDR", ":8080"),

		IdentityURL:  getenv("IDENTITY_URL", "http://auth-srv:8000/api/v1"),
		InventoryURL: getenv("INVENTORY_URL", "http://listing-srv:8000/api/v1"),
		GeoURL:       getenv("GEO_URL", "http://region-srv:5000"),

		RedisAddr:   getenv("REDIS_ADDR", "redis:6379"),
		KafkaBroker: getenv("KAFKA_BROKER", "kafka:9092"),

		CacheTTL:      getseconds("CACHE_TTL_SECONDS", 60*time.Second),
		ReadTimeout:   getseconds("BACKEND_READ_TIMEOUT_SECONDS", 5*time.Second),
		UploadTimeout: getseconds("BACKEND_UPLOAD_TIMEOUT_SECONDS", 15*time.Second),

		LogMode: getenv("LOG_MODE", "dev"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getseconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
