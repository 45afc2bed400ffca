package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	AdminToken     string
	AllowedOrigins []string
	Timezone       string
	PushPoints     int64
	Store          StoreConfig
	Upstream       UpstreamConfig
	Sweep          SweepConfig
	Providers      ProvidersConfig
	Metrics        MetricsConfig
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string
	DatabaseURL string
}

// UpstreamConfig tunes the wrappers every provider fetcher is built with.
type UpstreamConfig struct {
	RedisURL      string
	CacheTTL      Duration
	RatePerSecond float64
	Burst         int
	RetryAttempts int
	RetryInitial  Duration
}

// SweepConfig controls the background auto-grading loop.
type SweepConfig struct {
	Enabled  bool
	Interval Duration
}

// MetricsConfig controls the Prometheus scrape endpoint and OTLP export.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

// Load reads configuration from the environment, with a local .env file
// applied first when present. Only a malformed providers file is an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	providers, err := loadProviders(envOrDefault(envProvidersFile, defaultProvidersFile))
	if err != nil {
		return Config{}, fmt.Errorf("load providers: %w", err)
	}

	return Config{
		Port:           envOrDefault(envPort, defaultPort),
		LogLevel:       envOrDefault(envLogLevel, ""),
		LogFormat:      envOrDefault(envLogFormat, ""),
		AdminToken:     envOrDefault(envAdminToken, ""),
		AllowedOrigins: listEnvOrDefault(envAllowedOrigins, nil),
		Timezone:       envOrDefault(envTimezone, defaultTimezone),
		PushPoints:     int64(intEnvOrDefault(envPushPoints, 0)),
		Store: StoreConfig{
			Driver:      envOrDefault(envStoreDriver, defaultStoreDriver),
			DatabaseURL: envOrDefault(envDatabaseURL, ""),
		},
		Upstream: UpstreamConfig{
			RedisURL:      envOrDefault(envRedisURL, ""),
			CacheTTL:      durationEnvOrDefault(envCacheTTL, defaultCacheTTL),
			RatePerSecond: floatEnvOrDefault(envRatePerSec, defaultRatePerSec),
			Burst:         intEnvOrDefault(envBurst, defaultBurst),
			RetryAttempts: intEnvOrDefault(envRetryAttempts, defaultRetryAttempts),
			RetryInitial:  durationEnvOrDefault(envRetryInitial, defaultRetryInitial),
		},
		Sweep: SweepConfig{
			Enabled:  boolEnvOrDefault(envSweepEnabled, true),
			Interval: durationEnvOrDefault(envSweepInterval, defaultSweepInterval),
		},
		Providers: providers,
		Metrics: MetricsConfig{
			Enabled:      boolEnvOrDefault(envMetricsOn, true),
			Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
			OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
			ServiceName:  envOrDefault(envOtelService, defaultServiceName),
			OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
		},
	}, nil
}
