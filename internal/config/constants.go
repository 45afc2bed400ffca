package config

import "time"

const (
	envPort           = "PORT"
	envLogLevel       = "LOG_LEVEL"
	envLogFormat      = "LOG_FORMAT"
	envAdminToken     = "ADMIN_TOKEN"
	envAllowedOrigins = "ALLOWED_ORIGINS"
	envTimezone       = "TIMEZONE"
	envPushPoints     = "PUSH_POINTS"
	envStoreDriver    = "STORE_DRIVER"
	envDatabaseURL    = "DATABASE_URL"
	envRedisURL       = "REDIS_URL"
	envCacheTTL       = "UPSTREAM_CACHE_TTL"
	envRatePerSec     = "UPSTREAM_RATE_PER_SEC"
	envBurst          = "UPSTREAM_BURST"
	envRetryAttempts  = "UPSTREAM_RETRY_ATTEMPTS"
	envRetryInitial   = "UPSTREAM_RETRY_INITIAL"
	envSweepEnabled   = "SWEEP_ENABLED"
	envSweepInterval  = "SWEEP_INTERVAL"
	envProvidersFile  = "PROVIDERS_FILE"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"
	envBdlBaseURL     = "BALLDONTLIE_BASE_URL"
	envBdlAPIKey      = "BALLDONTLIE_API_KEY"
	envESPNBaseURL    = "ESPN_BASE_URL"

	defaultPort          = "4000"
	defaultTimezone      = "America/New_York"
	defaultStoreDriver   = StoreMemory
	defaultCacheTTL      = 30 * Duration(time.Second)
	defaultRatePerSec    = 5.0
	defaultBurst         = 5
	defaultRetryAttempts = 3
	defaultRetryInitial  = 200 * Duration(time.Millisecond)
	// Games rarely finish faster than this; a tighter loop only burns quota.
	defaultSweepInterval = 5 * Duration(time.Minute)
	defaultProvidersFile = "config/providers.yaml"
	defaultMetricsPort   = "9090"
	defaultServiceName   = "prop-grader"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)
