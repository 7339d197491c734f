package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arenahub/statsync/internal/platform/logging"
)

// Config stores runtime configuration for the importer.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string

	DBURL                   string
	DBDisablePreparedBinary bool
	SLFeedDBURL             string
	LPDumpDBURL             string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QueueEnabled               bool
	QueueBaseURL               string
	QueueToken                 string
	QueueRetries               int
	QueueTimeout               time.Duration
	QueueCircuitEnabled        bool
	QueueCircuitFailureCount   int
	QueueCircuitOpenTimeout    time.Duration
	QueueCircuitHalfOpenMaxReq int

	UptraceEnabled bool
	UptraceDSN     string

	// HistoricalMode replaces the rolling window with a fixed date range for
	// one-off backfills.
	HistoricalMode bool
	HistoricalFrom time.Time
	HistoricalTo   time.Time
	WindowBack     time.Duration
	WindowForward  time.Duration

	LPImportEnabled bool

	PageSize          int
	RecountWorkers    int
	ImportConcurrency int
	JoinLookback      time.Duration

	EnabledSports []string
	// SLSportCodes maps a sport code to its id in the live feed.
	SLSportCodes map[string]int64
	// LPSportCodes maps a sport code to its code in the legacy dump.
	LPSportCodes map[string]string
	// RelatedSides maps a throw-in side id to its base-bracket side id.
	RelatedSides map[int64]int64

	CacheEnabled bool
	CacheTTL     time.Duration

	LogLevel logging.Level
}

// Window returns the import window the run operates on.
func (c Config) Window(now time.Time) (time.Time, time.Time) {
	if c.HistoricalMode {
		return c.HistoricalFrom, c.HistoricalTo
	}
	return now.Add(-c.WindowBack), now.Add(c.WindowForward)
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "statsync"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
	}

	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	cfg.DBDisablePreparedBinary, err = strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY: %w", err)
	}
	cfg.SLFeedDBURL = strings.TrimSpace(getEnv("SL_FEED_DB_URL", ""))
	if cfg.SLFeedDBURL == "" {
		return Config{}, fmt.Errorf("SL_FEED_DB_URL is required")
	}

	cfg.LPImportEnabled, err = strconv.ParseBool(getEnv("LP_IMPORT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LP_IMPORT_ENABLED: %w", err)
	}
	cfg.LPDumpDBURL = strings.TrimSpace(getEnv("LP_DUMP_DB_URL", ""))
	if cfg.LPImportEnabled && cfg.LPDumpDBURL == "" {
		return Config{}, fmt.Errorf("LP_DUMP_DB_URL is required when LP_IMPORT_ENABLED=true")
	}

	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", ""))
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	cfg.QueueEnabled, err = strconv.ParseBool(getEnv("QUEUE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_ENABLED: %w", err)
	}
	cfg.QueueBaseURL = strings.TrimSpace(getEnv("QUEUE_BASE_URL", ""))
	if cfg.QueueEnabled && cfg.QueueBaseURL == "" {
		return Config{}, fmt.Errorf("QUEUE_BASE_URL is required when QUEUE_ENABLED=true")
	}
	cfg.QueueToken = strings.TrimSpace(getEnv("QUEUE_TOKEN", ""))
	cfg.QueueRetries, err = getEnvAsInt("QUEUE_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_RETRIES: %w", err)
	}
	cfg.QueueTimeout, err = time.ParseDuration(getEnv("QUEUE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_TIMEOUT: %w", err)
	}
	if cfg.QueueTimeout <= 0 {
		return Config{}, fmt.Errorf("QUEUE_TIMEOUT must be > 0")
	}
	cfg.QueueCircuitEnabled, err = strconv.ParseBool(getEnv("QUEUE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_CIRCUIT_ENABLED: %w", err)
	}
	cfg.QueueCircuitFailureCount, err = getEnvAsInt("QUEUE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.QueueCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("QUEUE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cfg.QueueCircuitOpenTimeout, err = time.ParseDuration(getEnv("QUEUE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.QueueCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("QUEUE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cfg.QueueCircuitHalfOpenMaxReq, err = getEnvAsInt("QUEUE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.QueueCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("QUEUE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.HistoricalMode, err = strconv.ParseBool(getEnv("HISTORICAL_MODE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HISTORICAL_MODE: %w", err)
	}
	if cfg.HistoricalMode {
		cfg.HistoricalFrom, err = time.Parse(time.RFC3339, getEnv("HISTORICAL_FROM", ""))
		if err != nil {
			return Config{}, fmt.Errorf("parse HISTORICAL_FROM: %w", err)
		}
		cfg.HistoricalTo, err = time.Parse(time.RFC3339, getEnv("HISTORICAL_TO", ""))
		if err != nil {
			return Config{}, fmt.Errorf("parse HISTORICAL_TO: %w", err)
		}
		if !cfg.HistoricalFrom.Before(cfg.HistoricalTo) {
			return Config{}, fmt.Errorf("HISTORICAL_FROM must be before HISTORICAL_TO")
		}
	}
	cfg.WindowBack, err = time.ParseDuration(getEnv("IMPORT_WINDOW_BACK", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_WINDOW_BACK: %w", err)
	}
	cfg.WindowForward, err = time.ParseDuration(getEnv("IMPORT_WINDOW_FORWARD", "72h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_WINDOW_FORWARD: %w", err)
	}

	cfg.PageSize, err = getEnvAsInt("IMPORT_PAGE_SIZE", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_PAGE_SIZE: %w", err)
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("IMPORT_PAGE_SIZE must be >= 1")
	}
	cfg.RecountWorkers, err = getEnvAsInt("RECOUNT_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECOUNT_WORKERS: %w", err)
	}
	if cfg.RecountWorkers < 1 {
		return Config{}, fmt.Errorf("RECOUNT_WORKERS must be >= 1")
	}
	cfg.ImportConcurrency, err = getEnvAsInt("IMPORT_CONCURRENCY", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_CONCURRENCY: %w", err)
	}
	if cfg.ImportConcurrency < 1 {
		return Config{}, fmt.Errorf("IMPORT_CONCURRENCY must be >= 1")
	}
	cfg.JoinLookback, err = time.ParseDuration(getEnv("JOIN_LOOKBACK", "48h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOIN_LOOKBACK: %w", err)
	}

	cfg.EnabledSports = splitCSV(getEnv("IMPORTER_SPORTS", ""))
	if len(cfg.EnabledSports) == 0 {
		return Config{}, fmt.Errorf("IMPORTER_SPORTS is required")
	}

	cfg.SLSportCodes, err = parseIDMap(getEnv("SL_SPORT_CODES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse SL_SPORT_CODES: %w", err)
	}
	cfg.LPSportCodes = parseStringMap(getEnv("LP_SPORT_CODES", ""))
	cfg.RelatedSides, err = parseInt64Map(getEnv("RELATED_SIDES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse RELATED_SIDES: %w", err)
	}

	cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cfg.CacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseIDMap parses "code:id,code:id" pairs.
func parseIDMap(raw string) (map[string]int64, error) {
	out := make(map[string]int64)
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected code:number", item)
		}

		key := strings.TrimSpace(segments[0])
		if key == "" {
			return nil, fmt.Errorf("empty key in item %q", item)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(segments[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number in item %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0 in item %q", item)
		}

		out[key] = value
	}
	return out, nil
}

// parseInt64Map parses "id:id,id:id" pairs.
func parseInt64Map(raw string) (map[int64]int64, error) {
	out := make(map[int64]int64)
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected id:id", item)
		}
		key, err := strconv.ParseInt(strings.TrimSpace(segments[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid key in item %q: %w", item, err)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(segments[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in item %q: %w", item, err)
		}
		out[key] = value
	}
	return out, nil
}

func parseStringMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			continue
		}
		key := strings.TrimSpace(segments[0])
		value := strings.TrimSpace(segments[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
