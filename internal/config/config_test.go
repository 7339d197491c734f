package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DB_URL", "postgres://localhost:5432/statsync?sslmode=disable")
	t.Setenv("SL_FEED_DB_URL", "postgres://localhost:5433/slfeed?sslmode=disable")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("QUEUE_ENABLED", "false")
	t.Setenv("IMPORTER_SPORTS", "tennis,chess")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_DBURLRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DB_URL")
	}
}

func TestLoad_SLFeedDBURLRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SL_FEED_DB_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without SL_FEED_DB_URL")
	}
}

func TestLoad_LPDumpURLRequiredWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LP_IMPORT_ENABLED", "true")
	t.Setenv("LP_DUMP_DB_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when LP_IMPORT_ENABLED=true without LP_DUMP_DB_URL")
	}
}

func TestLoad_QueueRequiresBaseURLWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUEUE_ENABLED", "true")
	t.Setenv("QUEUE_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when QUEUE_ENABLED=true without QUEUE_BASE_URL")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_HistoricalModeRequiresValidRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HISTORICAL_MODE", "true")

	t.Run("missing boundaries", func(t *testing.T) {
		t.Setenv("HISTORICAL_FROM", "")
		t.Setenv("HISTORICAL_TO", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing historical range")
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		t.Setenv("HISTORICAL_FROM", "2020-06-01T00:00:00Z")
		t.Setenv("HISTORICAL_TO", "2020-01-01T00:00:00Z")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for inverted historical range")
		}
	})

	t.Run("valid range", func(t *testing.T) {
		t.Setenv("HISTORICAL_FROM", "2020-01-01T00:00:00Z")
		t.Setenv("HISTORICAL_TO", "2020-06-01T00:00:00Z")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		from, to := cfg.Window(time.Now())
		if !from.Equal(cfg.HistoricalFrom) || !to.Equal(cfg.HistoricalTo) {
			t.Fatalf("expected window to mirror historical range, got %s..%s", from, to)
		}
	})
}

func TestLoad_WindowDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WindowBack != 24*time.Hour {
		t.Fatalf("unexpected default window back: %s", cfg.WindowBack)
	}
	if cfg.WindowForward != 72*time.Hour {
		t.Fatalf("unexpected default window forward: %s", cfg.WindowForward)
	}

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	from, to := cfg.Window(now)
	if !from.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected window from: %s", from)
	}
	if !to.Equal(now.Add(72 * time.Hour)) {
		t.Fatalf("unexpected window to: %s", to)
	}
}

func TestLoad_SportsParsing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IMPORTER_SPORTS", " tennis , table-tennis ")
	t.Setenv("SL_SPORT_CODES", "tennis:11,table-tennis:12")
	t.Setenv("LP_SPORT_CODES", "tennis:tn")
	t.Setenv("RELATED_SIDES", "100:1,200:2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.EnabledSports) != 2 || cfg.EnabledSports[1] != "table-tennis" {
		t.Fatalf("unexpected enabled sports: %+v", cfg.EnabledSports)
	}
	if cfg.SLSportCodes["tennis"] != 11 {
		t.Fatalf("unexpected sl sport code: %d", cfg.SLSportCodes["tennis"])
	}
	if cfg.LPSportCodes["tennis"] != "tn" {
		t.Fatalf("unexpected lp sport code: %q", cfg.LPSportCodes["tennis"])
	}
	if cfg.RelatedSides[100] != 1 || cfg.RelatedSides[200] != 2 {
		t.Fatalf("unexpected related sides map: %+v", cfg.RelatedSides)
	}
}

func TestLoad_SportsRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IMPORTER_SPORTS", "  ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without IMPORTER_SPORTS")
	}
}

func TestLoad_QueueCircuitDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUEUE_ENABLED", "true")
	t.Setenv("QUEUE_BASE_URL", "https://queue.example.com")
	t.Setenv("QUEUE_TOKEN", "token-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.QueueCircuitEnabled {
		t.Fatalf("expected queue circuit enabled by default")
	}
	if cfg.QueueCircuitFailureCount != 5 {
		t.Fatalf("unexpected failure count: %d", cfg.QueueCircuitFailureCount)
	}
	if cfg.QueueCircuitOpenTimeout != 15*time.Second {
		t.Fatalf("unexpected open timeout: %s", cfg.QueueCircuitOpenTimeout)
	}
	if cfg.QueueRetries != 3 {
		t.Fatalf("unexpected retries: %d", cfg.QueueRetries)
	}
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	setRequiredEnv(t)

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 5*time.Minute {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}
