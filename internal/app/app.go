package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/arenahub/statsync/internal/config"
	"github.com/arenahub/statsync/internal/domain/checkpoint"
	"github.com/arenahub/statsync/internal/domain/game"
	"github.com/arenahub/statsync/internal/domain/importlog"
	"github.com/arenahub/statsync/internal/domain/side"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/tournament"
	checkpointstore "github.com/arenahub/statsync/internal/infrastructure/checkpoint"
	"github.com/arenahub/statsync/internal/infrastructure/jobqueue"
	cacherepo "github.com/arenahub/statsync/internal/infrastructure/repository/cache"
	"github.com/arenahub/statsync/internal/infrastructure/repository/postgres"
	basecache "github.com/arenahub/statsync/internal/platform/cache"
	"github.com/arenahub/statsync/internal/platform/logging"
	"github.com/arenahub/statsync/internal/platform/resilience"
	"github.com/arenahub/statsync/internal/usecase"
)

// App owns the per-process dependencies of the importer: the local store,
// the two read-only source databases, the checkpoint store and the outbound
// work queue. One App serves exactly one job run.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	db   *sqlx.DB
	slDB *sqlx.DB
	// lpDB is nil unless the legacy dump import is enabled.
	lpDB *sqlx.DB

	redisClient *redis.Client

	txRunner    usecase.TxRunner
	importLogs  importlog.Repository
	checkpoints checkpoint.Store
	// queue is nil when publishing is disabled.
	queue usecase.WorkQueue

	sideRepo       side.Repository
	tournamentRepo tournament.Repository
	gameRepo       game.Repository

	resolver    *usecase.ResolverService
	sideBuilder *usecase.SideBuilderService
	assembler   *usecase.AssemblerService
	recount     *usecase.RecountService
	joiner      *usecase.JoinerService

	sports []sport.Sport
	now    func() time.Time
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	sports, err := resolveSports(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		sports: sports,
		now:    time.Now,
	}

	a.db, err = openDB(cfg.DBURL, cfg.DBDisablePreparedBinary)
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	a.slDB, err = openDB(cfg.SLFeedDBURL, false)
	if err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("open sl feed db: %w", err)
	}
	if cfg.LPImportEnabled {
		a.lpDB, err = openDB(cfg.LPDumpDBURL, false)
		if err != nil {
			a.closeQuietly()
			return nil, fmt.Errorf("open lp dump db: %w", err)
		}
	}

	a.redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := a.redisClient.Ping(ctx).Err(); err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	a.checkpoints = checkpointstore.NewRedisStore(a.redisClient)

	if cfg.QueueEnabled {
		a.queue = jobqueue.NewPublisher(jobqueue.PublisherConfig{
			BaseURL: cfg.QueueBaseURL,
			Token:   cfg.QueueToken,
			Retries: cfg.QueueRetries,
			Timeout: cfg.QueueTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QueueCircuitEnabled,
				FailureThreshold: cfg.QueueCircuitFailureCount,
				OpenTimeout:      cfg.QueueCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QueueCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	a.txRunner = postgres.NewTxRunner(a.db)
	a.importLogs = postgres.NewImportLogRepository(a.db)

	playerRepo := postgres.NewPlayerRepository(a.db)
	teamRepo := postgres.NewTeamRepository(a.db)
	stageRepo := postgres.NewStageRepository(a.db)
	a.sideRepo = postgres.NewSideRepository(a.db)
	a.gameRepo = postgres.NewGameRepository(a.db)

	a.tournamentRepo = postgres.NewTournamentRepository(a.db)
	if cfg.CacheEnabled {
		a.tournamentRepo = cacherepo.NewTournamentRepository(a.tournamentRepo, basecache.NewStore(cfg.CacheTTL))
	}

	a.resolver = usecase.NewResolverService(teamRepo, playerRepo, stageRepo, a.tournamentRepo, logger)
	a.sideBuilder = usecase.NewSideBuilderService(a.resolver, a.sideRepo, logger)
	a.assembler = usecase.NewAssemblerService(a.resolver, a.sideBuilder, a.sideRepo, a.tournamentRepo, a.gameRepo, logger)
	a.recount = usecase.NewRecountService(a.tournamentRepo, cfg.RecountWorkers, logger)
	a.joiner = usecase.NewJoinerService(a.tournamentRepo, a.gameRepo, cfg.RelatedSides, logger)

	return a, nil
}

// Close releases every connection the app holds.
func (a *App) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.db != nil {
		record(a.db.Close())
	}
	if a.slDB != nil {
		record(a.slDB.Close())
	}
	if a.lpDB != nil {
		record(a.lpDB.Close())
	}
	if a.redisClient != nil {
		record(a.redisClient.Close())
	}
	return firstErr
}

func (a *App) closeQuietly() {
	if err := a.Close(); err != nil {
		a.logger.Warn("close partially built app", "error", err)
	}
}

func openDB(rawURL string, disablePreparedBinary bool) (*sqlx.DB, error) {
	dsn := normalizeDBURL(rawURL, disablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(rawURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
