// Package app wires configuration, storage, the platform client, and
// the services into a runnable unit.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
	"github.com/riskibarqy/fantrax-team-manager/internal/config"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/enrichment"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/swapintent"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/synclog"
	"github.com/riskibarqy/fantrax-team-manager/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantrax-team-manager/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantrax-team-manager/internal/interfaces/opsapi"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/cache"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/resilience"
	"github.com/riskibarqy/fantrax-team-manager/internal/usecase"
)

type repositories struct {
	players    player.Repository
	roster     roster.Repository
	enrichment enrichment.Repository
	syncLogs   synclog.Repository
	intents    swapintent.Repository
}

type App struct {
	Config *config.Config
	Logger *logging.Logger
	Cycles *usecase.CycleService
	Ops    *opsapi.Server

	db *sqlx.DB
}

func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := fantrax.NewClient(fantrax.ClientConfig{
		BaseURL:        cfg.FantraxBaseURL,
		LeagueID:       cfg.FantraxLeagueID,
		Cookie:         cfg.FantraxCookie,
		Timeout:        cfg.FantraxTimeout,
		MaxRetries:     cfg.FantraxMaxRetries,
		RetryBaseDelay: cfg.FantraxRetryBaseDelay,
		Breaker:        resilience.DefaultBreakerConfig(),
	}, logger)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("app: build fantrax client: %w", err)
	}

	rules := roster.FormationRules{Starters: map[player.Position]int{
		player.PositionGoalkeeper: cfg.FormationGK,
		player.PositionDefender:   cfg.FormationDEF,
		player.PositionMidfielder: cfg.FormationMID,
		player.PositionForward:    cfg.FormationFWD,
	}}

	optimizer, err := usecase.NewOptimizerService(repos.players, repos.roster, repos.enrichment, rules, logger)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	cycles := usecase.NewCycleService(
		client,
		usecase.NewReconcileService(client, repos.players, repos.roster, repos.syncLogs, logger),
		usecase.NewEnrichmentService(client, repos.players, repos.roster, repos.enrichment,
			cache.NewStore(cfg.CacheTTL), logger, cfg.EnrichmentParallelism),
		optimizer,
		usecase.NewExecutorService(client, repos.players, repos.roster, repos.intents, usecase.ExecutorConfig{
			MaxAttempts:    cfg.ExecutorMaxAttempts,
			RetryBaseDelay: cfg.ExecutorRetryBaseDelay,
			PoolSize:       cfg.ExecutorPoolSize,
		}, logger),
		cfg.CycleTimeout,
		logger,
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Cycles: cycles,
		Ops:    opsapi.NewServer(cycles, repos.syncLogs, cfg.TeamID, logger),
		db:     db,
	}, nil
}

func buildRepositories(ctx context.Context, cfg *config.Config) (repositories, *sqlx.DB, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := connectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			players:    postgres.NewPlayerRepository(db),
			roster:     postgres.NewRosterRepository(db),
			enrichment: postgres.NewEnrichmentRepository(db),
			syncLogs:   postgres.NewSyncLogRepository(db),
			intents:    postgres.NewSwapIntentRepository(db),
		}, db, nil
	case config.DriverMemory:
		return repositories{
			players:    memory.NewPlayerRepository(),
			roster:     memory.NewRosterRepository(),
			enrichment: memory.NewEnrichmentRepository(),
			syncLogs:   memory.NewSyncLogRepository(),
			intents:    memory.NewSwapIntentRepository(),
		}, nil, nil
	default:
		return repositories{}, nil, fmt.Errorf("app: unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) Close(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var firstErr error
	if err := a.Ops.Shutdown(shutdownCtx); err != nil {
		firstErr = err
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
