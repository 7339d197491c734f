package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/arenahub/statsync/external/lpdump"
	"github.com/arenahub/statsync/external/slfeed"
	"github.com/arenahub/statsync/internal/domain/checkpoint"
	"github.com/arenahub/statsync/internal/domain/importlog"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/usecase"
)

// Job names accepted by Run. Each is a one-shot pass; scheduling and retry
// belong to the outer scheduler.
const (
	JobImportSL     = "import-sl"
	JobImportLP     = "import-lp"
	JobCheckUpdates = "check-updates"
	JobJoinSplits   = "join-splits"
)

func (a *App) Run(ctx context.Context, job string) error {
	a.logger.InfoContext(ctx, "job starting", "job", job, "sports", len(a.sports))
	started := a.now()

	var err error
	switch job {
	case JobImportSL:
		err = a.runImportSL(ctx)
	case JobImportLP:
		err = a.runImportLP(ctx)
	case JobCheckUpdates:
		err = a.runCheckUpdates(ctx)
	case JobJoinSplits:
		err = a.runJoinSplits(ctx)
	default:
		err = fmt.Errorf("unknown job %q", job)
	}

	if err != nil {
		a.logger.ErrorContext(ctx, "job failed", "job", job, "elapsed", a.now().Sub(started).String(), "error", err)
		return err
	}

	a.logger.InfoContext(ctx, "job finished", "job", job, "elapsed", a.now().Sub(started).String())
	return nil
}

// runImportSL loads the live-feed window. In regular mode the load is
// followed by the incremental check and the split-tournament join, so one
// scheduled run leaves the store fully reconciled.
func (a *App) runImportSL(ctx context.Context) error {
	provider, err := a.slProvider()
	if err != nil {
		return err
	}

	if err := a.importSource(ctx, provider, importlog.SourceSL); err != nil {
		return err
	}
	if a.cfg.HistoricalMode {
		return nil
	}

	if err := a.runCheckUpdates(ctx); err != nil {
		return err
	}
	return a.runJoinSplits(ctx)
}

func (a *App) runImportLP(ctx context.Context) error {
	if !a.cfg.LPImportEnabled {
		return fmt.Errorf("lp import is disabled (LP_IMPORT_ENABLED=false)")
	}

	codes, err := lpSportCodes(a.cfg, a.sports)
	if err != nil {
		return err
	}
	from, to := a.cfg.Window(a.now())
	provider := lpdump.NewClient(a.lpDB, lpdump.Config{
		SportCodes: codes,
		PageSize:   a.cfg.PageSize,
		WindowFrom: from,
		WindowTo:   to,
	}, a.logger)

	return a.importSource(ctx, provider, importlog.SourceLP)
}

func (a *App) runCheckUpdates(ctx context.Context) error {
	started := a.now()

	since, _ := a.cfg.Window(started)
	if at, ok, err := a.checkpoints.Get(ctx, checkpoint.KeySLLastUpdatedAt); err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	} else if ok {
		since = at
	}

	provider, err := a.slProvider()
	if err != nil {
		return err
	}
	checker := usecase.NewUpdateCheckerService(
		provider,
		a.resolver,
		a.sideBuilder,
		a.sideRepo,
		a.tournamentRepo,
		a.gameRepo,
		a.recount,
		a.logger,
	)

	var (
		mu      sync.Mutex
		touched []int64
	)
	p := pool.New().WithMaxGoroutines(a.cfg.ImportConcurrency).WithContext(ctx).WithCancelOnError()
	for _, sp := range a.sports {
		sp := sp
		p.Go(func(ctx context.Context) error {
			ids, err := checker.CheckUpdates(ctx, sp, since)
			if err != nil {
				return fmt.Errorf("check updates for sport %q: %w", sp.Code, err)
			}
			mu.Lock()
			for id := range ids {
				touched = append(touched, id)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	sort.Slice(touched, func(i, j int) bool { return touched[i] < touched[j] })
	for _, id := range touched {
		a.publishTournament(ctx, id)
	}

	// The checkpoint only advances after a fully successful pass, so a
	// failed run replays its window.
	if err := a.checkpoints.Set(ctx, checkpoint.KeySLLastUpdatedAt, started); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	return nil
}

func (a *App) runJoinSplits(ctx context.Context) error {
	createdSince := a.now().Add(-a.cfg.JoinLookback)
	for _, sp := range a.sports {
		joined, err := a.joiner.JoinSplitTournaments(ctx, sp, createdSince)
		if err != nil {
			return fmt.Errorf("join split tournaments for sport %q: %w", sp.Code, err)
		}
		if joined > 0 {
			a.logger.InfoContext(ctx, "split tournaments joined", "sport", sp.Code, "pairs", joined)
		}
	}
	return nil
}

func (a *App) slProvider() (usecase.SourceProvider, error) {
	codes, err := slSportCodes(a.cfg, a.sports)
	if err != nil {
		return nil, err
	}
	from, to := a.cfg.Window(a.now())
	return slfeed.NewClient(a.slDB, slfeed.Config{
		SportCodes: codes,
		PageSize:   a.cfg.PageSize,
		WindowFrom: from,
		WindowTo:   to,
	}, a.logger), nil
}

// importSource pages every enabled sport through the provider. Sports run
// concurrently; within one sport units stay sequential in the order the
// source emits them.
func (a *App) importSource(ctx context.Context, provider usecase.SourceProvider, source string) error {
	p := pool.New().WithMaxGoroutines(a.cfg.ImportConcurrency).WithContext(ctx).WithCancelOnError()
	for _, sp := range a.sports {
		sp := sp
		p.Go(func(ctx context.Context) error {
			return a.importSport(ctx, provider, source, sp)
		})
	}
	return p.Wait()
}

func (a *App) importSport(ctx context.Context, provider usecase.SourceProvider, source string, sp sport.Sport) error {
	var imported int
	for page := 0; ; page++ {
		states, hasMore, err := provider.FetchTournamentPage(ctx, sp.ID, page)
		if err != nil {
			return fmt.Errorf("fetch tournaments page %d for sport %q: %w", page, sp.Code, err)
		}

		for _, state := range states {
			created, err := a.importUnit(ctx, sp, source, state)
			if err != nil {
				return err
			}
			if created {
				imported++
			}
		}

		if !hasMore {
			break
		}
	}

	a.logger.InfoContext(ctx, "sport import finished",
		"sport", sp.Code,
		"source", source,
		"created", imported,
	)
	return nil
}

// importUnit assembles one tournament in its own transaction. A unit-local
// failure rolls back that unit, lands in the import log and the run moves
// on; a structural failure aborts the whole run.
func (a *App) importUnit(ctx context.Context, sp sport.Sport, source string, state usecase.ExternalTournamentState) (bool, error) {
	var (
		tournamentID int64
		created      bool
	)
	err := a.txRunner.InTx(ctx, func(ctx context.Context) error {
		id, c, err := a.assembler.Assemble(ctx, sp, state)
		if err != nil {
			return err
		}
		tournamentID, created = id, c
		return nil
	})
	if err != nil {
		if errors.Is(err, usecase.ErrStructural) || ctx.Err() != nil {
			return false, err
		}
		a.recordUnitFailure(ctx, source, state, err)
		return false, nil
	}

	if created {
		a.publishImported(ctx, sp, tournamentID)
	}
	return created, nil
}

func (a *App) recordUnitFailure(ctx context.Context, source string, state usecase.ExternalTournamentState, unitErr error) {
	payload, err := sonic.Marshal(state)
	if err != nil {
		a.logger.WarnContext(ctx, "serialize failed unit payload", "error", err)
	}

	rec := importlog.Record{
		ID:         uuid.NewString(),
		Source:     source,
		ExternalID: externalID(state),
		Message:    unitErr.Error(),
		Payload:    payload,
		CreatedAt:  a.now().UTC(),
	}
	if err := a.importLogs.Append(ctx, rec); err != nil {
		a.logger.ErrorContext(ctx, "append import log", "external_id", rec.ExternalID, "error", err)
	}

	a.logger.WarnContext(ctx, "import unit failed",
		"source", source,
		"external_id", rec.ExternalID,
		"error", unitErr,
	)
}

// publishImported hands the new tournament and its participants to the
// downstream statistics consumer. Publishing is best effort: a queue outage
// must not fail an already committed import.
func (a *App) publishImported(ctx context.Context, sp sport.Sport, tournamentID int64) {
	if a.queue == nil {
		return
	}

	a.publishTournament(ctx, tournamentID)

	t, ok, err := a.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil || !ok {
		a.logger.WarnContext(ctx, "load tournament for participant publish", "tournament_id", tournamentID, "error", err)
		return
	}
	isThrow := t.Type == tournament.TypeMeets

	rows, err := a.tournamentRepo.ListSides(ctx, tournamentID)
	if err != nil {
		a.logger.WarnContext(ctx, "list sides for participant publish", "tournament_id", tournamentID, "error", err)
		return
	}
	for _, row := range rows {
		if row.DeletedAt != nil {
			continue
		}
		s, ok, err := a.sideRepo.GetByID(ctx, row.SideID)
		if err != nil || !ok || s.PlayerID == nil {
			continue
		}
		if err := a.queue.PublishParticipant(ctx, *s.PlayerID, sp.ID, isThrow); err != nil {
			a.logger.WarnContext(ctx, "publish participant work item", "player_id", *s.PlayerID, "error", err)
		}
	}
}

func (a *App) publishTournament(ctx context.Context, tournamentID int64) {
	if a.queue == nil {
		return
	}
	if err := a.queue.PublishTournament(ctx, tournamentID); err != nil {
		a.logger.WarnContext(ctx, "publish tournament work item", "tournament_id", tournamentID, "error", err)
	}
}

func externalID(state usecase.ExternalTournamentState) int64 {
	if state.SLID != nil {
		return *state.SLID
	}
	if state.OldID != nil {
		return *state.OldID
	}
	return 0
}
