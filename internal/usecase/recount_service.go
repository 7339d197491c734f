package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/platform/logging"
)

const defaultRecountWorkers = 8

// RecountService recomputes denormalized per-tournament counters. The work
// is independent per tournament, so it fans out over a bounded pool.
type RecountService struct {
	tournamentRepo tournament.Repository
	logger         *logging.Logger
	workers        int
}

func NewRecountService(tournamentRepo tournament.Repository, workers int, logger *logging.Logger) *RecountService {
	if workers <= 0 {
		workers = defaultRecountWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecountService{
		tournamentRepo: tournamentRepo,
		logger:         logger,
		workers:        workers,
	}
}

// RecountSides refreshes sides_count for every listed tournament from the
// live (non soft-deleted) join rows. The first error wins; remaining work
// still drains.
func (s *RecountService) RecountSides(ctx context.Context, tournamentIDs []int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecountService.RecountSides")
	defer span.End()

	if len(tournamentIDs) == 0 {
		return nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("create recount pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, id := range tournamentIDs {
		id := id
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.recountOne(ctx, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = errors.Wrap(submitErr, "submit recount task")
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	return firstErr
}

func (s *RecountService) recountOne(ctx context.Context, tournamentID int64) error {
	count, err := s.tournamentRepo.CountLiveSides(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("count live sides tournament=%d: %w", tournamentID, err)
	}
	if err := s.tournamentRepo.SetSidesCount(ctx, tournamentID, count); err != nil {
		return fmt.Errorf("set sides count tournament=%d: %w", tournamentID, err)
	}
	return nil
}
