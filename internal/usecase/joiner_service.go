package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/arenahub/statsync/internal/domain/game"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/platform/logging"
)

// JoinerService stitches split tournaments back together after the fact.
// Upstream publishes some events as two records: a base bracket and a
// throw-in bracket landing later the same day. Neither record references the
// other, so the join runs on (category, calendar date) and then links each
// throw-in meet to its base game through the related-sides mapping.
type JoinerService struct {
	tournamentRepo tournament.Repository
	gameRepo       game.Repository
	// relatedSides maps a throw-in side id to the base side id representing
	// the same participant.
	relatedSides map[int64]int64
	logger       *logging.Logger
}

func NewJoinerService(
	tournamentRepo tournament.Repository,
	gameRepo game.Repository,
	relatedSides map[int64]int64,
	logger *logging.Logger,
) *JoinerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &JoinerService{
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		relatedSides:   relatedSides,
		logger:         logger,
	}
}

// JoinSplitTournaments scans base brackets created since the cutoff that
// have no next-part pointer yet, pairs each with its throw-in counterpart
// and links the meets. A base with no counterpart yet stays unjoined and is
// retried on the next run. Returns the number of pairs joined.
func (s *JoinerService) JoinSplitTournaments(ctx context.Context, sp sport.Sport, createdSince time.Time) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JoinerService.JoinSplitTournaments")
	defer span.End()

	if !sp.SplitBrackets {
		return 0, nil
	}

	bases, err := s.tournamentRepo.ListUnjoinedBase(ctx, sp.ID, createdSince)
	if err != nil {
		return 0, fmt.Errorf("list unjoined base tournaments sport=%d: %w", sp.ID, err)
	}

	joined := 0
	for _, base := range bases {
		throwIn, ok, err := s.tournamentRepo.FindThrowIn(ctx, sp.ID, base.CategoryID, base.StartAt)
		if err != nil {
			return joined, fmt.Errorf("find throw-in for tournament=%d: %w", base.ID, err)
		}
		if !ok {
			continue
		}

		if err := s.tournamentRepo.SetNextPart(ctx, base.ID, throwIn.ID); err != nil {
			return joined, fmt.Errorf("set next part base=%d throw=%d: %w", base.ID, throwIn.ID, err)
		}
		if err := s.linkMeets(ctx, base, throwIn); err != nil {
			return joined, err
		}

		s.logger.InfoContext(ctx, "split tournament joined",
			"base_id", base.ID, "throw_in_id", throwIn.ID)
		joined++
	}
	return joined, nil
}

// linkMeets points each unlinked throw-in meet at the base game played by
// the same participant pair. Side order is not stable across the two
// records, so both orientations are tried.
func (s *JoinerService) linkMeets(ctx context.Context, base, throwIn tournament.Tournament) error {
	meets, err := s.gameRepo.ListMeetsByTournament(ctx, throwIn.ID)
	if err != nil {
		return fmt.Errorf("list meets tournament=%d: %w", throwIn.ID, err)
	}
	if len(meets) == 0 {
		return nil
	}

	baseGames, err := s.gameRepo.ListByTournament(ctx, base.ID)
	if err != nil {
		return fmt.Errorf("list base games tournament=%d: %w", base.ID, err)
	}
	gameByPair := make(map[[2]int64]int64, len(baseGames))
	for _, g := range baseGames {
		gameByPair[orderedPair(g.SideOneID, g.SideTwoID)] = g.ID
	}

	for _, m := range meets {
		if m.MainGameID != nil {
			continue
		}
		baseOne, okOne := s.relatedSides[m.SideOneID]
		baseTwo, okTwo := s.relatedSides[m.SideTwoID]
		if !okOne || !okTwo {
			s.logger.WarnContext(ctx, "meet sides have no base mapping",
				"meet_id", m.ID, "side_one_id", m.SideOneID, "side_two_id", m.SideTwoID)
			continue
		}
		gameID, found := gameByPair[orderedPair(baseOne, baseTwo)]
		if !found {
			s.logger.WarnContext(ctx, "no base game for throw-in meet",
				"meet_id", m.ID, "base_id", base.ID)
			continue
		}
		if err := s.gameRepo.SetMeetMainGame(ctx, m.ID, gameID); err != nil {
			return fmt.Errorf("link meet=%d to game=%d: %w", m.ID, gameID, err)
		}
	}
	return nil
}

func orderedPair(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}
