package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arenahub/statsync/internal/domain/game"
	"github.com/arenahub/statsync/internal/domain/side"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/platform/logging"
)

// UpdateCheckerService diffs freshly fetched external state against stored
// rows and issues targeted corrective writes: side substitutions, reschedules
// and renamed tournaments. All writes are partial updates of the changed
// columns only, so re-running a window is safe.
type UpdateCheckerService struct {
	provider       SourceProvider
	resolver       *ResolverService
	sideBuilder    *SideBuilderService
	sideRepo       side.Repository
	tournamentRepo tournament.Repository
	gameRepo       game.Repository
	recount        *RecountService
	logger         *logging.Logger
	now            func() time.Time
}

func NewUpdateCheckerService(
	provider SourceProvider,
	resolver *ResolverService,
	sideBuilder *SideBuilderService,
	sideRepo side.Repository,
	tournamentRepo tournament.Repository,
	gameRepo game.Repository,
	recount *RecountService,
	logger *logging.Logger,
) *UpdateCheckerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &UpdateCheckerService{
		provider:       provider,
		resolver:       resolver,
		sideBuilder:    sideBuilder,
		sideRepo:       sideRepo,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		recount:        recount,
		logger:         logger,
		now:            time.Now,
	}
}

// CheckUpdates processes the polling window (updated_at > since) and returns
// the set of tournaments it actually wrote to. Unchanged rows produce zero
// writes.
func (s *UpdateCheckerService) CheckUpdates(ctx context.Context, sp sport.Sport, since time.Time) (map[int64]struct{}, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UpdateCheckerService.CheckUpdates")
	defer span.End()

	touched := make(map[int64]struct{})

	updates, err := s.provider.FetchModifiedGames(ctx, sp.ID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch modified games sport=%d: %w", sp.ID, err)
	}
	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].UpdatedAt.Before(updates[j].UpdatedAt)
	})

	for _, upd := range updates {
		changed, tournamentID, err := s.applyGameUpdate(ctx, sp, upd)
		if err != nil {
			return nil, err
		}
		if changed {
			touched[tournamentID] = struct{}{}
		}
	}

	rounds, err := s.provider.FetchModifiedRounds(ctx, sp.ID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch modified rounds sport=%d: %w", sp.ID, err)
	}
	for _, round := range rounds {
		changed, tournamentID, err := s.applyRoundUpdate(ctx, sp, round)
		if err != nil {
			return nil, err
		}
		if changed {
			touched[tournamentID] = struct{}{}
		}
	}

	if len(touched) > 0 {
		if err := s.recount.RecountSides(ctx, keys(touched)); err != nil {
			return nil, fmt.Errorf("recount sides after updates sport=%d: %w", sp.ID, err)
		}
	}

	return touched, nil
}

func (s *UpdateCheckerService) applyGameUpdate(ctx context.Context, sp sport.Sport, upd ExternalGameUpdate) (bool, int64, error) {
	local, ok, err := s.gameRepo.GetBySLID(ctx, sp.ID, upd.GameSLID)
	if err != nil {
		return false, 0, fmt.Errorf("get game by sl_id=%d: %w", upd.GameSLID, err)
	}
	if !ok {
		// Not yet imported; the regular load will pick it up.
		return false, 0, nil
	}

	changed := false

	slots, err := s.gameRepo.ListSides(ctx, local.ID)
	if err != nil {
		return false, 0, fmt.Errorf("list game sides game=%d: %w", local.ID, err)
	}

	for _, sub := range s.detectSubstitutions(ctx, sp, slots, upd) {
		if err := s.applySubstitution(ctx, sp, local, sub); err != nil {
			return false, 0, err
		}
		changed = true
	}

	if !upd.StartAt.IsZero() && !upd.StartAt.Equal(local.StartAt) {
		startAt := upd.StartAt
		if err := s.gameRepo.ApplyUpdate(ctx, local.ID, game.Update{StartAt: &startAt}); err != nil {
			return false, 0, fmt.Errorf("reschedule game=%d: %w", local.ID, err)
		}
		s.logger.InfoContext(ctx, "game rescheduled",
			"game_id", local.ID, "start_at", startAt)
		changed = true
	}

	return changed, local.TournamentID, nil
}

// substitution is one detected side change: the slot it applies to, the side
// being replaced and the descriptor of its replacement.
type substitution struct {
	slot      int
	oldSideID int64
	incoming  ExternalSide
}

// detectSubstitutions compares each stored slot's external side id against
// the fetched descriptor. A game carrying only one stored slot falls back to
// positional matching; ambiguous for simultaneous two-sided changes, which
// the upstream never disambiguates either.
func (s *UpdateCheckerService) detectSubstitutions(
	ctx context.Context,
	sp sport.Sport,
	slots []game.SideRow,
	upd ExternalGameUpdate,
) []substitution {
	incomingBySlot := map[int]*ExternalSide{1: upd.SideOne, 2: upd.SideTwo}

	if len(slots) == 1 {
		incoming := upd.SideOne
		if incoming == nil {
			incoming = upd.SideTwo
		}
		if incoming == nil {
			return nil
		}
		if sub, ok := s.buildSubstitution(ctx, sp, slots[0], *incoming); ok {
			return []substitution{sub}
		}
		return nil
	}

	out := make([]substitution, 0, 2)
	for _, slot := range slots {
		incoming := incomingBySlot[slot.Slot]
		if incoming == nil {
			continue
		}
		if sub, ok := s.buildSubstitution(ctx, sp, slot, *incoming); ok {
			out = append(out, sub)
		}
	}
	return out
}

func (s *UpdateCheckerService) buildSubstitution(
	ctx context.Context,
	sp sport.Sport,
	slot game.SideRow,
	incoming ExternalSide,
) (substitution, bool) {
	if incoming.SLID == nil {
		return substitution{}, false
	}
	if sp.IsPlaceholderTitle(incoming.TitleRU) && sp.IsPlaceholderTitle(incoming.TitleEN) {
		// A placeholder never replaces a stored side; resolution flows the
		// other way.
		return substitution{}, false
	}

	stored, ok, err := s.sideRepo.GetByID(ctx, slot.SideID)
	if err != nil || !ok {
		return substitution{}, false
	}
	if stored.SLID != nil && *stored.SLID == *incoming.SLID {
		return substitution{}, false
	}

	return substitution{
		slot:      slot.Slot,
		oldSideID: slot.SideID,
		incoming:  incoming,
	}, true
}

func (s *UpdateCheckerService) applySubstitution(ctx context.Context, sp sport.Sport, local game.Game, sub substitution) error {
	newSideID, err := s.sideBuilder.BuildSide(ctx, sp, sub.incoming)
	if err != nil {
		return fmt.Errorf("build substituted side game=%d slot=%d: %w", local.ID, sub.slot, err)
	}
	if newSideID == sub.oldSideID {
		return nil
	}

	if err := s.gameRepo.ReplaceSide(ctx, local.ID, sub.slot, newSideID); err != nil {
		return fmt.Errorf("replace game side game=%d slot=%d: %w", local.ID, sub.slot, err)
	}
	s.logger.InfoContext(ctx, "game side substituted",
		"game_id", local.ID,
		"slot", sub.slot,
		"old_side_id", sub.oldSideID,
		"new_side_id", newSideID,
	)

	if sp.UsesMeets {
		// Meet-based sports keep their participant joins stable; the joiner
		// owns cross-bracket stitching.
		return nil
	}
	return s.propagateToTournamentSides(ctx, sp, local.TournamentID, sub.oldSideID, newSideID)
}

// propagateToTournamentSides keeps the tournament-side join consistent with
// a game-level substitution: the new side gets a join row unless it already
// holds a live one; the old side's row is soft-deleted only once no game in
// the tournament references it.
func (s *UpdateCheckerService) propagateToTournamentSides(
	ctx context.Context,
	sp sport.Sport,
	tournamentID int64,
	oldSideID int64,
	newSideID int64,
) error {
	joins, err := s.tournamentRepo.ListSides(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list tournament sides tournament=%d: %w", tournamentID, err)
	}

	hasLiveJoin := false
	for _, join := range joins {
		if join.SideID == newSideID && join.DeletedAt == nil {
			hasLiveJoin = true
			break
		}
	}
	if !hasLiveJoin {
		newSide, ok, err := s.sideRepo.GetByID(ctx, newSideID)
		if err != nil {
			return fmt.Errorf("get substituted side=%d: %w", newSideID, err)
		}
		var deletedAt *time.Time
		if ok && newSide.IsTBA && !sp.KeepTBAAlive {
			at := s.now()
			deletedAt = &at
		}
		if err := s.tournamentRepo.CreateSide(ctx, tournament.Side{
			TournamentID: tournamentID,
			SideID:       newSideID,
			DeletedAt:    deletedAt,
		}); err != nil {
			return fmt.Errorf("create tournament side for substitution tournament=%d side=%d: %w", tournamentID, newSideID, err)
		}
	}

	remaining, err := s.gameRepo.CountBySide(ctx, tournamentID, oldSideID)
	if err != nil {
		return fmt.Errorf("count games by side tournament=%d side=%d: %w", tournamentID, oldSideID, err)
	}
	if remaining == 0 {
		if err := s.tournamentRepo.SoftDeleteSide(ctx, tournamentID, oldSideID, s.now()); err != nil {
			return fmt.Errorf("soft delete tournament side tournament=%d side=%d: %w", tournamentID, oldSideID, err)
		}
	}
	return nil
}

func (s *UpdateCheckerService) applyRoundUpdate(ctx context.Context, sp sport.Sport, round ExternalRoundUpdate) (bool, int64, error) {
	local, ok, err := s.tournamentRepo.GetBySLID(ctx, sp.ID, round.TournamentSLID)
	if err != nil {
		return false, 0, fmt.Errorf("get tournament by sl_id=%d: %w", round.TournamentSLID, err)
	}
	if !ok {
		return false, 0, nil
	}

	upd := tournament.Update{}
	changed := false

	categoryID, err := s.resolver.ResolveCategory(ctx, sp, round.Category)
	if err != nil {
		return false, 0, err
	}
	if categoryID != local.CategoryID {
		upd.CategoryID = &categoryID
		changed = true
	}
	if round.NameRU != "" && round.NameRU != local.NameRU {
		nameRU := round.NameRU
		upd.NameRU = &nameRU
		changed = true
	}
	if round.NameEN != "" && round.NameEN != local.NameEN {
		nameEN := round.NameEN
		upd.NameEN = &nameEN
		changed = true
	}
	if !round.StartAt.IsZero() && !round.StartAt.Equal(local.StartAt) {
		startAt := round.StartAt
		upd.StartAt = &startAt
		changed = true
	}
	if round.EndAt != nil && (local.EndAt == nil || !round.EndAt.Equal(*local.EndAt)) {
		upd.EndAt = round.EndAt
		changed = true
	}

	if !changed {
		return false, local.ID, nil
	}
	if err := s.tournamentRepo.ApplyUpdate(ctx, local.ID, upd); err != nil {
		return false, 0, fmt.Errorf("apply tournament update id=%d: %w", local.ID, err)
	}
	s.logger.InfoContext(ctx, "tournament metadata updated", "tournament_id", local.ID)
	return true, local.ID, nil
}

func keys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
