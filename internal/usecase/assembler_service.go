package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/arenahub/statsync/internal/domain/game"
	"github.com/arenahub/statsync/internal/domain/side"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/platform/logging"
)

// AssemblerService builds one internal tournament aggregate out of an
// external tournament state. A tournament whose external key is already
// imported is skipped wholesale; refreshing its children is the update
// checker's job. All child writes happen inside the caller-provided
// transaction scope.
type AssemblerService struct {
	resolver       *ResolverService
	sideBuilder    *SideBuilderService
	sideRepo       side.Repository
	tournamentRepo tournament.Repository
	gameRepo       game.Repository
	logger         *logging.Logger
	now            func() time.Time
}

func NewAssemblerService(
	resolver *ResolverService,
	sideBuilder *SideBuilderService,
	sideRepo side.Repository,
	tournamentRepo tournament.Repository,
	gameRepo game.Repository,
	logger *logging.Logger,
) *AssemblerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssemblerService{
		resolver:       resolver,
		sideBuilder:    sideBuilder,
		sideRepo:       sideRepo,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Assemble imports one tournament. Returns (id, created). A previously
// imported external key returns (existing id, false) with no child writes;
// a batch failing the validity gate returns (0, false) silently.
func (s *AssemblerService) Assemble(ctx context.Context, sp sport.Sport, state ExternalTournamentState) (int64, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssemblerService.Assemble")
	defer span.End()

	if state.SportID != sp.ID {
		return 0, false, fmt.Errorf("%w: state sport=%d does not match sport=%d", ErrInvalidInput, state.SportID, sp.ID)
	}
	if state.SLID == nil && state.OldID == nil {
		return 0, false, fmt.Errorf("%w: tournament state needs an external key", ErrInvalidInput)
	}

	if existing, ok, err := s.lookupExisting(ctx, sp, state); err != nil {
		return 0, false, err
	} else if ok {
		s.logger.WarnContext(ctx, "tournament already imported, skipping children",
			"tournament_id", existing.ID,
			"sl_id", int64PtrValue(state.SLID),
			"old_id", int64PtrValue(state.OldID),
		)
		return existing.ID, false, nil
	}

	if !s.passesValidityGate(sp, state) {
		s.logger.DebugContext(ctx, "tournament batch dropped by validity gate",
			"sl_id", int64PtrValue(state.SLID),
			"old_id", int64PtrValue(state.OldID),
			"sides", len(state.Sides),
			"games", len(state.Games),
		)
		return 0, false, nil
	}

	categoryID, err := s.resolver.ResolveCategory(ctx, sp, state.Category)
	if err != nil {
		return 0, false, err
	}

	liveSides := 0
	for _, raw := range state.Sides {
		if !NormalizeTBA(sp, raw).IsTBA {
			liveSides++
		}
	}

	tournamentState := tournament.DeriveState(s.now(), state.StartAt, state.EndAt, "")
	tournamentID, err := s.tournamentRepo.Create(ctx, tournament.Tournament{
		SportID:      sp.ID,
		SLID:         state.SLID,
		OldID:        state.OldID,
		CategoryID:   categoryID,
		PlaceID:      state.PlaceID,
		TimeOfDay:    tournament.DeriveTimeOfDay(state.StartAt),
		Type:         normalizeTournamentType(state.Type),
		NameRU:       state.NameRU,
		NameEN:       state.NameEN,
		StartAt:      state.StartAt,
		EndAt:        state.EndAt,
		SidesCount:   liveSides,
		MatchesCount: len(state.Games),
		State:        tournamentState,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return 0, false, fmt.Errorf("create tournament sl_id=%v old_id=%v: %w",
			int64PtrValue(state.SLID), int64PtrValue(state.OldID), err)
	}

	sides, err := s.buildSides(ctx, sp, tournamentID, state)
	if err != nil {
		return 0, false, err
	}

	if sp.UsesTourNumbers && state.MaxTourNumber > 0 {
		if err := s.createStageSides(ctx, tournamentID, sides); err != nil {
			return 0, false, err
		}
	}

	stageIDsByExternal, err := s.resolveStages(ctx, sp, state)
	if err != nil {
		return 0, false, err
	}

	meetIDsBySLID := map[int64]int64{}
	if sp.UsesMeets {
		meetIDsBySLID, err = s.createMeets(ctx, tournamentID, sides, state)
		if err != nil {
			return 0, false, err
		}
	}

	if err := s.createGames(ctx, sp, tournamentID, state, sides, stageIDsByExternal, meetIDsBySLID); err != nil {
		return 0, false, err
	}

	s.logger.InfoContext(ctx, "tournament assembled",
		"tournament_id", tournamentID,
		"sport_id", sp.ID,
		"sides", len(state.Sides),
		"games", len(state.Games),
	)
	return tournamentID, true, nil
}

func (s *AssemblerService) lookupExisting(ctx context.Context, sp sport.Sport, state ExternalTournamentState) (tournament.Tournament, bool, error) {
	if state.SLID != nil {
		existing, ok, err := s.tournamentRepo.GetBySLID(ctx, sp.ID, *state.SLID)
		if err != nil {
			return tournament.Tournament{}, false, fmt.Errorf("get tournament by sl_id=%d: %w", *state.SLID, err)
		}
		if ok {
			return existing, true, nil
		}
	}
	if state.OldID != nil {
		existing, ok, err := s.tournamentRepo.GetByOldID(ctx, sp.ID, *state.OldID)
		if err != nil {
			return tournament.Tournament{}, false, fmt.Errorf("get tournament by old_id=%d: %w", *state.OldID, err)
		}
		if ok {
			return existing, true, nil
		}
	}
	return tournament.Tournament{}, false, nil
}

// passesValidityGate requires more than one live side, at least one game,
// and for meet-based sports a fully resolved side pair per meet. Failing the
// gate is a silent drop, not an error.
func (s *AssemblerService) passesValidityGate(sp sport.Sport, state ExternalTournamentState) bool {
	live := 0
	for _, raw := range state.Sides {
		if !NormalizeTBA(sp, raw).IsTBA {
			live++
		}
	}
	if live <= 1 || len(state.Games) == 0 {
		return false
	}
	if sp.UsesMeets {
		for _, meet := range state.Meets {
			if meet.SideOneSLID == nil || meet.SideTwoSLID == nil {
				return false
			}
		}
	}
	return true
}

// sideIndex tracks the persisted sides of one batch by both external key
// kinds: feed records carry side ids, dump records only carry titles.
type sideIndex struct {
	bySLID  map[int64]int64
	byTitle map[string]int64
	tba     map[int64]struct{}
	maxTour int
}

func (idx sideIndex) liveIDs() []int64 {
	seen := make(map[int64]struct{})
	out := make([]int64, 0, len(idx.bySLID)+len(idx.byTitle))
	collect := func(id int64) {
		if _, isTBA := idx.tba[id]; isTBA {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range idx.bySLID {
		collect(id)
	}
	for _, id := range idx.byTitle {
		collect(id)
	}
	return out
}

// buildSides persists every raw side, inserts the tournament-side joins and
// pre-soft-deletes TBA placeholders so they never count as live.
func (s *AssemblerService) buildSides(
	ctx context.Context,
	sp sport.Sport,
	tournamentID int64,
	state ExternalTournamentState,
) (sideIndex, error) {
	idx := sideIndex{
		bySLID:  make(map[int64]int64, len(state.Sides)),
		byTitle: make(map[string]int64),
		tba:     make(map[int64]struct{}),
		maxTour: state.MaxTourNumber,
	}
	now := s.now()

	for _, raw := range state.Sides {
		normalized := NormalizeTBA(sp, raw)
		sideID, err := s.sideBuilder.BuildSide(ctx, sp, normalized)
		if err != nil {
			return sideIndex{}, fmt.Errorf("build side tournament=%d: %w", tournamentID, err)
		}
		if raw.SLID != nil {
			idx.bySLID[*raw.SLID] = sideID
		}
		if raw.TitleRU != "" {
			idx.byTitle[raw.TitleRU] = sideID
		}
		if raw.TitleEN != "" {
			idx.byTitle[raw.TitleEN] = sideID
		}

		var deletedAt *time.Time
		if normalized.IsTBA {
			idx.tba[sideID] = struct{}{}
			at := now
			deletedAt = &at
		}

		ratingBefore, err := s.sideRepo.LatestRatingBefore(ctx, sideID, state.StartAt)
		if err != nil {
			return sideIndex{}, fmt.Errorf("fetch rating before start side=%d: %w", sideID, err)
		}

		if err := s.tournamentRepo.CreateSide(ctx, tournament.Side{
			TournamentID: tournamentID,
			SideID:       sideID,
			Seed:         raw.Seed,
			RatingBefore: ratingBefore,
			DeletedAt:    deletedAt,
		}); err != nil {
			return sideIndex{}, fmt.Errorf("create tournament side tournament=%d side=%d: %w", tournamentID, sideID, err)
		}
	}

	return idx, nil
}

func (s *AssemblerService) createStageSides(ctx context.Context, tournamentID int64, sides sideIndex) error {
	live := sides.liveIDs()
	rows := make([]tournament.StageSide, 0, len(live)*sides.maxTour)
	for _, sideID := range live {
		for tour := 1; tour <= sides.maxTour; tour++ {
			rows = append(rows, tournament.StageSide{
				TournamentID: tournamentID,
				SideID:       sideID,
				TourNumber:   tour,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.tournamentRepo.CreateStageSides(ctx, rows); err != nil {
		return fmt.Errorf("create stage sides tournament=%d: %w", tournamentID, err)
	}
	return nil
}

func (s *AssemblerService) resolveStages(ctx context.Context, sp sport.Sport, state ExternalTournamentState) (map[int64]int64, error) {
	out := make(map[int64]int64, len(state.Stages))
	for _, ext := range state.Stages {
		stageID, err := s.resolver.ResolveStage(ctx, sp, ext)
		if err != nil {
			return nil, err
		}
		if ext.SLID != nil {
			out[*ext.SLID] = stageID
		}
		if ext.OldID != nil {
			out[*ext.OldID] = stageID
		}
	}
	return out, nil
}

// createMeets inserts meet rows first so games can reference meet_id.
func (s *AssemblerService) createMeets(
	ctx context.Context,
	tournamentID int64,
	sides sideIndex,
	state ExternalTournamentState,
) (map[int64]int64, error) {
	out := make(map[int64]int64, len(state.Meets))
	for _, ext := range state.Meets {
		if ext.SLID == nil || ext.SideOneSLID == nil || ext.SideTwoSLID == nil {
			return nil, fmt.Errorf("%w: meet in tournament=%d is missing identifiers", ErrInvalidInput, tournamentID)
		}
		sideOne, okOne := sides.bySLID[*ext.SideOneSLID]
		sideTwo, okTwo := sides.bySLID[*ext.SideTwoSLID]
		if !okOne || !okTwo {
			return nil, fmt.Errorf("%w: meet sl_id=%d references an unknown side", ErrInvalidInput, *ext.SLID)
		}
		meetID, err := s.gameRepo.CreateMeet(ctx, game.Meet{
			TournamentID: tournamentID,
			SLID:         ext.SLID,
			SideOneID:    sideOne,
			SideTwoID:    sideTwo,
		})
		if err != nil {
			return nil, fmt.Errorf("create meet tournament=%d: %w", tournamentID, err)
		}
		out[*ext.SLID] = meetID
	}
	return out, nil
}

func (s *AssemblerService) createGames(
	ctx context.Context,
	sp sport.Sport,
	tournamentID int64,
	state ExternalTournamentState,
	sides sideIndex,
	stageIDsByExternal map[int64]int64,
	meetIDsBySLID map[int64]int64,
) error {
	for _, ext := range state.Games {
		stageID, err := resolveGameStage(ext, stageIDsByExternal)
		if err != nil {
			return err
		}

		sideOne, err := resolveGameSide(ext.SideOneSLID, ext.SideOneTitle, sides)
		if err != nil {
			return fmt.Errorf("game sl_id=%v side one: %w", int64PtrValue(ext.SLID), err)
		}
		sideTwo, err := resolveGameSide(ext.SideTwoSLID, ext.SideTwoTitle, sides)
		if err != nil {
			return fmt.Errorf("game sl_id=%v side two: %w", int64PtrValue(ext.SLID), err)
		}

		var meetID *int64
		if sp.UsesMeets && ext.MeetSLID != nil {
			id, ok := meetIDsBySLID[*ext.MeetSLID]
			if !ok {
				return fmt.Errorf("%w: game references unknown meet sl_id=%d", ErrInvalidInput, *ext.MeetSLID)
			}
			meetID = &id
		}

		created := game.Game{
			TournamentID: tournamentID,
			SLID:         ext.SLID,
			OldID:        ext.OldID,
			StageID:      stageID,
			MeetID:       meetID,
			SideOneID:    sideOne,
			SideTwoID:    sideTwo,
			StartAt:      ext.StartAt,
			State:        normalizeGameState(ext.State),
		}
		if err := created.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, err := s.gameRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("create game tournament=%d: %w", tournamentID, err)
		}
	}
	return nil
}

// resolveGameStage fails structurally: a game pointing at a stage absent
// from the fetched stage set means the upstream page itself is inconsistent.
func resolveGameStage(ext ExternalGame, stageIDsByExternal map[int64]int64) (int64, error) {
	if ext.StageSLID != nil {
		if id, ok := stageIDsByExternal[*ext.StageSLID]; ok {
			return id, nil
		}
		return 0, fmt.Errorf("%w: game references stage sl_id=%d absent from fetched stages", ErrStructural, *ext.StageSLID)
	}
	if ext.StageOldID != nil {
		if id, ok := stageIDsByExternal[*ext.StageOldID]; ok {
			return id, nil
		}
		return 0, fmt.Errorf("%w: game references stage old_id=%d absent from fetched stages", ErrStructural, *ext.StageOldID)
	}
	return 0, fmt.Errorf("%w: game has no stage reference", ErrInvalidInput)
}

func resolveGameSide(slID *int64, title string, sides sideIndex) (int64, error) {
	if slID != nil {
		id, ok := sides.bySLID[*slID]
		if !ok {
			return 0, fmt.Errorf("%w: game references unknown side sl_id=%d", ErrInvalidInput, *slID)
		}
		return id, nil
	}
	if title != "" {
		id, ok := sides.byTitle[title]
		if !ok {
			return 0, fmt.Errorf("%w: game references unknown side title=%q", ErrInvalidInput, title)
		}
		return id, nil
	}
	return 0, fmt.Errorf("%w: game side reference is missing", ErrInvalidInput)
}

func normalizeTournamentType(t tournament.Type) tournament.Type {
	if t == "" {
		return tournament.TypeBase
	}
	return t
}

func normalizeGameState(raw string) game.State {
	switch game.State(raw) {
	case game.StateLive, game.StateFinished, game.StateCanceled:
		return game.State(raw)
	default:
		return game.StateAnnounce
	}
}

func int64PtrValue(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
