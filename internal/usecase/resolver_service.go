package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/arenahub/statsync/internal/domain/player"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/stage"
	"github.com/arenahub/statsync/internal/domain/team"
	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/platform/logging"
)

// ResolverService translates external identifiers (SL id, legacy old id,
// structured category keys) into internal surrogate keys, creating the
// internal row on first sight. Every lookup-or-create path is idempotent:
// a hit never creates, a miss creates exactly one row.
type ResolverService struct {
	teamRepo       team.Repository
	playerRepo     player.Repository
	stageRepo      stage.Repository
	tournamentRepo tournament.Repository
	logger         *logging.Logger
}

func NewResolverService(
	teamRepo team.Repository,
	playerRepo player.Repository,
	stageRepo stage.Repository,
	tournamentRepo tournament.Repository,
	logger *logging.Logger,
) *ResolverService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolverService{
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		stageRepo:      stageRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

// TeamRef is the payload needed to resolve or create a team.
type TeamRef struct {
	SLID  *int64
	OldID *int64

	NameRU string
	NameEN string
	Gender string
	City   string
}

// PlayerRef is the payload needed to resolve or create a player. Name parts
// and nickname are mutually exclusive, matching the sport class.
type PlayerRef struct {
	SLID  *int64
	OldID *int64

	Parts    player.NameParts
	Nickname string
	Gender   string
}

// ResolveTeam prefers the sl_id match within the sport, then the dump old_id,
// then a name match, and creates the row last. A name drift on a keyed hit
// updates the stored names in place instead of duplicating.
func (s *ResolverService) ResolveTeam(ctx context.Context, sp sport.Sport, ref TeamRef) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveTeam")
	defer span.End()

	name := strings.TrimSpace(ref.NameRU)
	if name == "" {
		name = strings.TrimSpace(ref.NameEN)
	}
	if name == "" {
		return 0, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	if ref.SLID != nil {
		existing, ok, err := s.teamRepo.GetBySLID(ctx, sp.ID, *ref.SLID)
		if err != nil {
			return 0, fmt.Errorf("get team by sl_id=%d sport=%d: %w", *ref.SLID, sp.ID, err)
		}
		if ok {
			return existing.ID, s.refreshTeamNames(ctx, existing, ref)
		}
	}
	if ref.OldID != nil {
		existing, ok, err := s.teamRepo.GetByOldID(ctx, sp.ID, *ref.OldID)
		if err != nil {
			return 0, fmt.Errorf("get team by old_id=%d sport=%d: %w", *ref.OldID, sp.ID, err)
		}
		if ok {
			return existing.ID, s.refreshTeamNames(ctx, existing, ref)
		}
	}

	existing, ok, err := s.teamRepo.GetByName(ctx, sp.ID, name)
	if err != nil {
		return 0, fmt.Errorf("get team by name %q sport=%d: %w", name, sp.ID, err)
	}
	if ok {
		return existing.ID, nil
	}

	created := team.Team{
		SportID: sp.ID,
		SLID:    ref.SLID,
		OldID:   ref.OldID,
		NameRU:  strings.TrimSpace(ref.NameRU),
		NameEN:  strings.TrimSpace(ref.NameEN),
		Gender:  strings.TrimSpace(ref.Gender),
		City:    strings.TrimSpace(ref.City),
	}
	if err := created.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	id, err := s.teamRepo.Create(ctx, created)
	if err != nil {
		return 0, fmt.Errorf("create team %q sport=%d: %w", name, sp.ID, err)
	}
	return id, nil
}

func (s *ResolverService) refreshTeamNames(ctx context.Context, existing team.Team, ref TeamRef) error {
	nameRU := strings.TrimSpace(ref.NameRU)
	nameEN := strings.TrimSpace(ref.NameEN)
	if nameRU == "" && nameEN == "" {
		return nil
	}
	if (nameRU == "" || nameRU == existing.NameRU) && (nameEN == "" || nameEN == existing.NameEN) {
		return nil
	}
	if nameRU == "" {
		nameRU = existing.NameRU
	}
	if nameEN == "" {
		nameEN = existing.NameEN
	}
	if err := s.teamRepo.UpdateNames(ctx, existing.ID, nameRU, nameEN); err != nil {
		return fmt.Errorf("update team names id=%d: %w", existing.ID, err)
	}
	s.logger.InfoContext(ctx, "team renamed from upstream",
		"team_id", existing.ID, "name_ru", nameRU, "name_en", nameEN)
	return nil
}

// ResolvePlayer follows the same lookup order as teams. When an existing
// player's concatenated full name differs from the newly observed one, the
// row is renamed in place; upstream name corrections never fork identities.
func (s *ResolverService) ResolvePlayer(ctx context.Context, sp sport.Sport, ref PlayerRef) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolvePlayer")
	defer span.End()

	if ref.Nickname == "" && ref.Parts.FullNameRU() == "" && ref.Parts.FullNameEN() == "" {
		return 0, fmt.Errorf("%w: player name or nickname is required", ErrInvalidInput)
	}

	if ref.SLID != nil {
		existing, ok, err := s.playerRepo.GetBySLID(ctx, sp.ID, *ref.SLID)
		if err != nil {
			return 0, fmt.Errorf("get player by sl_id=%d sport=%d: %w", *ref.SLID, sp.ID, err)
		}
		if ok {
			return existing.ID, s.refreshPlayerName(ctx, existing, ref)
		}
	}
	if ref.OldID != nil {
		existing, ok, err := s.playerRepo.GetByOldID(ctx, sp.ID, *ref.OldID)
		if err != nil {
			return 0, fmt.Errorf("get player by old_id=%d sport=%d: %w", *ref.OldID, sp.ID, err)
		}
		if ok {
			return existing.ID, s.refreshPlayerName(ctx, existing, ref)
		}
	}
	if ref.Nickname != "" {
		existing, ok, err := s.playerRepo.GetByNickname(ctx, sp.ID, ref.Nickname)
		if err != nil {
			return 0, fmt.Errorf("get player by nickname %q sport=%d: %w", ref.Nickname, sp.ID, err)
		}
		if ok {
			return existing.ID, nil
		}
	}

	created := player.Player{
		SportID:      sp.ID,
		SLID:         ref.SLID,
		OldID:        ref.OldID,
		FirstNameRU:  strings.TrimSpace(ref.Parts.FirstNameRU),
		SurnameRU:    strings.TrimSpace(ref.Parts.SurnameRU),
		PatronymicRU: strings.TrimSpace(ref.Parts.PatronymicRU),
		FirstNameEN:  strings.TrimSpace(ref.Parts.FirstNameEN),
		SurnameEN:    strings.TrimSpace(ref.Parts.SurnameEN),
		Nickname:     strings.TrimSpace(ref.Nickname),
		Gender:       strings.TrimSpace(ref.Gender),
	}
	created.SearchText = buildSearchText(created)
	if err := created.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	id, err := s.playerRepo.Create(ctx, created)
	if err != nil {
		return 0, fmt.Errorf("create player sport=%d: %w", sp.ID, err)
	}
	return id, nil
}

func (s *ResolverService) refreshPlayerName(ctx context.Context, existing player.Player, ref PlayerRef) error {
	observed := ref.Parts.FullNameRU()
	if observed == "" || observed == existing.FullNameRU() {
		return nil
	}
	if err := s.playerRepo.Rename(ctx, existing.ID, ref.Parts); err != nil {
		return fmt.Errorf("rename player id=%d: %w", existing.ID, err)
	}
	s.logger.InfoContext(ctx, "player renamed from upstream",
		"player_id", existing.ID, "full_name", observed)
	return nil
}

// ResolveStage shares stage rows across tournaments of one sport: sl_id
// first, old_id for dump-sourced data, create on miss.
func (s *ResolverService) ResolveStage(ctx context.Context, sp sport.Sport, ext ExternalStage) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveStage")
	defer span.End()

	if ext.SLID != nil {
		existing, ok, err := s.stageRepo.GetBySLID(ctx, sp.ID, *ext.SLID)
		if err != nil {
			return 0, fmt.Errorf("get stage by sl_id=%d sport=%d: %w", *ext.SLID, sp.ID, err)
		}
		if ok {
			return existing.ID, nil
		}
	}
	if ext.OldID != nil {
		existing, ok, err := s.stageRepo.GetByOldID(ctx, sp.ID, *ext.OldID)
		if err != nil {
			return 0, fmt.Errorf("get stage by old_id=%d sport=%d: %w", *ext.OldID, sp.ID, err)
		}
		if ok {
			return existing.ID, nil
		}
	}

	created := stage.Stage{
		SportID:    sp.ID,
		SLID:       ext.SLID,
		OldID:      ext.OldID,
		NameRU:     strings.TrimSpace(ext.NameRU),
		NameEN:     strings.TrimSpace(ext.NameEN),
		TourNumber: ext.TourNumber,
	}
	if err := created.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	id, err := s.stageRepo.Create(ctx, created)
	if err != nil {
		return 0, fmt.Errorf("create stage sport=%d: %w", sp.ID, err)
	}
	return id, nil
}

// ResolveCategory matches by the structured (event, league, gender, division)
// key, not a single external id. Missing sub-objects map to null columns.
func (s *ResolverService) ResolveCategory(ctx context.Context, sp sport.Sport, ext ExternalCategory) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveCategory")
	defer span.End()

	id, err := s.tournamentRepo.ResolveCategory(ctx, tournament.CategoryKey{
		SportID:  sp.ID,
		EventID:  ext.EventID,
		LeagueID: ext.LeagueID,
		Gender:   strings.TrimSpace(ext.Gender),
		Division: strings.TrimSpace(ext.Division),
	})
	if err != nil {
		return 0, fmt.Errorf("resolve category sport=%d: %w", sp.ID, err)
	}
	return id, nil
}

func buildSearchText(p player.Player) string {
	parts := []string{p.FullNameRU(), p.FullNameEN(), p.Nickname}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, " ")
}

// SplitFullName parses an external "Surname First Patronymic" title into name
// parts; a single token is treated as a surname.
func SplitFullName(full string) player.NameParts {
	fields := strings.Fields(strings.TrimSpace(full))
	parts := player.NameParts{}
	switch len(fields) {
	case 0:
	case 1:
		parts.SurnameRU = fields[0]
	case 2:
		parts.SurnameRU = fields[0]
		parts.FirstNameRU = fields[1]
	default:
		parts.SurnameRU = fields[0]
		parts.FirstNameRU = fields[1]
		parts.PatronymicRU = strings.Join(fields[2:], " ")
	}
	return parts
}
