package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/arenahub/statsync/internal/domain/player"
	"github.com/arenahub/statsync/internal/domain/side"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/platform/logging"
)

// SideBuilderService turns a raw participant record into a persisted side
// row, resolving or creating the underlying team and/or player first.
// Calling twice with the same external side id and sport returns the same
// internal id.
type SideBuilderService struct {
	resolver *ResolverService
	sideRepo side.Repository
	logger   *logging.Logger
}

func NewSideBuilderService(resolver *ResolverService, sideRepo side.Repository, logger *logging.Logger) *SideBuilderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SideBuilderService{
		resolver: resolver,
		sideRepo: sideRepo,
		logger:   logger,
	}
}

// BuildSide resolves the participant shape for the sport class and persists
// the side. Placeholder titles are normalized to the canonical TBA side
// before any entity resolution, so all placeholders group deterministically.
func (s *SideBuilderService) BuildSide(ctx context.Context, sp sport.Sport, desc ExternalSide) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SideBuilderService.BuildSide")
	defer span.End()

	desc = NormalizeTBA(sp, desc)

	if desc.SLID != nil {
		existing, ok, err := s.sideRepo.GetBySLID(ctx, sp.ID, *desc.SLID)
		if err != nil {
			return 0, fmt.Errorf("get side by sl_id=%d sport=%d: %w", *desc.SLID, sp.ID, err)
		}
		if ok {
			return existing.ID, nil
		}
	}

	typeID, err := sp.SideType()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStructural, err)
	}

	var teamID, playerID *int64
	switch sp.Class {
	case sport.ClassIndividual:
		id, err := s.resolver.ResolvePlayer(ctx, sp, PlayerRef{
			Parts:  splitLocalizedName(desc.TitleRU, desc.TitleEN),
			Gender: desc.Gender,
		})
		if err != nil {
			return 0, fmt.Errorf("resolve player for side: %w", err)
		}
		playerID = &id

	case sport.ClassTeam:
		id, err := s.resolver.ResolveTeam(ctx, sp, TeamRef{
			NameRU: desc.TitleRU,
			NameEN: desc.TitleEN,
			Gender: desc.Gender,
		})
		if err != nil {
			return 0, fmt.Errorf("resolve team for side: %w", err)
		}
		teamID = &id

	case sport.ClassTeamPlayer:
		teamTitle, nickname := SplitTeamPlayerTitle(firstNonEmpty(desc.TitleEN, desc.TitleRU))
		tid, err := s.resolver.ResolveTeam(ctx, sp, TeamRef{
			NameRU: teamTitle,
			NameEN: teamTitle,
			Gender: desc.Gender,
		})
		if err != nil {
			return 0, fmt.Errorf("resolve team for team-player side: %w", err)
		}
		pid, err := s.resolver.ResolvePlayer(ctx, sp, PlayerRef{
			Nickname: nickname,
			Gender:   desc.Gender,
		})
		if err != nil {
			return 0, fmt.Errorf("resolve player for team-player side: %w", err)
		}
		teamID, playerID = &tid, &pid

	default:
		return 0, fmt.Errorf("%w: sport %q has unknown class %d", ErrStructural, sp.Code, sp.Class)
	}

	if desc.SLID == nil {
		existing, ok, err := s.sideRepo.GetByComposition(ctx, sp.ID, teamID, playerID)
		if err != nil {
			return 0, fmt.Errorf("get side by composition sport=%d: %w", sp.ID, err)
		}
		if ok {
			return existing.ID, nil
		}
	}

	created := side.Side{
		SportID:  sp.ID,
		SLID:     desc.SLID,
		TeamID:   teamID,
		PlayerID: playerID,
		TypeID:   typeID,
		IsTBA:    desc.IsTBA,
	}
	if err := created.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	id, err := s.sideRepo.Create(ctx, created)
	if err != nil {
		return 0, fmt.Errorf("create side sport=%d: %w", sp.ID, err)
	}
	return id, nil
}

// NormalizeTBA forces placeholder titles to the canonical "not determined"
// side, independent of sport. A side with at least one concrete title stays
// concrete; dump rows routinely carry a single language title.
func NormalizeTBA(sp sport.Sport, desc ExternalSide) ExternalSide {
	if !desc.IsTBA && (!sp.IsPlaceholderTitle(desc.TitleRU) || !sp.IsPlaceholderTitle(desc.TitleEN)) {
		return desc
	}
	desc.IsTBA = true
	desc.TitleRU = sport.PlaceholderTitleRU
	desc.TitleEN = sport.PlaceholderTitleEN
	return desc
}

// SplitTeamPlayerTitle parses the cyber-sports "Team (Nickname)" pattern.
// When the pattern does not match, the full title serves as both team name
// and nickname.
func SplitTeamPlayerTitle(title string) (teamTitle, nickname string) {
	title = strings.TrimSpace(title)
	open := strings.LastIndexByte(title, '(')
	if open <= 0 || !strings.HasSuffix(title, ")") {
		return title, title
	}
	teamTitle = strings.TrimSpace(title[:open])
	nickname = strings.TrimSpace(title[open+1 : len(title)-1])
	if teamTitle == "" || nickname == "" {
		return title, title
	}
	return teamTitle, nickname
}

func splitLocalizedName(titleRU, titleEN string) player.NameParts {
	parts := SplitFullName(titleRU)
	enParts := SplitFullName(titleEN)
	parts.SurnameEN = enParts.SurnameRU
	parts.FirstNameEN = enParts.FirstNameRU
	return parts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
