package usecase

import (
	"context"
	"testing"

	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/infrastructure/repository/memory"
	"github.com/arenahub/statsync/internal/platform/logging"
)

func newTestSideBuilder(sides *memory.SideRepository) (*SideBuilderService, *memory.TeamRepository, *memory.PlayerRepository) {
	teams := memory.NewTeamRepository()
	players := memory.NewPlayerRepository()
	resolver := newTestResolver(teams, players, memory.NewStageRepository(), memory.NewTournamentRepository())
	return NewSideBuilderService(resolver, sides, logging.NewNop()), teams, players
}

func TestBuildSide_IndividualCreatesPlayer(t *testing.T) {
	sides := memory.NewSideRepository()
	b, _, players := newTestSideBuilder(sides)
	sp := testSport(sport.ClassIndividual)

	id, err := b.BuildSide(context.Background(), sp, ExternalSide{
		SLID:    int64Ptr(100),
		TitleRU: "Иванов Иван",
		TitleEN: "Ivanov Ivan",
	})
	if err != nil {
		t.Fatalf("build side: %v", err)
	}
	s, ok, _ := sides.GetByID(context.Background(), id)
	if !ok {
		t.Fatalf("side %d not stored", id)
	}
	if s.TypeID != sport.SideTypeSingles || s.PlayerID == nil || s.TeamID != nil {
		t.Fatalf("unexpected side shape %+v", s)
	}
	p, ok := players.Get(*s.PlayerID)
	if !ok {
		t.Fatalf("player %d not created", *s.PlayerID)
	}
	if p.SurnameRU != "Иванов" || p.FirstNameRU != "Иван" || p.SurnameEN != "Ivanov" || p.FirstNameEN != "Ivan" {
		t.Fatalf("localized name parts wrong: %+v", p)
	}
}

func TestBuildSide_IdempotentBySLID(t *testing.T) {
	sides := memory.NewSideRepository()
	b, _, _ := newTestSideBuilder(sides)
	sp := testSport(sport.ClassIndividual)

	desc := ExternalSide{SLID: int64Ptr(100), TitleRU: "Иванов Иван"}
	first, err := b.BuildSide(context.Background(), sp, desc)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := b.BuildSide(context.Background(), sp, desc)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if first != second {
		t.Fatalf("same sl_id produced sides %d and %d", first, second)
	}
}

func TestBuildSide_IdempotentByComposition(t *testing.T) {
	sides := memory.NewSideRepository()
	b, _, _ := newTestSideBuilder(sides)
	sp := testSport(sport.ClassTeam)

	first, err := b.BuildSide(context.Background(), sp, ExternalSide{TitleRU: "Зенит"})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := b.BuildSide(context.Background(), sp, ExternalSide{TitleRU: "Зенит"})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if first != second {
		t.Fatalf("unkeyed duplicate produced sides %d and %d", first, second)
	}
}

func TestBuildSide_TeamPlayerSplit(t *testing.T) {
	sides := memory.NewSideRepository()
	b, teams, players := newTestSideBuilder(sides)
	sp := testSport(sport.ClassTeamPlayer)

	id, err := b.BuildSide(context.Background(), sp, ExternalSide{
		SLID:    int64Ptr(7),
		TitleEN: "Arsenal (Gunner)",
	})
	if err != nil {
		t.Fatalf("build side: %v", err)
	}
	s, _, _ := sides.GetByID(context.Background(), id)
	if s.TeamID == nil || s.PlayerID == nil {
		t.Fatalf("team-player side incomplete: %+v", s)
	}
	tm, _ := teams.Get(*s.TeamID)
	if tm.NameEN != "Arsenal" {
		t.Fatalf("team title %q, want Arsenal", tm.NameEN)
	}
	p, _ := players.Get(*s.PlayerID)
	if p.Nickname != "Gunner" {
		t.Fatalf("nickname %q, want Gunner", p.Nickname)
	}
}

func TestBuildSide_TBANormalization(t *testing.T) {
	sides := memory.NewSideRepository()
	b, _, _ := newTestSideBuilder(sides)
	sp := testSport(sport.ClassTeam)
	sp.ExtraPlaceholders = []string{"winner"}

	placeholders := []ExternalSide{
		{TitleRU: "Команда не определена"},
		{TitleEN: "TBA"},
		{TitleEN: "the final"},
		{TitleEN: "Winner"},
		{TitleRU: "Реальная команда", IsTBA: true},
	}
	var first int64
	for i, desc := range placeholders {
		id, err := b.BuildSide(context.Background(), sp, desc)
		if err != nil {
			t.Fatalf("build placeholder %d: %v", i, err)
		}
		if i == 0 {
			first = id
			continue
		}
		if id != first {
			t.Fatalf("placeholder %d got side %d, want %d", i, id, first)
		}
	}
	s, _, _ := sides.GetByID(context.Background(), first)
	if !s.IsTBA {
		t.Fatalf("canonical placeholder side must be marked TBA")
	}
}

func TestNormalizeTBA_LeavesConcreteSides(t *testing.T) {
	sp := testSport(sport.ClassTeam)
	desc := ExternalSide{TitleRU: "ЦСКА", TitleEN: "CSKA"}
	got := NormalizeTBA(sp, desc)
	if got.IsTBA || got.TitleRU != "ЦСКА" || got.TitleEN != "CSKA" {
		t.Fatalf("concrete side mangled: %+v", got)
	}
}

func TestNormalizeTBA_SingleLanguageTitleStaysConcrete(t *testing.T) {
	sp := testSport(sport.ClassTeam)
	for _, desc := range []ExternalSide{
		{TitleRU: "Спартак"},
		{TitleEN: "Brainiacs (Jonny)"},
	} {
		got := NormalizeTBA(sp, desc)
		if got.IsTBA || got.TitleRU != desc.TitleRU || got.TitleEN != desc.TitleEN {
			t.Fatalf("single-language side mangled: %+v", got)
		}
	}
}

func TestBuildSide_RussianOnlyTitleBuildsConcreteTeam(t *testing.T) {
	sides := memory.NewSideRepository()
	b, teams, _ := newTestSideBuilder(sides)
	sp := testSport(sport.ClassTeam)

	id, err := b.BuildSide(context.Background(), sp, ExternalSide{TitleRU: "Спартак"})
	if err != nil {
		t.Fatalf("build side: %v", err)
	}
	s, _, _ := sides.GetByID(context.Background(), id)
	if s.IsTBA || s.TeamID == nil {
		t.Fatalf("dump side collapsed to placeholder: %+v", s)
	}
	tm, _ := teams.Get(*s.TeamID)
	if tm.NameRU != "Спартак" {
		t.Fatalf("team name %q, want Спартак", tm.NameRU)
	}
}

func TestSplitTeamPlayerTitle(t *testing.T) {
	cases := []struct {
		in       string
		team     string
		nickname string
	}{
		{"Arsenal (Gunner)", "Arsenal", "Gunner"},
		{"Alpha (Beta) (Gamma)", "Alpha (Beta)", "Gamma"},
		{"NoPattern", "NoPattern", "NoPattern"},
		{"(OnlyNick)", "(OnlyNick)", "(OnlyNick)"},
		{"Team ()", "Team ()", "Team ()"},
		{"  Spaced  (nick)  ", "Spaced", "nick"},
	}
	for _, tc := range cases {
		teamTitle, nickname := SplitTeamPlayerTitle(tc.in)
		if teamTitle != tc.team || nickname != tc.nickname {
			t.Fatalf("SplitTeamPlayerTitle(%q) = %q, %q", tc.in, teamTitle, nickname)
		}
	}
}
