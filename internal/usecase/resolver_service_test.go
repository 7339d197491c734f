package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arenahub/statsync/internal/domain/player"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/team"
	"github.com/arenahub/statsync/internal/infrastructure/repository/memory"
	"github.com/arenahub/statsync/internal/platform/logging"
)

func int64Ptr(v int64) *int64 { return &v }

func testSport(class sport.Class) sport.Sport {
	return sport.Sport{ID: 1, Code: "test-sport", Class: class}
}

func newTestResolver(
	teams *memory.TeamRepository,
	players *memory.PlayerRepository,
	stages *memory.StageRepository,
	tournaments *memory.TournamentRepository,
) *ResolverService {
	return NewResolverService(teams, players, stages, tournaments, logging.NewNop())
}

func TestResolveTeam_Idempotent(t *testing.T) {
	teams := memory.NewTeamRepository()
	r := newTestResolver(teams, memory.NewPlayerRepository(), memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassTeam)

	ref := TeamRef{SLID: int64Ptr(77), NameRU: "Спартак", NameEN: "Spartak"}
	first, err := r.ResolveTeam(context.Background(), sp, ref)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.ResolveTeam(context.Background(), sp, ref)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected same team id, got %d and %d", first, second)
	}
}

func TestResolveTeam_LookupOrder(t *testing.T) {
	teams := memory.NewTeamRepository(
		team.Team{SportID: 1, SLID: int64Ptr(10), NameRU: "Альфа"},
		team.Team{SportID: 1, OldID: int64Ptr(20), NameRU: "Бета"},
		team.Team{SportID: 1, NameRU: "Гамма", NameEN: "Gamma"},
	)
	r := newTestResolver(teams, memory.NewPlayerRepository(), memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassTeam)

	bySL, err := r.ResolveTeam(context.Background(), sp, TeamRef{SLID: int64Ptr(10), NameRU: "Альфа"})
	if err != nil {
		t.Fatalf("resolve by sl_id: %v", err)
	}
	if bySL != 1 {
		t.Fatalf("sl_id lookup returned %d, want 1", bySL)
	}

	byOld, err := r.ResolveTeam(context.Background(), sp, TeamRef{OldID: int64Ptr(20), NameRU: "Бета"})
	if err != nil {
		t.Fatalf("resolve by old_id: %v", err)
	}
	if byOld != 2 {
		t.Fatalf("old_id lookup returned %d, want 2", byOld)
	}

	byName, err := r.ResolveTeam(context.Background(), sp, TeamRef{NameRU: "Гамма"})
	if err != nil {
		t.Fatalf("resolve by name: %v", err)
	}
	if byName != 3 {
		t.Fatalf("name lookup returned %d, want 3", byName)
	}
}

func TestResolveTeam_RenamesOnKeyedHit(t *testing.T) {
	teams := memory.NewTeamRepository(
		team.Team{SportID: 1, SLID: int64Ptr(10), NameRU: "Старое имя", NameEN: "Old Name"},
	)
	r := newTestResolver(teams, memory.NewPlayerRepository(), memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassTeam)

	id, err := r.ResolveTeam(context.Background(), sp, TeamRef{SLID: int64Ptr(10), NameRU: "Новое имя", NameEN: "New Name"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, ok := teams.Get(id)
	if !ok {
		t.Fatalf("team %d not found after resolve", id)
	}
	if stored.NameRU != "Новое имя" || stored.NameEN != "New Name" {
		t.Fatalf("names not refreshed: %q / %q", stored.NameRU, stored.NameEN)
	}
}

func TestResolveTeam_NameMatchDoesNotRename(t *testing.T) {
	teams := memory.NewTeamRepository(
		team.Team{SportID: 1, NameRU: "Динамо", NameEN: "Dynamo"},
	)
	r := newTestResolver(teams, memory.NewPlayerRepository(), memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassTeam)

	id, err := r.ResolveTeam(context.Background(), sp, TeamRef{NameRU: "Динамо", NameEN: "Dinamo"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, _ := teams.Get(id)
	if stored.NameEN != "Dynamo" {
		t.Fatalf("unkeyed hit must not rename, got %q", stored.NameEN)
	}
}

func TestResolveTeam_EmptyName(t *testing.T) {
	r := newTestResolver(memory.NewTeamRepository(), memory.NewPlayerRepository(), memory.NewStageRepository(), memory.NewTournamentRepository())

	_, err := r.ResolveTeam(context.Background(), testSport(sport.ClassTeam), TeamRef{NameRU: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestResolvePlayer_Idempotent(t *testing.T) {
	players := memory.NewPlayerRepository()
	r := newTestResolver(memory.NewTeamRepository(), players, memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassIndividual)

	ref := PlayerRef{SLID: int64Ptr(5), Parts: player.NameParts{SurnameRU: "Иванов", FirstNameRU: "Иван"}}
	first, err := r.ResolvePlayer(context.Background(), sp, ref)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.ResolvePlayer(context.Background(), sp, ref)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected same player id, got %d and %d", first, second)
	}
}

func TestResolvePlayer_RenameOnDrift(t *testing.T) {
	players := memory.NewPlayerRepository(
		player.Player{SportID: 1, SLID: int64Ptr(5), SurnameRU: "Иванов", FirstNameRU: "Иван"},
	)
	r := newTestResolver(memory.NewTeamRepository(), players, memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassIndividual)

	id, err := r.ResolvePlayer(context.Background(), sp, PlayerRef{
		SLID:  int64Ptr(5),
		Parts: player.NameParts{SurnameRU: "Иванов", FirstNameRU: "Пётр"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, ok := players.Get(id)
	if !ok {
		t.Fatalf("player %d not found", id)
	}
	if stored.FirstNameRU != "Пётр" {
		t.Fatalf("rename not applied, first name %q", stored.FirstNameRU)
	}
}

func TestResolvePlayer_NicknameLookup(t *testing.T) {
	players := memory.NewPlayerRepository(
		player.Player{SportID: 1, Nickname: "foxer"},
	)
	r := newTestResolver(memory.NewTeamRepository(), players, memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassTeamPlayer)

	id, err := r.ResolvePlayer(context.Background(), sp, PlayerRef{Nickname: "foxer"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 1 {
		t.Fatalf("nickname lookup returned %d, want 1", id)
	}
}

func TestResolvePlayer_SearchTextOnCreate(t *testing.T) {
	players := memory.NewPlayerRepository()
	r := newTestResolver(memory.NewTeamRepository(), players, memory.NewStageRepository(), memory.NewTournamentRepository())
	sp := testSport(sport.ClassIndividual)

	id, err := r.ResolvePlayer(context.Background(), sp, PlayerRef{
		Parts: player.NameParts{SurnameRU: "Smirnov", FirstNameRU: "Alex", SurnameEN: "Smirnov", FirstNameEN: "Alex"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, _ := players.Get(id)
	if stored.SearchText != "smirnov alex smirnov alex" {
		t.Fatalf("unexpected search text %q", stored.SearchText)
	}
}

func TestResolvePlayer_MissingIdentity(t *testing.T) {
	r := newTestResolver(memory.NewTeamRepository(), memory.NewPlayerRepository(), memory.NewStageRepository(), memory.NewTournamentRepository())

	_, err := r.ResolvePlayer(context.Background(), testSport(sport.ClassIndividual), PlayerRef{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestResolveStage_SharedAcrossCalls(t *testing.T) {
	stages := memory.NewStageRepository()
	r := newTestResolver(memory.NewTeamRepository(), memory.NewPlayerRepository(), stages, memory.NewTournamentRepository())
	sp := testSport(sport.ClassIndividual)

	ext := ExternalStage{SLID: int64Ptr(3), NameRU: "Полуфинал", NameEN: "Semifinal"}
	first, err := r.ResolveStage(context.Background(), sp, ext)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.ResolveStage(context.Background(), sp, ext)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("stage not shared: %d vs %d", first, second)
	}
}

func TestResolveCategory_StructuredKey(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	r := newTestResolver(memory.NewTeamRepository(), memory.NewPlayerRepository(), memory.NewStageRepository(), tournaments)
	sp := testSport(sport.ClassIndividual)

	a, err := r.ResolveCategory(context.Background(), sp, ExternalCategory{EventID: int64Ptr(1), Gender: "male"})
	if err != nil {
		t.Fatalf("resolve a: %v", err)
	}
	again, err := r.ResolveCategory(context.Background(), sp, ExternalCategory{EventID: int64Ptr(1), Gender: "male"})
	if err != nil {
		t.Fatalf("resolve a again: %v", err)
	}
	if a != again {
		t.Fatalf("identical keys resolved to %d and %d", a, again)
	}
	b, err := r.ResolveCategory(context.Background(), sp, ExternalCategory{EventID: int64Ptr(1), Gender: "female"})
	if err != nil {
		t.Fatalf("resolve b: %v", err)
	}
	if a == b {
		t.Fatalf("distinct keys must not share a category")
	}
}

func TestSplitFullName(t *testing.T) {
	cases := []struct {
		in      string
		surname string
		first   string
		patro   string
	}{
		{"", "", "", ""},
		{"Иванов", "Иванов", "", ""},
		{"Иванов Иван", "Иванов", "Иван", ""},
		{"Иванов Иван Иванович", "Иванов", "Иван", "Иванович"},
		{"  Ли   Мин  ", "Ли", "Мин", ""},
	}
	for _, tc := range cases {
		parts := SplitFullName(tc.in)
		if parts.SurnameRU != tc.surname || parts.FirstNameRU != tc.first || parts.PatronymicRU != tc.patro {
			t.Fatalf("SplitFullName(%q) = %+v", tc.in, parts)
		}
	}
}
