package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/arenahub/statsync/internal/domain/game"
	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/infrastructure/repository/memory"
	"github.com/arenahub/statsync/internal/platform/logging"
)

func splitSport() sport.Sport {
	sp := testSport(sport.ClassTeamPlayer)
	sp.UsesMeets = true
	sp.SplitBrackets = true
	return sp
}

func seedSplitPair(t *testing.T, tournaments *memory.TournamentRepository, games *memory.GameRepository, day time.Time) (baseID, throwID, baseGameID, meetID int64) {
	t.Helper()
	ctx := context.Background()

	baseID, err := tournaments.Create(ctx, tournament.Tournament{
		SportID:    1,
		CategoryID: 1,
		Type:       tournament.TypeBase,
		NameEN:     "Morning bracket",
		StartAt:    day,
	})
	if err != nil {
		t.Fatalf("seed base: %v", err)
	}
	throwID, err = tournaments.Create(ctx, tournament.Tournament{
		SportID:    1,
		CategoryID: 1,
		Type:       tournament.TypeMeets,
		NameEN:     "Evening throw-in",
		StartAt:    day.Add(8 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed throw-in: %v", err)
	}

	baseGameID, err = games.Create(ctx, game.Game{
		TournamentID: baseID,
		SideOneID:    10,
		SideTwoID:    11,
		StartAt:      day,
	})
	if err != nil {
		t.Fatalf("seed base game: %v", err)
	}
	// Throw-in side order is reversed on purpose; the link must not care.
	meetID, err = games.CreateMeet(ctx, game.Meet{
		TournamentID: throwID,
		SideOneID:    21,
		SideTwoID:    20,
	})
	if err != nil {
		t.Fatalf("seed meet: %v", err)
	}
	return baseID, throwID, baseGameID, meetID
}

func TestJoinSplitTournaments_DisabledSport(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	seedSplitPair(t, tournaments, games, day)

	sp := splitSport()
	sp.SplitBrackets = false
	j := NewJoinerService(tournaments, games, map[int64]int64{20: 10, 21: 11}, logging.NewNop())

	joined, err := j.JoinSplitTournaments(context.Background(), sp, day.Add(-time.Hour))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined != 0 {
		t.Fatalf("non-split sport joined %d pairs", joined)
	}
}

func TestJoinSplitTournaments_PairsAndLinksMeets(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	baseID, throwID, baseGameID, meetID := seedSplitPair(t, tournaments, games, day)

	j := NewJoinerService(tournaments, games, map[int64]int64{20: 10, 21: 11}, logging.NewNop())

	joined, err := j.JoinSplitTournaments(context.Background(), splitSport(), day.Add(-time.Hour))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined != 1 {
		t.Fatalf("joined %d pairs, want 1", joined)
	}

	base, _, _ := tournaments.GetByID(context.Background(), baseID)
	if base.NextPartID == nil || *base.NextPartID != throwID {
		t.Fatalf("base next part = %v, want %d", base.NextPartID, throwID)
	}
	m, ok := games.Meet(meetID)
	if !ok {
		t.Fatalf("meet %d missing", meetID)
	}
	if m.MainGameID == nil || *m.MainGameID != baseGameID {
		t.Fatalf("meet main game = %v, want %d", m.MainGameID, baseGameID)
	}
}

func TestJoinSplitTournaments_JoinedBaseNotRevisited(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	seedSplitPair(t, tournaments, games, day)

	j := NewJoinerService(tournaments, games, map[int64]int64{20: 10, 21: 11}, logging.NewNop())

	if joined, err := j.JoinSplitTournaments(context.Background(), splitSport(), day.Add(-time.Hour)); err != nil || joined != 1 {
		t.Fatalf("first run: joined=%d err=%v", joined, err)
	}
	joined, err := j.JoinSplitTournaments(context.Background(), splitSport(), day.Add(-time.Hour))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if joined != 0 {
		t.Fatalf("already joined base was re-joined %d times", joined)
	}
}

func TestJoinSplitTournaments_NoCounterpartYet(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	baseID, err := tournaments.Create(context.Background(), tournament.Tournament{
		SportID:    1,
		CategoryID: 1,
		Type:       tournament.TypeBase,
		NameEN:     "Morning bracket",
		StartAt:    day,
	})
	if err != nil {
		t.Fatalf("seed base: %v", err)
	}

	j := NewJoinerService(tournaments, games, nil, logging.NewNop())

	joined, err := j.JoinSplitTournaments(context.Background(), splitSport(), day.Add(-time.Hour))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined != 0 {
		t.Fatalf("joined %d pairs without a counterpart", joined)
	}
	base, _, _ := tournaments.GetByID(context.Background(), baseID)
	if base.NextPartID != nil {
		t.Fatalf("lonely base must stay unjoined for the next run")
	}
}

func TestJoinSplitTournaments_CategoryMismatch(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	baseID, _, _, _ := seedSplitPair(t, tournaments, games, day)

	// Move the throw-in to another category; the calendar date still matches.
	other, err := tournaments.Create(context.Background(), tournament.Tournament{
		SportID:    1,
		CategoryID: 2,
		Type:       tournament.TypeMeets,
		NameEN:     "Other league",
		StartAt:    day.Add(9 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed other: %v", err)
	}

	j := NewJoinerService(tournaments, games, map[int64]int64{20: 10, 21: 11}, logging.NewNop())
	if _, err := j.JoinSplitTournaments(context.Background(), splitSport(), day.Add(-time.Hour)); err != nil {
		t.Fatalf("join: %v", err)
	}

	base, _, _ := tournaments.GetByID(context.Background(), baseID)
	if base.NextPartID != nil && *base.NextPartID == other {
		t.Fatalf("base joined across categories")
	}
}

func TestJoinSplitTournaments_UnmappedMeetSideSkipsLink(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	baseID, throwID, _, meetID := seedSplitPair(t, tournaments, games, day)

	// Side 21 is missing from the mapping.
	j := NewJoinerService(tournaments, games, map[int64]int64{20: 10}, logging.NewNop())

	joined, err := j.JoinSplitTournaments(context.Background(), splitSport(), day.Add(-time.Hour))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined != 1 {
		t.Fatalf("pair join must still count, got %d", joined)
	}
	base, _, _ := tournaments.GetByID(context.Background(), baseID)
	if base.NextPartID == nil || *base.NextPartID != throwID {
		t.Fatalf("tournaments not paired")
	}
	m, _ := games.Meet(meetID)
	if m.MainGameID != nil {
		t.Fatalf("unmapped meet must stay unlinked, got game %d", *m.MainGameID)
	}
}

func TestJoinSplitTournaments_LinkedMeetLeftAlone(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	_, _, _, meetID := seedSplitPair(t, tournaments, games, day)

	if err := games.SetMeetMainGame(context.Background(), meetID, 777); err != nil {
		t.Fatalf("pre-link meet: %v", err)
	}

	j := NewJoinerService(tournaments, games, map[int64]int64{20: 10, 21: 11}, logging.NewNop())
	if _, err := j.JoinSplitTournaments(context.Background(), splitSport(), day.Add(-time.Hour)); err != nil {
		t.Fatalf("join: %v", err)
	}

	m, _ := games.Meet(meetID)
	if m.MainGameID == nil || *m.MainGameID != 777 {
		t.Fatalf("pre-linked meet was relinked: %v", m.MainGameID)
	}
}
