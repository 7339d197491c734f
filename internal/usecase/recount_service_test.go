package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/infrastructure/repository/memory"
	"github.com/arenahub/statsync/internal/platform/logging"
)

func TestRecountSides_CountsLiveJoinsOnly(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	ctx := context.Background()

	id, err := tournaments.Create(ctx, tournament.Tournament{
		SportID:    1,
		CategoryID: 1,
		NameEN:     "Cup",
		StartAt:    time.Now(),
		SidesCount: 99,
	})
	if err != nil {
		t.Fatalf("seed tournament: %v", err)
	}
	deleted := time.Now()
	joins := []tournament.Side{
		{TournamentID: id, SideID: 1},
		{TournamentID: id, SideID: 2},
		{TournamentID: id, SideID: 3, DeletedAt: &deleted},
	}
	for _, j := range joins {
		if err := tournaments.CreateSide(ctx, j); err != nil {
			t.Fatalf("seed join: %v", err)
		}
	}

	s := NewRecountService(tournaments, 2, logging.NewNop())
	if err := s.RecountSides(ctx, []int64{id}); err != nil {
		t.Fatalf("recount: %v", err)
	}

	stored, _, _ := tournaments.GetByID(ctx, id)
	if stored.SidesCount != 2 {
		t.Fatalf("sides count %d, want 2", stored.SidesCount)
	}
}

func TestRecountSides_EmptyListIsNoop(t *testing.T) {
	s := NewRecountService(memory.NewTournamentRepository(), 0, logging.NewNop())
	if err := s.RecountSides(context.Background(), nil); err != nil {
		t.Fatalf("recount: %v", err)
	}
}

func TestRecountSides_ManyTournaments(t *testing.T) {
	tournaments := memory.NewTournamentRepository()
	ctx := context.Background()

	ids := make([]int64, 0, 20)
	for i := 0; i < 20; i++ {
		id, err := tournaments.Create(ctx, tournament.Tournament{
			SportID:    1,
			CategoryID: 1,
			NameEN:     fmt.Sprintf("Cup %d", i),
			StartAt:    time.Now(),
		})
		if err != nil {
			t.Fatalf("seed tournament %d: %v", i, err)
		}
		for sideID := int64(1); sideID <= int64(i%3)+1; sideID++ {
			if err := tournaments.CreateSide(ctx, tournament.Side{TournamentID: id, SideID: sideID}); err != nil {
				t.Fatalf("seed join: %v", err)
			}
		}
		ids = append(ids, id)
	}

	s := NewRecountService(tournaments, 4, logging.NewNop())
	if err := s.RecountSides(ctx, ids); err != nil {
		t.Fatalf("recount: %v", err)
	}

	for i, id := range ids {
		stored, _, _ := tournaments.GetByID(ctx, id)
		want := i%3 + 1
		if stored.SidesCount != want {
			t.Fatalf("tournament %d sides count %d, want %d", id, stored.SidesCount, want)
		}
	}
}
