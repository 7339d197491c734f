package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/arenahub/statsync/internal/domain/sport"
	"github.com/arenahub/statsync/internal/infrastructure/repository/memory"
	"github.com/arenahub/statsync/internal/platform/logging"
)

type stubProvider struct {
	pages  []ExternalTournamentState
	games  []ExternalGameUpdate
	rounds []ExternalRoundUpdate
}

func (p *stubProvider) FetchTournamentPage(_ context.Context, _ int64, page int) ([]ExternalTournamentState, bool, error) {
	if page > 0 {
		return nil, false, nil
	}
	return p.pages, false, nil
}

func (p *stubProvider) FetchModifiedGames(_ context.Context, _ int64, _ time.Time) ([]ExternalGameUpdate, error) {
	return p.games, nil
}

func (p *stubProvider) FetchModifiedRounds(_ context.Context, _ int64, _ time.Time) ([]ExternalRoundUpdate, error) {
	return p.rounds, nil
}

type checkerFixture struct {
	checker     *UpdateCheckerService
	provider    *stubProvider
	sides       *memory.SideRepository
	tournaments *memory.TournamentRepository
	games       *memory.GameRepository
	assembler   *AssemblerService
}

func newCheckerFixture() *checkerFixture {
	sides := memory.NewSideRepository()
	tournaments := memory.NewTournamentRepository()
	games := memory.NewGameRepository()
	resolver := newTestResolver(memory.NewTeamRepository(), memory.NewPlayerRepository(), memory.NewStageRepository(), tournaments)
	builder := NewSideBuilderService(resolver, sides, logging.NewNop())
	provider := &stubProvider{}
	recount := NewRecountService(tournaments, 2, logging.NewNop())
	return &checkerFixture{
		checker:     NewUpdateCheckerService(provider, resolver, builder, sides, tournaments, games, recount, logging.NewNop()),
		provider:    provider,
		sides:       sides,
		tournaments: tournaments,
		games:       games,
		assembler:   NewAssemblerService(resolver, builder, sides, tournaments, games, logging.NewNop()),
	}
}

func (f *checkerFixture) importBase(t *testing.T, sp sport.Sport) int64 {
	t.Helper()
	id, created, err := f.assembler.Assemble(context.Background(), sp, baseState(sp))
	if err != nil || !created {
		t.Fatalf("seed import: id=%d created=%v err=%v", id, created, err)
	}
	return id
}

func TestCheckUpdates_UnchangedStateWritesNothing(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	id := f.importBase(t, sp)
	before, _, _ := f.tournaments.GetByID(context.Background(), id)

	f.provider.games = []ExternalGameUpdate{
		{
			GameSLID:       600,
			TournamentSLID: 500,
			SideOne:        &ExternalSide{SLID: int64Ptr(1), TitleRU: "Иванов Иван"},
			SideTwo:        &ExternalSide{SLID: int64Ptr(2), TitleRU: "Петров Пётр"},
			UpdatedAt:      time.Now(),
		},
	}

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("check updates: %v", err)
	}
	if len(touched) != 0 {
		t.Fatalf("identical state must not touch anything, got %v", touched)
	}
	after, _, _ := f.tournaments.GetByID(context.Background(), id)
	if after.SidesCount != before.SidesCount {
		t.Fatalf("sides count drifted from %d to %d", before.SidesCount, after.SidesCount)
	}
}

func TestCheckUpdates_UnknownGameIsSkipped(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	f.importBase(t, sp)

	f.provider.games = []ExternalGameUpdate{
		{GameSLID: 999, TournamentSLID: 500, SideOne: &ExternalSide{SLID: int64Ptr(7), TitleRU: "Новиков Олег"}},
	}

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("check updates: %v", err)
	}
	if len(touched) != 0 {
		t.Fatalf("unknown game must be a no-op, got %v", touched)
	}
}

func TestCheckUpdates_SubstitutionReplacesSideAndPropagates(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	id := f.importBase(t, sp)

	local, ok, _ := f.games.GetBySLID(context.Background(), sp.ID, 600)
	if !ok {
		t.Fatalf("seed game missing")
	}
	oldSideID := local.SideOneID

	f.provider.games = []ExternalGameUpdate{
		{
			GameSLID:       600,
			TournamentSLID: 500,
			SideOne:        &ExternalSide{SLID: int64Ptr(9), TitleRU: "Сидоров Сидор"},
			UpdatedAt:      time.Now(),
		},
	}

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("check updates: %v", err)
	}
	if _, ok := touched[id]; !ok {
		t.Fatalf("substitution must touch tournament %d, got %v", id, touched)
	}

	updated, _, _ := f.games.GetBySLID(context.Background(), sp.ID, 600)
	if updated.SideOneID == oldSideID {
		t.Fatalf("game still references replaced side %d", oldSideID)
	}
	newSide, ok, _ := f.sides.GetBySLID(context.Background(), sp.ID, 9)
	if !ok || updated.SideOneID != newSide.ID {
		t.Fatalf("slot not repointed to substituted side")
	}

	var oldLive, newLive bool
	joins, _ := f.tournaments.ListSides(context.Background(), id)
	for _, j := range joins {
		switch j.SideID {
		case oldSideID:
			oldLive = j.DeletedAt == nil
		case newSide.ID:
			newLive = j.DeletedAt == nil
		}
	}
	if oldLive {
		t.Fatalf("unreferenced old side must be soft-deleted")
	}
	if !newLive {
		t.Fatalf("substituted side needs a live join row")
	}

	after, _, _ := f.tournaments.GetByID(context.Background(), id)
	if after.SidesCount != 2 {
		t.Fatalf("recounted sides = %d, want 2", after.SidesCount)
	}
}

func TestCheckUpdates_SubstitutionIsIdempotent(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	id := f.importBase(t, sp)

	f.provider.games = []ExternalGameUpdate{
		{
			GameSLID:       600,
			TournamentSLID: 500,
			SideOne:        &ExternalSide{SLID: int64Ptr(9), TitleRU: "Сидоров Сидор"},
			UpdatedAt:      time.Now(),
		},
	}

	if _, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	countAfterFirst := len(mustListSides(t, f, id))

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(touched) != 0 {
		t.Fatalf("replayed window must write nothing, got %v", touched)
	}
	if got := len(mustListSides(t, f, id)); got != countAfterFirst {
		t.Fatalf("replay grew join rows from %d to %d", countAfterFirst, got)
	}
}

func mustListSides(t *testing.T, f *checkerFixture, tournamentID int64) []int64 {
	t.Helper()
	joins, err := f.tournaments.ListSides(context.Background(), tournamentID)
	if err != nil {
		t.Fatalf("list sides: %v", err)
	}
	out := make([]int64, 0, len(joins))
	for _, j := range joins {
		out = append(out, j.SideID)
	}
	return out
}

func TestCheckUpdates_PlaceholderNeverSubstitutes(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	f.importBase(t, sp)

	f.provider.games = []ExternalGameUpdate{
		{
			GameSLID:       600,
			TournamentSLID: 500,
			SideOne:        &ExternalSide{SLID: int64Ptr(9), TitleEN: "TBA"},
			UpdatedAt:      time.Now(),
		},
	}

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("check updates: %v", err)
	}
	if len(touched) != 0 {
		t.Fatalf("placeholder descriptor must not substitute, got %v", touched)
	}
}

func TestCheckUpdates_TBAJoinSoftDeletedUnlessKeptAlive(t *testing.T) {
	run := func(t *testing.T, keepAlive bool) bool {
		f := newCheckerFixture()
		sp := testSport(sport.ClassIndividual)
		sp.KeepTBAAlive = keepAlive
		id := f.importBase(t, sp)

		// Marked TBA upstream while the titles still carry the old name.
		f.provider.games = []ExternalGameUpdate{
			{
				GameSLID:       600,
				TournamentSLID: 500,
				SideOne:        &ExternalSide{SLID: int64Ptr(9), TitleRU: "Снявшийся игрок", IsTBA: true},
				UpdatedAt:      time.Now(),
			},
		}

		if _, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour)); err != nil {
			t.Fatalf("check updates: %v", err)
		}

		updated, _, _ := f.games.GetBySLID(context.Background(), sp.ID, 600)
		joins, _ := f.tournaments.ListSides(context.Background(), id)
		for _, j := range joins {
			if j.SideID == updated.SideOneID {
				return j.DeletedAt == nil
			}
		}
		t.Fatalf("substituted side has no join row")
		return false
	}

	if live := run(t, false); live {
		t.Fatalf("fresh placeholder join must be soft-deleted by default")
	}
	if live := run(t, true); !live {
		t.Fatalf("keep-alive sports must leave the placeholder join live")
	}
}

func TestCheckUpdates_Reschedule(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	id := f.importBase(t, sp)

	newStart := time.Now().Add(6 * time.Hour).Truncate(time.Second)
	f.provider.games = []ExternalGameUpdate{
		{GameSLID: 600, TournamentSLID: 500, StartAt: newStart, UpdatedAt: time.Now()},
	}

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("check updates: %v", err)
	}
	if _, ok := touched[id]; !ok {
		t.Fatalf("reschedule must touch tournament %d", id)
	}
	updated, _, _ := f.games.GetBySLID(context.Background(), sp.ID, 600)
	if !updated.StartAt.Equal(newStart) {
		t.Fatalf("start not moved: %v", updated.StartAt)
	}
}

func TestCheckUpdates_RoundMetadata(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	id := f.importBase(t, sp)
	before, _, _ := f.tournaments.GetByID(context.Background(), id)

	newStart := before.StartAt.Add(2 * time.Hour)
	f.provider.rounds = []ExternalRoundUpdate{
		{
			TournamentSLID: 500,
			Category:       ExternalCategory{EventID: int64Ptr(9), Gender: "male"},
			NameRU:         before.NameRU,
			NameEN:         "Cup Renamed",
			StartAt:        newStart,
			UpdatedAt:      time.Now(),
		},
	}

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("check updates: %v", err)
	}
	if _, ok := touched[id]; !ok {
		t.Fatalf("metadata change must touch tournament %d", id)
	}
	after, _, _ := f.tournaments.GetByID(context.Background(), id)
	if after.NameEN != "Cup Renamed" {
		t.Fatalf("name not applied: %q", after.NameEN)
	}
	if !after.StartAt.Equal(newStart) {
		t.Fatalf("start not applied: %v", after.StartAt)
	}
	if after.NameRU != before.NameRU {
		t.Fatalf("unchanged column was rewritten: %q", after.NameRU)
	}

	// Replaying the same metadata is a no-op.
	touched, err = f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(touched) != 0 {
		t.Fatalf("replayed metadata must write nothing, got %v", touched)
	}
}

func TestCheckUpdates_UnknownRoundIsSkipped(t *testing.T) {
	f := newCheckerFixture()
	sp := testSport(sport.ClassIndividual)
	f.importBase(t, sp)

	f.provider.rounds = []ExternalRoundUpdate{
		{TournamentSLID: 999, NameEN: "Ghost", UpdatedAt: time.Now()},
	}

	touched, err := f.checker.CheckUpdates(context.Background(), sp, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("check updates: %v", err)
	}
	if len(touched) != 0 {
		t.Fatalf("unknown round must be a no-op, got %v", touched)
	}
}
