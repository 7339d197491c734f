package memory

import (
	"context"
	"sync"

	"github.com/arenahub/statsync/internal/domain/game"
)

type GameRepository struct {
	mu         sync.RWMutex
	nextID     int64
	nextMeetID int64
	byID       map[int64]game.Game
	sideRows   map[int64][]game.SideRow
	results    map[int64]game.Result
	meets      map[int64]game.Meet
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		byID:     make(map[int64]game.Game),
		sideRows: make(map[int64][]game.SideRow),
		results:  make(map[int64]game.Result),
		meets:    make(map[int64]game.Meet),
	}
}

func (r *GameRepository) GetByID(_ context.Context, id int64) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	return g, ok, nil
}

func (r *GameRepository) GetBySLID(_ context.Context, sportID, slID int64) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Sport scoping rides on the caller; slid is unique per feed.
	_ = sportID
	for _, g := range r.byID {
		if g.SLID != nil && *g.SLID == slID {
			return g, true, nil
		}
	}
	return game.Game{}, false, nil
}

func (r *GameRepository) Create(_ context.Context, g game.Game) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	g.ID = r.nextID
	r.byID[g.ID] = g
	r.results[g.ID] = game.Result{GameID: g.ID}
	r.sideRows[g.ID] = []game.SideRow{
		{GameID: g.ID, SideID: g.SideOneID, Slot: 1},
		{GameID: g.ID, SideID: g.SideTwoID, Slot: 2},
	}
	return g.ID, nil
}

func (r *GameRepository) ApplyUpdate(_ context.Context, id int64, upd game.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return nil
	}
	if upd.StartAt != nil {
		g.StartAt = *upd.StartAt
	}
	if upd.State != nil {
		g.State = *upd.State
	}
	r.byID[id] = g
	return nil
}

func (r *GameRepository) ListSides(_ context.Context, gameID int64) ([]game.SideRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.SideRow, len(r.sideRows[gameID]))
	copy(out, r.sideRows[gameID])
	return out, nil
}

func (r *GameRepository) ReplaceSide(_ context.Context, gameID int64, slot int, newSideID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.sideRows[gameID]
	for i := range rows {
		if rows[i].Slot == slot {
			rows[i].SideID = newSideID
		}
	}
	g, ok := r.byID[gameID]
	if ok {
		switch slot {
		case 1:
			g.SideOneID = newSideID
		case 2:
			g.SideTwoID = newSideID
		}
		r.byID[gameID] = g
	}
	return nil
}

func (r *GameRepository) CountBySide(_ context.Context, tournamentID, sideID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, g := range r.byID {
		if g.TournamentID != tournamentID {
			continue
		}
		if g.SideOneID == sideID || g.SideTwoID == sideID {
			count++
		}
	}
	return count, nil
}

func (r *GameRepository) ListByTournament(_ context.Context, tournamentID int64) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.byID {
		if g.TournamentID == tournamentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *GameRepository) CreateMeet(_ context.Context, m game.Meet) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextMeetID++
	m.ID = r.nextMeetID
	r.meets[m.ID] = m
	return m.ID, nil
}

func (r *GameRepository) ListMeetsByTournament(_ context.Context, tournamentID int64) ([]game.Meet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Meet, 0)
	for _, m := range r.meets {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *GameRepository) SetMeetMainGame(_ context.Context, meetID, gameID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meets[meetID]
	if !ok {
		return nil
	}
	id := gameID
	m.MainGameID = &id
	r.meets[meetID] = m
	return nil
}

// Meet exposes a stored meet for test assertions.
func (r *GameRepository) Meet(id int64) (game.Meet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meets[id]
	return m, ok
}
