package memory

import (
	"context"
	"sync"

	"github.com/arenahub/statsync/internal/domain/player"
)

type PlayerRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]player.Player
}

func NewPlayerRepository(players ...player.Player) *PlayerRepository {
	r := &PlayerRepository{byID: make(map[int64]player.Player)}
	for _, p := range players {
		r.nextID++
		p.ID = r.nextID
		r.byID[p.ID] = p
	}
	return r
}

func (r *PlayerRepository) GetBySLID(_ context.Context, sportID, slID int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.SportID == sportID && p.SLID != nil && *p.SLID == slID {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) GetByOldID(_ context.Context, sportID, oldID int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.SportID == sportID && p.OldID != nil && *p.OldID == oldID {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) GetByNickname(_ context.Context, sportID int64, nickname string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.SportID == sportID && p.Nickname != "" && p.Nickname == nickname {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	r.byID[p.ID] = p
	return p.ID, nil
}

func (r *PlayerRepository) Rename(_ context.Context, id int64, parts player.NameParts) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil
	}
	p.FirstNameRU = parts.FirstNameRU
	p.SurnameRU = parts.SurnameRU
	p.PatronymicRU = parts.PatronymicRU
	p.FirstNameEN = parts.FirstNameEN
	p.SurnameEN = parts.SurnameEN
	r.byID[id] = p
	return nil
}

// Get exposes a stored player for test assertions.
func (r *PlayerRepository) Get(id int64) (player.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	return p, ok
}
