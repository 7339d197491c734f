package memory

import (
	"context"
	"sync"

	"github.com/arenahub/statsync/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]team.Team
}

func NewTeamRepository(teams ...team.Team) *TeamRepository {
	r := &TeamRepository{byID: make(map[int64]team.Team)}
	for _, t := range teams {
		r.nextID++
		t.ID = r.nextID
		r.byID[t.ID] = t
	}
	return r
}

func (r *TeamRepository) GetBySLID(_ context.Context, sportID, slID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.byID {
		if t.SportID == sportID && t.SLID != nil && *t.SLID == slID {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) GetByOldID(_ context.Context, sportID, oldID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.byID {
		if t.SportID == sportID && t.OldID != nil && *t.OldID == oldID {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) GetByName(_ context.Context, sportID int64, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.byID {
		if t.SportID == sportID && (t.NameRU == name || t.NameEN == name) {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	r.byID[t.ID] = t
	return t.ID, nil
}

func (r *TeamRepository) UpdateNames(_ context.Context, id int64, nameRU, nameEN string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return nil
	}
	if nameRU != "" {
		t.NameRU = nameRU
	}
	if nameEN != "" {
		t.NameEN = nameEN
	}
	r.byID[id] = t
	return nil
}

// Get exposes a stored team for test assertions.
func (r *TeamRepository) Get(id int64) (team.Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	return t, ok
}
