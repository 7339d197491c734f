package memory

import (
	"context"
	"sync"

	"github.com/arenahub/statsync/internal/domain/stage"
)

type StageRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]stage.Stage
}

func NewStageRepository(stages ...stage.Stage) *StageRepository {
	r := &StageRepository{byID: make(map[int64]stage.Stage)}
	for _, s := range stages {
		r.nextID++
		s.ID = r.nextID
		r.byID[s.ID] = s
	}
	return r
}

func (r *StageRepository) GetBySLID(_ context.Context, sportID, slID int64) (stage.Stage, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.SportID == sportID && s.SLID != nil && *s.SLID == slID {
			return s, true, nil
		}
	}
	return stage.Stage{}, false, nil
}

func (r *StageRepository) GetByOldID(_ context.Context, sportID, oldID int64) (stage.Stage, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.SportID == sportID && s.OldID != nil && *s.OldID == oldID {
			return s, true, nil
		}
	}
	return stage.Stage{}, false, nil
}

func (r *StageRepository) Create(_ context.Context, s stage.Stage) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s.ID = r.nextID
	r.byID[s.ID] = s
	return s.ID, nil
}
