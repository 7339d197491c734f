package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arenahub/statsync/internal/domain/side"
)

type ratingPoint struct {
	at     time.Time
	rating int
}

type SideRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]side.Side
	ratings map[int64][]ratingPoint
}

func NewSideRepository(sides ...side.Side) *SideRepository {
	r := &SideRepository{
		byID:    make(map[int64]side.Side),
		ratings: make(map[int64][]ratingPoint),
	}
	for _, s := range sides {
		r.nextID++
		s.ID = r.nextID
		r.byID[s.ID] = s
	}
	return r
}

func (r *SideRepository) GetByID(_ context.Context, id int64) (side.Side, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	return s, ok, nil
}

func (r *SideRepository) GetBySLID(_ context.Context, sportID, slID int64) (side.Side, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.SportID == sportID && s.SLID != nil && *s.SLID == slID {
			return s, true, nil
		}
	}
	return side.Side{}, false, nil
}

func (r *SideRepository) GetByComposition(_ context.Context, sportID int64, teamID, playerID *int64) (side.Side, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.SportID != sportID {
			continue
		}
		if int64PtrEqual(s.TeamID, teamID) && int64PtrEqual(s.PlayerID, playerID) {
			return s, true, nil
		}
	}
	return side.Side{}, false, nil
}

func (r *SideRepository) Create(_ context.Context, s side.Side) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s.ID = r.nextID
	r.byID[s.ID] = s
	return s.ID, nil
}

func (r *SideRepository) LatestRatingBefore(_ context.Context, sideID int64, before time.Time) (*int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *ratingPoint
	for i := range r.ratings[sideID] {
		point := r.ratings[sideID][i]
		if !point.at.Before(before) {
			continue
		}
		if best == nil || point.at.After(best.at) {
			best = &point
		}
	}
	if best == nil {
		return nil, nil
	}
	rating := best.rating
	return &rating, nil
}

// AddRating seeds rating history for tests.
func (r *SideRepository) AddRating(sideID int64, at time.Time, rating int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ratings[sideID] = append(r.ratings[sideID], ratingPoint{at: at, rating: rating})
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
