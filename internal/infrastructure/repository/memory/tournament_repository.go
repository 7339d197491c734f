package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arenahub/statsync/internal/domain/tournament"
)

type TournamentRepository struct {
	mu         sync.RWMutex
	nextID     int64
	nextCatID  int64
	byID       map[int64]tournament.Tournament
	categories map[string]int64
	sides      map[int64][]tournament.Side
	stageSides []tournament.StageSide
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{
		byID:       make(map[int64]tournament.Tournament),
		categories: make(map[string]int64),
		sides:      make(map[int64][]tournament.Side),
	}
}

func (r *TournamentRepository) GetByID(_ context.Context, id int64) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	return t, ok, nil
}

func (r *TournamentRepository) GetBySLID(_ context.Context, sportID, slID int64) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.byID {
		if t.SportID == sportID && t.SLID != nil && *t.SLID == slID {
			return t, true, nil
		}
	}
	return tournament.Tournament{}, false, nil
}

func (r *TournamentRepository) GetByOldID(_ context.Context, sportID, oldID int64) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.byID {
		if t.SportID == sportID && t.OldID != nil && *t.OldID == oldID {
			return t, true, nil
		}
	}
	return tournament.Tournament{}, false, nil
}

func (r *TournamentRepository) Create(_ context.Context, t tournament.Tournament) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.byID[t.ID] = t
	return t.ID, nil
}

func (r *TournamentRepository) ApplyUpdate(_ context.Context, id int64, upd tournament.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return nil
	}
	if upd.CategoryID != nil {
		t.CategoryID = *upd.CategoryID
	}
	if upd.NameRU != nil {
		t.NameRU = *upd.NameRU
	}
	if upd.NameEN != nil {
		t.NameEN = *upd.NameEN
	}
	if upd.StartAt != nil {
		t.StartAt = *upd.StartAt
	}
	if upd.EndAt != nil {
		t.EndAt = upd.EndAt
	}
	if upd.State != nil {
		t.State = *upd.State
	}
	r.byID[id] = t
	return nil
}

func (r *TournamentRepository) ResolveCategory(_ context.Context, key tournament.CategoryKey) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Pointer fields make CategoryKey unsuitable as a map key directly, so
	// the lookup goes through a dereferenced string form.
	k := categoryMapKey(key)
	if id, ok := r.categories[k]; ok {
		return id, nil
	}
	r.nextCatID++
	r.categories[k] = r.nextCatID
	return r.nextCatID, nil
}

func categoryMapKey(key tournament.CategoryKey) string {
	parts := []string{
		strconv.FormatInt(key.SportID, 10),
		int64KeyPart(key.EventID),
		int64KeyPart(key.LeagueID),
		key.Gender,
		key.Division,
	}
	return strings.Join(parts, ":")
}

func int64KeyPart(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func (r *TournamentRepository) ListSides(_ context.Context, tournamentID int64) ([]tournament.Side, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Side, len(r.sides[tournamentID]))
	copy(out, r.sides[tournamentID])
	return out, nil
}

func (r *TournamentRepository) CreateSide(_ context.Context, s tournament.Side) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sides[s.TournamentID] = append(r.sides[s.TournamentID], s)
	return nil
}

func (r *TournamentRepository) SoftDeleteSide(_ context.Context, tournamentID, sideID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.sides[tournamentID]
	for i := range rows {
		if rows[i].SideID == sideID && rows[i].DeletedAt == nil {
			deletedAt := at
			rows[i].DeletedAt = &deletedAt
		}
	}
	return nil
}

func (r *TournamentRepository) CountLiveSides(_ context.Context, tournamentID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, row := range r.sides[tournamentID] {
		if row.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *TournamentRepository) SetSidesCount(_ context.Context, tournamentID int64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[tournamentID]
	if !ok {
		return nil
	}
	t.SidesCount = count
	r.byID[tournamentID] = t
	return nil
}

func (r *TournamentRepository) CreateStageSides(_ context.Context, rows []tournament.StageSide) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stageSides = append(r.stageSides, rows...)
	return nil
}

func (r *TournamentRepository) ListUnjoinedBase(_ context.Context, sportID int64, createdSince time.Time) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0)
	for _, t := range r.byID {
		if t.SportID != sportID || t.Type != tournament.TypeBase {
			continue
		}
		if t.NextPartID != nil || t.CreatedAt.Before(createdSince) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *TournamentRepository) FindThrowIn(_ context.Context, sportID, categoryID int64, date time.Time) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	year, month, day := date.Date()
	for _, t := range r.byID {
		if t.SportID != sportID || t.CategoryID != categoryID || t.Type != tournament.TypeMeets {
			continue
		}
		ty, tm, td := t.StartAt.Date()
		if ty == year && tm == month && td == day {
			return t, true, nil
		}
	}
	return tournament.Tournament{}, false, nil
}

func (r *TournamentRepository) SetNextPart(_ context.Context, tournamentID, nextPartID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[tournamentID]
	if !ok {
		return nil
	}
	next := nextPartID
	t.NextPartID = &next
	r.byID[tournamentID] = t
	return nil
}

// StageSides exposes stored stage-side rows for test assertions.
func (r *TournamentRepository) StageSides() []tournament.StageSide {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.StageSide, len(r.stageSides))
	copy(out, r.stageSides)
	return out
}
