package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/arenahub/statsync/internal/domain/tournament"
	basecache "github.com/arenahub/statsync/internal/platform/cache"
)

// TournamentRepository decorates the postgres tournament repository with a
// cache over category resolution. Category rows are append-only and their
// ids stable, so positive resolutions are safe to reuse across units; every
// other method passes straight through.
type TournamentRepository struct {
	next  tournament.Repository
	cache *basecache.Store
}

func NewTournamentRepository(next tournament.Repository, cache *basecache.Store) *TournamentRepository {
	return &TournamentRepository{next: next, cache: cache}
}

func (r *TournamentRepository) ResolveCategory(ctx context.Context, key tournament.CategoryKey) (int64, error) {
	cacheKey := categoryCacheKey(key)
	v, err := r.cache.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (any, error) {
		return r.next.ResolveCategory(ctx, key)
	})
	if err != nil {
		return 0, err
	}

	id, _ := v.(int64)
	return id, nil
}

func categoryCacheKey(key tournament.CategoryKey) string {
	parts := []string{
		"category",
		strconv.FormatInt(key.SportID, 10),
		int64PtrKey(key.EventID),
		int64PtrKey(key.LeagueID),
		key.Gender,
		key.Division,
	}
	return strings.Join(parts, ":")
}

func int64PtrKey(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (tournament.Tournament, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *TournamentRepository) GetBySLID(ctx context.Context, sportID, slID int64) (tournament.Tournament, bool, error) {
	return r.next.GetBySLID(ctx, sportID, slID)
}

func (r *TournamentRepository) GetByOldID(ctx context.Context, sportID, oldID int64) (tournament.Tournament, bool, error) {
	return r.next.GetByOldID(ctx, sportID, oldID)
}

func (r *TournamentRepository) Create(ctx context.Context, t tournament.Tournament) (int64, error) {
	return r.next.Create(ctx, t)
}

func (r *TournamentRepository) ApplyUpdate(ctx context.Context, id int64, upd tournament.Update) error {
	return r.next.ApplyUpdate(ctx, id, upd)
}

func (r *TournamentRepository) ListSides(ctx context.Context, tournamentID int64) ([]tournament.Side, error) {
	return r.next.ListSides(ctx, tournamentID)
}

func (r *TournamentRepository) CreateSide(ctx context.Context, s tournament.Side) error {
	return r.next.CreateSide(ctx, s)
}

func (r *TournamentRepository) SoftDeleteSide(ctx context.Context, tournamentID, sideID int64, at time.Time) error {
	return r.next.SoftDeleteSide(ctx, tournamentID, sideID, at)
}

func (r *TournamentRepository) CountLiveSides(ctx context.Context, tournamentID int64) (int, error) {
	return r.next.CountLiveSides(ctx, tournamentID)
}

func (r *TournamentRepository) SetSidesCount(ctx context.Context, tournamentID int64, count int) error {
	return r.next.SetSidesCount(ctx, tournamentID, count)
}

func (r *TournamentRepository) CreateStageSides(ctx context.Context, rows []tournament.StageSide) error {
	return r.next.CreateStageSides(ctx, rows)
}

func (r *TournamentRepository) ListUnjoinedBase(ctx context.Context, sportID int64, createdSince time.Time) ([]tournament.Tournament, error) {
	return r.next.ListUnjoinedBase(ctx, sportID, createdSince)
}

func (r *TournamentRepository) FindThrowIn(ctx context.Context, sportID, categoryID int64, date time.Time) (tournament.Tournament, bool, error) {
	return r.next.FindThrowIn(ctx, sportID, categoryID, date)
}

func (r *TournamentRepository) SetNextPart(ctx context.Context, tournamentID, nextPartID int64) error {
	return r.next.SetNextPart(ctx, tournamentID, nextPartID)
}
