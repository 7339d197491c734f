package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/infrastructure/repository/memory"
	basecache "github.com/arenahub/statsync/internal/platform/cache"
)

type countingTournamentRepo struct {
	tournament.Repository
	resolves int
}

func (r *countingTournamentRepo) ResolveCategory(ctx context.Context, key tournament.CategoryKey) (int64, error) {
	r.resolves++
	return r.Repository.ResolveCategory(ctx, key)
}

func TestTournamentRepository_ResolveCategoryCached(t *testing.T) {
	t.Parallel()

	next := &countingTournamentRepo{Repository: memory.NewTournamentRepository()}
	repo := NewTournamentRepository(next, basecache.NewStore(time.Minute))

	eventID := int64(10)
	key := tournament.CategoryKey{SportID: 1, EventID: &eventID, Gender: "male"}

	first, err := repo.ResolveCategory(context.Background(), key)
	require.NoError(t, err)
	second, err := repo.ResolveCategory(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, next.resolves, "second resolve must come from cache")

	other := tournament.CategoryKey{SportID: 1, EventID: &eventID, Gender: "female"}
	otherID, err := repo.ResolveCategory(context.Background(), other)
	require.NoError(t, err)
	require.NotEqual(t, first, otherID)
	require.Equal(t, 2, next.resolves)
}

func TestTournamentRepository_PassThrough(t *testing.T) {
	t.Parallel()

	next := &countingTournamentRepo{Repository: memory.NewTournamentRepository()}
	repo := NewTournamentRepository(next, basecache.NewStore(time.Minute))

	slID := int64(5)
	id, err := repo.Create(context.Background(), tournament.Tournament{
		SportID: 1,
		SLID:    &slID,
		NameEN:  "Cup",
		StartAt: time.Now(),
	})
	require.NoError(t, err)

	got, ok, err := repo.GetBySLID(context.Background(), 1, slID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, got.ID)
}

func TestCategoryCacheKey(t *testing.T) {
	t.Parallel()

	eventID := int64(10)
	leagueID := int64(3)
	withIDs := categoryCacheKey(tournament.CategoryKey{
		SportID:  2,
		EventID:  &eventID,
		LeagueID: &leagueID,
		Gender:   "male",
		Division: "pro",
	})
	require.Equal(t, "category:2:10:3:male:pro", withIDs)

	nullIDs := categoryCacheKey(tournament.CategoryKey{SportID: 2, Gender: "male"})
	require.Equal(t, "category:2:-:-:male:", nullIDs)
}
