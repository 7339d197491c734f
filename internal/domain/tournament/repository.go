package tournament

import (
	"context"
	"time"
)

// Update carries the partial-update columns the incremental checker may
// touch. Nil fields are left untouched.
type Update struct {
	CategoryID *int64
	NameRU     *string
	NameEN     *string
	StartAt    *time.Time
	EndAt      *time.Time
	State      *State
}

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Tournament, bool, error)
	GetBySLID(ctx context.Context, sportID, slID int64) (Tournament, bool, error)
	GetByOldID(ctx context.Context, sportID, oldID int64) (Tournament, bool, error)
	Create(ctx context.Context, t Tournament) (int64, error)
	ApplyUpdate(ctx context.Context, id int64, upd Update) error

	ResolveCategory(ctx context.Context, key CategoryKey) (int64, error)

	ListSides(ctx context.Context, tournamentID int64) ([]Side, error)
	CreateSide(ctx context.Context, s Side) error
	SoftDeleteSide(ctx context.Context, tournamentID, sideID int64, at time.Time) error
	CountLiveSides(ctx context.Context, tournamentID int64) (int, error)
	SetSidesCount(ctx context.Context, tournamentID int64, count int) error

	CreateStageSides(ctx context.Context, rows []StageSide) error

	// ListUnjoinedBase returns base-bracket tournaments created since the
	// cutoff with no next-part pointer, for the post-hoc joiner.
	ListUnjoinedBase(ctx context.Context, sportID int64, createdSince time.Time) ([]Tournament, error)
	// FindThrowIn looks for a meets-type tournament in the same category on
	// the same calendar date.
	FindThrowIn(ctx context.Context, sportID, categoryID int64, date time.Time) (Tournament, bool, error)
	SetNextPart(ctx context.Context, tournamentID, nextPartID int64) error
}
