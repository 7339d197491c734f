package side

import (
	"context"
	"time"
)

// Repository describes side persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Side, bool, error)
	GetBySLID(ctx context.Context, sportID, slID int64) (Side, bool, error)
	// GetByComposition finds a legacy-only side by its underlying entities.
	GetByComposition(ctx context.Context, sportID int64, teamID, playerID *int64) (Side, bool, error)
	Create(ctx context.Context, s Side) (int64, error)
	// LatestRatingBefore returns the side's most recent rating strictly
	// before the given time, or nil when no history exists.
	LatestRatingBefore(ctx context.Context, sideID int64, before time.Time) (*int, error)
}
