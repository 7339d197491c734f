package stage

import "context"

// Repository describes stage persistence needs from use cases.
type Repository interface {
	GetBySLID(ctx context.Context, sportID, slID int64) (Stage, bool, error)
	GetByOldID(ctx context.Context, sportID, oldID int64) (Stage, bool, error)
	Create(ctx context.Context, s Stage) (int64, error)
}
