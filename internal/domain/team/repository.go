package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetBySLID(ctx context.Context, sportID, slID int64) (Team, bool, error)
	GetByOldID(ctx context.Context, sportID, oldID int64) (Team, bool, error)
	GetByName(ctx context.Context, sportID int64, name string) (Team, bool, error)
	Create(ctx context.Context, t Team) (int64, error)
	UpdateNames(ctx context.Context, id int64, nameRU, nameEN string) error
}
