package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetBySLID(ctx context.Context, sportID, slID int64) (Player, bool, error)
	GetByOldID(ctx context.Context, sportID, oldID int64) (Player, bool, error)
	GetByNickname(ctx context.Context, sportID int64, nickname string) (Player, bool, error)
	Create(ctx context.Context, p Player) (int64, error)
	Rename(ctx context.Context, id int64, parts NameParts) error
}
