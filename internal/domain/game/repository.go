package game

import (
	"context"
	"time"
)

// Update carries the partial-update columns the incremental checker may
// touch on a game. Nil fields are left untouched.
type Update struct {
	StartAt *time.Time
	State   *State
}

// Repository describes game/meet persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Game, bool, error)
	GetBySLID(ctx context.Context, sportID, slID int64) (Game, bool, error)
	// Create inserts the game together with its empty result row and both
	// game-side rows.
	Create(ctx context.Context, g Game) (int64, error)
	ApplyUpdate(ctx context.Context, id int64, upd Update) error

	ListSides(ctx context.Context, gameID int64) ([]SideRow, error)
	ReplaceSide(ctx context.Context, gameID int64, slot int, newSideID int64) error
	// CountBySide counts remaining games in a tournament that still
	// reference the side in either slot.
	CountBySide(ctx context.Context, tournamentID, sideID int64) (int, error)
	ListByTournament(ctx context.Context, tournamentID int64) ([]Game, error)

	CreateMeet(ctx context.Context, m Meet) (int64, error)
	ListMeetsByTournament(ctx context.Context, tournamentID int64) ([]Meet, error)
	SetMeetMainGame(ctx context.Context, meetID, gameID int64) error
}
