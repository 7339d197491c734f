package game

import (
	"fmt"
	"time"
)

// State mirrors the tournament lifecycle at match granularity. Transitions
// are monotonic (announce→live→finished, canceled from any non-finished
// state); the importer overwrites with latest rather than enforcing order.
type State string

const (
	StateAnnounce State = "announce"
	StateLive     State = "live"
	StateFinished State = "finished"
	StateCanceled State = "canceled"
)

// Game is a single match between two sides.
type Game struct {
	ID           int64
	TournamentID int64

	SLID  *int64
	OldID *int64

	StageID int64
	// MeetID groups paired games for meet-based sports.
	MeetID *int64

	SideOneID int64
	SideTwoID int64

	StartAt time.Time
	State   State

	// NextPartID links a base-bracket game to its throw-in counterpart.
	NextPartID *int64
}

func (g Game) Validate() error {
	if g.TournamentID <= 0 {
		return fmt.Errorf("game tournament id is required")
	}
	if g.SideOneID == g.SideTwoID {
		return fmt.Errorf("game sides must differ")
	}
	if g.StageID <= 0 {
		return fmt.Errorf("game stage id is required")
	}
	return nil
}

// Result holds the score columns. Created empty at assembly time and filled
// by the downstream statistics consumer.
type Result struct {
	GameID       int64
	ScoreOne     *int
	ScoreTwo     *int
	WinnerSideID *int64
}

// SideRow is the game-side join row; slot is 1 or 2.
type SideRow struct {
	GameID int64
	SideID int64
	Slot   int
}

// Meet groups two games under one higher-level pairing. MainGameID is set by
// the post-hoc joiner to the matching base-bracket game.
type Meet struct {
	ID           int64
	TournamentID int64

	SLID *int64

	SideOneID int64
	SideTwoID int64

	MainGameID *int64
}

func (m Meet) Validate() error {
	if m.TournamentID <= 0 {
		return fmt.Errorf("meet tournament id is required")
	}
	if m.SideOneID <= 0 || m.SideTwoID <= 0 {
		return fmt.Errorf("meet needs both sides resolved")
	}
	return nil
}
