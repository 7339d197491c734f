package postgres

import (
	"database/sql"
	"time"

	"github.com/arenahub/statsync/internal/domain/game"
)

type gameTableModel struct {
	ID           int64         `db:"id"`
	TournamentID int64         `db:"tournament_id"`
	SLID         sql.NullInt64 `db:"sl_id"`
	OldID        sql.NullInt64 `db:"old_id"`
	StageID      int64         `db:"stage_id"`
	MeetID       sql.NullInt64 `db:"meet_id"`
	SideOneID    int64         `db:"side_one_id"`
	SideTwoID    int64         `db:"side_two_id"`
	StartAt      time.Time     `db:"start_at"`
	State        string        `db:"state"`
	NextPartID   sql.NullInt64 `db:"next_part_id"`
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		SLID:         nullInt64ToPtr(m.SLID),
		OldID:        nullInt64ToPtr(m.OldID),
		StageID:      m.StageID,
		MeetID:       nullInt64ToPtr(m.MeetID),
		SideOneID:    m.SideOneID,
		SideTwoID:    m.SideTwoID,
		StartAt:      m.StartAt,
		State:        game.State(m.State),
		NextPartID:   nullInt64ToPtr(m.NextPartID),
	}
}

type meetTableModel struct {
	ID           int64         `db:"id"`
	TournamentID int64         `db:"tournament_id"`
	SLID         sql.NullInt64 `db:"sl_id"`
	SideOneID    int64         `db:"side_one_id"`
	SideTwoID    int64         `db:"side_two_id"`
	MainGameID   sql.NullInt64 `db:"main_game_id"`
}

func (m meetTableModel) toDomain() game.Meet {
	return game.Meet{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		SLID:         nullInt64ToPtr(m.SLID),
		SideOneID:    m.SideOneID,
		SideTwoID:    m.SideTwoID,
		MainGameID:   nullInt64ToPtr(m.MainGameID),
	}
}
