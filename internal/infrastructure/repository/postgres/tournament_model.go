package postgres

import (
	"database/sql"
	"time"

	"github.com/arenahub/statsync/internal/domain/tournament"
)

type tournamentTableModel struct {
	ID           int64         `db:"id"`
	SportID      int64         `db:"sport_id"`
	SLID         sql.NullInt64 `db:"sl_id"`
	OldID        sql.NullInt64 `db:"old_id"`
	CategoryID   int64         `db:"category_id"`
	PlaceID      sql.NullInt64 `db:"place_id"`
	TimeOfDay    string        `db:"time_of_day"`
	Type         string        `db:"type"`
	NameRU       string        `db:"name_ru"`
	NameEN       string        `db:"name_en"`
	StartAt      time.Time     `db:"start_at"`
	EndAt        *time.Time    `db:"end_at"`
	SidesCount   int           `db:"sides_count"`
	MatchesCount int           `db:"matches_count"`
	State        string        `db:"state"`
	NextPartID   sql.NullInt64 `db:"next_part_id"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (m tournamentTableModel) toDomain() tournament.Tournament {
	return tournament.Tournament{
		ID:           m.ID,
		SportID:      m.SportID,
		SLID:         nullInt64ToPtr(m.SLID),
		OldID:        nullInt64ToPtr(m.OldID),
		CategoryID:   m.CategoryID,
		PlaceID:      nullInt64ToPtr(m.PlaceID),
		TimeOfDay:    tournament.TimeOfDay(m.TimeOfDay),
		Type:         tournament.Type(m.Type),
		NameRU:       m.NameRU,
		NameEN:       m.NameEN,
		StartAt:      m.StartAt,
		EndAt:        m.EndAt,
		SidesCount:   m.SidesCount,
		MatchesCount: m.MatchesCount,
		State:        tournament.State(m.State),
		NextPartID:   nullInt64ToPtr(m.NextPartID),
		CreatedAt:    m.CreatedAt,
	}
}

type tournamentSideTableModel struct {
	TournamentID int64         `db:"tournament_id"`
	SideID       int64         `db:"side_id"`
	Seed         sql.NullInt64 `db:"seed"`
	RatingBefore sql.NullInt64 `db:"rating_before"`
	RatingAfter  sql.NullInt64 `db:"rating_after"`
	RatingDelta  sql.NullInt64 `db:"rating_delta"`
	Placement    sql.NullInt64 `db:"placement"`
	DeletedAt    *time.Time    `db:"deleted_at"`
}

func (m tournamentSideTableModel) toDomain() tournament.Side {
	return tournament.Side{
		TournamentID: m.TournamentID,
		SideID:       m.SideID,
		Seed:         nullInt64ToIntPtr(m.Seed),
		RatingBefore: nullInt64ToIntPtr(m.RatingBefore),
		RatingAfter:  nullInt64ToIntPtr(m.RatingAfter),
		RatingDelta:  nullInt64ToIntPtr(m.RatingDelta),
		Placement:    nullInt64ToIntPtr(m.Placement),
		DeletedAt:    m.DeletedAt,
	}
}
