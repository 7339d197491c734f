package postgres

import (
	"database/sql"
	"time"

	"github.com/arenahub/statsync/internal/domain/team"
)

type teamTableModel struct {
	ID          int64         `db:"id"`
	SportID     int64         `db:"sport_id"`
	SLID        sql.NullInt64 `db:"sl_id"`
	OldID       sql.NullInt64 `db:"old_id"`
	NameRU      string        `db:"name_ru"`
	NameEN      string        `db:"name_en"`
	ShortNameRU string        `db:"short_name_ru"`
	ShortNameEN string        `db:"short_name_en"`
	CaptainID   sql.NullInt64 `db:"captain_id"`
	Gender      string        `db:"gender"`
	City        string        `db:"city"`
	Rating      sql.NullInt64 `db:"rating"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:          m.ID,
		SportID:     m.SportID,
		SLID:        nullInt64ToPtr(m.SLID),
		OldID:       nullInt64ToPtr(m.OldID),
		NameRU:      m.NameRU,
		NameEN:      m.NameEN,
		ShortNameRU: m.ShortNameRU,
		ShortNameEN: m.ShortNameEN,
		CaptainID:   nullInt64ToPtr(m.CaptainID),
		Gender:      m.Gender,
		City:        m.City,
		Rating:      nullInt64ToIntPtr(m.Rating),
	}
}
