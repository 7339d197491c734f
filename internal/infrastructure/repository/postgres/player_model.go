package postgres

import (
	"database/sql"
	"time"

	"github.com/arenahub/statsync/internal/domain/player"
)

type playerTableModel struct {
	ID           int64         `db:"id"`
	SportID      int64         `db:"sport_id"`
	SLID         sql.NullInt64 `db:"sl_id"`
	OldID        sql.NullInt64 `db:"old_id"`
	FNTRID       sql.NullInt64 `db:"fntr_id"`
	FirstNameRU  string        `db:"first_name_ru"`
	SurnameRU    string        `db:"surname_ru"`
	PatronymicRU string        `db:"patronymic_ru"`
	FirstNameEN  string        `db:"first_name_en"`
	SurnameEN    string        `db:"surname_en"`
	ShortNameRU  string        `db:"short_name_ru"`
	ShortNameEN  string        `db:"short_name_en"`
	Nickname     string        `db:"nickname"`
	SearchText   string        `db:"search_text"`
	Gender       string        `db:"gender"`
	Rating       sql.NullInt64 `db:"rating"`
	RatingDate   *time.Time    `db:"rating_date"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:           m.ID,
		SportID:      m.SportID,
		SLID:         nullInt64ToPtr(m.SLID),
		OldID:        nullInt64ToPtr(m.OldID),
		FNTRID:       nullInt64ToPtr(m.FNTRID),
		FirstNameRU:  m.FirstNameRU,
		SurnameRU:    m.SurnameRU,
		PatronymicRU: m.PatronymicRU,
		FirstNameEN:  m.FirstNameEN,
		SurnameEN:    m.SurnameEN,
		ShortNameRU:  m.ShortNameRU,
		ShortNameEN:  m.ShortNameEN,
		Nickname:     m.Nickname,
		SearchText:   m.SearchText,
		Gender:       m.Gender,
		Rating:       nullInt64ToIntPtr(m.Rating),
		RatingDate:   m.RatingDate,
	}
}
