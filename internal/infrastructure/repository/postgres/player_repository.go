package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/player"
	qb "github.com/arenahub/statsync/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"sport_id",
	"sl_id",
	"old_id",
	"fntr_id",
	"first_name_ru",
	"surname_ru",
	"patronymic_ru",
	"first_name_en",
	"surname_en",
	"short_name_ru",
	"short_name_en",
	"nickname",
	"search_text",
	"gender",
	"rating",
	"rating_date",
	"created_at",
	"updated_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetBySLID(ctx context.Context, sportID, slID int64) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("sl_id", slID))
}

func (r *PlayerRepository) GetByOldID(ctx context.Context, sportID, oldID int64) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("old_id", oldID))
}

func (r *PlayerRepository) GetByNickname(ctx context.Context, sportID int64, nickname string) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("nickname", nickname), qb.NotEq("nickname", ""))
}

func (r *PlayerRepository) getOne(ctx context.Context, conditions ...qb.Condition) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("validate player: %w", err)
	}

	const query = `
INSERT INTO players (
    sport_id, sl_id, old_id, fntr_id,
    first_name_ru, surname_ru, patronymic_ru,
    first_name_en, surname_en,
    short_name_ru, short_name_en,
    nickname, search_text, gender, rating, rating_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &id, query,
		p.SportID, p.SLID, p.OldID, p.FNTRID,
		p.FirstNameRU, p.SurnameRU, p.PatronymicRU,
		p.FirstNameEN, p.SurnameEN,
		p.ShortNameRU, p.ShortNameEN,
		p.Nickname, p.SearchText, p.Gender, p.Rating, p.RatingDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}
	return id, nil
}

func (r *PlayerRepository) Rename(ctx context.Context, id int64, parts player.NameParts) error {
	query, args, err := qb.Update("players").
		Set("first_name_ru", parts.FirstNameRU).
		Set("surname_ru", parts.SurnameRU).
		Set("patronymic_ru", parts.PatronymicRU).
		Set("first_name_en", parts.FirstNameEN).
		Set("surname_en", parts.SurnameEN).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build rename player query: %w", err)
	}

	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("rename player: %w", err)
	}
	return nil
}
