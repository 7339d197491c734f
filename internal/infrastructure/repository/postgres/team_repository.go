package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/team"
	qb "github.com/arenahub/statsync/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

var teamSelectColumns = []string{
	"id",
	"sport_id",
	"sl_id",
	"old_id",
	"name_ru",
	"name_en",
	"short_name_ru",
	"short_name_en",
	"captain_id",
	"gender",
	"city",
	"rating",
	"created_at",
	"updated_at",
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetBySLID(ctx context.Context, sportID, slID int64) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("sl_id", slID))
}

func (r *TeamRepository) GetByOldID(ctx context.Context, sportID, oldID int64) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("old_id", oldID))
}

func (r *TeamRepository) GetByName(ctx context.Context, sportID int64, name string) (team.Team, bool, error) {
	return r.getOne(ctx,
		qb.Eq("sport_id", sportID),
		qb.Expr("(name_ru = ? OR name_en = ?)", name, name),
	)
}

func (r *TeamRepository) getOne(ctx context.Context, conditions ...qb.Condition) (team.Team, bool, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validate team: %w", err)
	}

	const query = `
INSERT INTO teams (
    sport_id, sl_id, old_id,
    name_ru, name_en, short_name_ru, short_name_en,
    captain_id, gender, city, rating
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &id, query,
		t.SportID, t.SLID, t.OldID,
		t.NameRU, t.NameEN, t.ShortNameRU, t.ShortNameEN,
		t.CaptainID, t.Gender, t.City, t.Rating,
	)
	if err != nil {
		return 0, fmt.Errorf("insert team: %w", err)
	}
	return id, nil
}

func (r *TeamRepository) UpdateNames(ctx context.Context, id int64, nameRU, nameEN string) error {
	builder := qb.Update("teams").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id))
	if nameRU != "" {
		builder.Set("name_ru", nameRU)
	}
	if nameEN != "" {
		builder.Set("name_en", nameEN)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update team names query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team names: %w", err)
	}
	return nil
}
