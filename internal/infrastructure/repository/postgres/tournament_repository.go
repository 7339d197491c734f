package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/tournament"
	qb "github.com/arenahub/statsync/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

var tournamentSelectColumns = []string{
	"id",
	"sport_id",
	"sl_id",
	"old_id",
	"category_id",
	"place_id",
	"time_of_day",
	"type",
	"name_ru",
	"name_en",
	"start_at",
	"end_at",
	"sides_count",
	"matches_count",
	"state",
	"next_part_id",
	"created_at",
	"updated_at",
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (tournament.Tournament, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *TournamentRepository) GetBySLID(ctx context.Context, sportID, slID int64) (tournament.Tournament, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("sl_id", slID))
}

func (r *TournamentRepository) GetByOldID(ctx context.Context, sportID, oldID int64) (tournament.Tournament, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("old_id", oldID))
}

func (r *TournamentRepository) getOne(ctx context.Context, conditions ...qb.Condition) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select(tournamentSelectColumns...).From("tournaments").
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build select tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("select tournament: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *TournamentRepository) Create(ctx context.Context, t tournament.Tournament) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validate tournament: %w", err)
	}

	const query = `
INSERT INTO tournaments (
    sport_id, sl_id, old_id, category_id, place_id,
    time_of_day, type, name_ru, name_en,
    start_at, end_at, sides_count, matches_count, state, next_part_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &id, query,
		t.SportID, t.SLID, t.OldID, t.CategoryID, t.PlaceID,
		string(t.TimeOfDay), string(t.Type), t.NameRU, t.NameEN,
		t.StartAt, t.EndAt, t.SidesCount, t.MatchesCount, string(t.State), t.NextPartID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert tournament: %w", err)
	}
	return id, nil
}

func (r *TournamentRepository) ApplyUpdate(ctx context.Context, id int64, upd tournament.Update) error {
	builder := qb.Update("tournaments").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id))
	if upd.CategoryID != nil {
		builder.Set("category_id", *upd.CategoryID)
	}
	if upd.NameRU != nil {
		builder.Set("name_ru", *upd.NameRU)
	}
	if upd.NameEN != nil {
		builder.Set("name_en", *upd.NameEN)
	}
	if upd.StartAt != nil {
		builder.Set("start_at", *upd.StartAt)
	}
	if upd.EndAt != nil {
		builder.Set("end_at", *upd.EndAt)
	}
	if upd.State != nil {
		builder.Set("state", string(*upd.State))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update tournament query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}
	return nil
}

// ResolveCategory finds or creates the category row for a structured key.
// The upsert keeps concurrent resolvers from racing on first insert.
func (r *TournamentRepository) ResolveCategory(ctx context.Context, key tournament.CategoryKey) (int64, error) {
	const query = `
INSERT INTO categories (sport_id, event_id, league_id, gender, division)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sport_id, COALESCE(event_id, 0), COALESCE(league_id, 0), gender, division)
DO UPDATE SET sport_id = EXCLUDED.sport_id
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &id, query,
		key.SportID, key.EventID, key.LeagueID, key.Gender, key.Division,
	)
	if err != nil {
		return 0, fmt.Errorf("resolve category: %w", err)
	}
	return id, nil
}

func (r *TournamentRepository) ListSides(ctx context.Context, tournamentID int64) ([]tournament.Side, error) {
	query, args, err := qb.Select(
		"tournament_id", "side_id", "seed",
		"rating_before", "rating_after", "rating_delta",
		"placement", "deleted_at",
	).From("tournament_sides").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("side_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tournament sides query: %w", err)
	}

	var rows []tournamentSideTableModel
	if err := sqlx.SelectContext(ctx, queryerFrom(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tournament sides: %w", err)
	}

	out := make([]tournament.Side, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TournamentRepository) CreateSide(ctx context.Context, s tournament.Side) error {
	query, args, err := qb.InsertInto("tournament_sides").
		Columns("tournament_id", "side_id", "seed", "rating_before", "deleted_at").
		Values(s.TournamentID, s.SideID, s.Seed, s.RatingBefore, s.DeletedAt).
		Suffix("ON CONFLICT (tournament_id, side_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert tournament side query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tournament side: %w", err)
	}
	return nil
}

func (r *TournamentRepository) SoftDeleteSide(ctx context.Context, tournamentID, sideID int64, at time.Time) error {
	query, args, err := qb.Update("tournament_sides").
		Set("deleted_at", at).
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.Eq("side_id", sideID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build soft delete tournament side query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("soft delete tournament side: %w", err)
	}
	return nil
}

func (r *TournamentRepository) CountLiveSides(ctx context.Context, tournamentID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("tournament_sides").
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count tournament sides query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &count, query, args...); err != nil {
		return 0, fmt.Errorf("count tournament sides: %w", err)
	}
	return count, nil
}

func (r *TournamentRepository) SetSidesCount(ctx context.Context, tournamentID int64, count int) error {
	query, args, err := qb.Update("tournaments").
		Set("sides_count", count).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", tournamentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set sides count query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set sides count: %w", err)
	}
	return nil
}

func (r *TournamentRepository) CreateStageSides(ctx context.Context, rows []tournament.StageSide) error {
	if len(rows) == 0 {
		return nil
	}

	builder := qb.InsertInto("stage_sides").
		Columns("tournament_id", "side_id", "tour_number").
		Suffix("ON CONFLICT (tournament_id, side_id, tour_number) DO NOTHING")
	for _, row := range rows {
		builder.Values(row.TournamentID, row.SideID, row.TourNumber)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert stage sides query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert stage sides: %w", err)
	}
	return nil
}

func (r *TournamentRepository) ListUnjoinedBase(ctx context.Context, sportID int64, createdSince time.Time) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentSelectColumns...).From("tournaments").
		Where(
			qb.Eq("sport_id", sportID),
			qb.EqLiteral("type", string(tournament.TypeBase)),
			qb.IsNull("next_part_id"),
			qb.Gte("created_at", createdSince),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select unjoined base query: %w", err)
	}

	var rows []tournamentTableModel
	if err := sqlx.SelectContext(ctx, queryerFrom(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select unjoined base tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TournamentRepository) FindThrowIn(ctx context.Context, sportID, categoryID int64, date time.Time) (tournament.Tournament, bool, error) {
	return r.getOne(ctx,
		qb.Eq("sport_id", sportID),
		qb.Eq("category_id", categoryID),
		qb.EqLiteral("type", string(tournament.TypeMeets)),
		qb.Expr("start_at::date = ?::date", date),
	)
}

func (r *TournamentRepository) SetNextPart(ctx context.Context, tournamentID, nextPartID int64) error {
	query, args, err := qb.Update("tournaments").
		Set("next_part_id", nextPartID).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", tournamentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set next part query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set next part: %w", err)
	}
	return nil
}
