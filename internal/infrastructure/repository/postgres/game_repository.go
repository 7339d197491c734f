package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/game"
	qb "github.com/arenahub/statsync/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

var gameSelectColumns = []string{
	"id",
	"tournament_id",
	"sl_id",
	"old_id",
	"stage_id",
	"meet_id",
	"side_one_id",
	"side_two_id",
	"start_at",
	"state",
	"next_part_id",
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id int64) (game.Game, bool, error) {
	return r.getOne(ctx, "games", qb.Eq("id", id))
}

func (r *GameRepository) GetBySLID(ctx context.Context, sportID, slID int64) (game.Game, bool, error) {
	const query = `
SELECT g.id, g.tournament_id, g.sl_id, g.old_id, g.stage_id, g.meet_id,
       g.side_one_id, g.side_two_id, g.start_at, g.state, g.next_part_id
FROM games g
JOIN tournaments t ON t.id = g.tournament_id
WHERE t.sport_id = $1
  AND g.sl_id = $2
ORDER BY g.id
LIMIT 1`

	var row gameTableModel
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &row, query, sportID, slID); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game by sl id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) getOne(ctx context.Context, table string, conditions ...qb.Condition) (game.Game, bool, error) {
	query, args, err := qb.Select(gameSelectColumns...).From(table).
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game: %w", err)
	}
	return row.toDomain(), true, nil
}

// Create inserts the game, its empty result row and both game-side join rows.
// Callers run it inside the unit transaction.
func (r *GameRepository) Create(ctx context.Context, g game.Game) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("validate game: %w", err)
	}

	q := queryerFrom(ctx, r.db)

	const insertGame = `
INSERT INTO games (
    tournament_id, sl_id, old_id, stage_id, meet_id,
    side_one_id, side_two_id, start_at, state, next_part_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, q, &id, insertGame,
		g.TournamentID, g.SLID, g.OldID, g.StageID, g.MeetID,
		g.SideOneID, g.SideTwoID, g.StartAt, string(g.State), g.NextPartID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}

	if _, err := q.ExecContext(ctx, `INSERT INTO game_results (game_id) VALUES ($1)`, id); err != nil {
		return 0, fmt.Errorf("insert game result: %w", err)
	}

	sidesQuery, sidesArgs, err := qb.InsertInto("game_sides").
		Columns("game_id", "side_id", "slot").
		Values(id, g.SideOneID, 1).
		Values(id, g.SideTwoID, 2).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert game sides query: %w", err)
	}
	if _, err := q.ExecContext(ctx, sidesQuery, sidesArgs...); err != nil {
		return 0, fmt.Errorf("insert game sides: %w", err)
	}

	return id, nil
}

func (r *GameRepository) ApplyUpdate(ctx context.Context, id int64, upd game.Update) error {
	builder := qb.Update("games").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id))
	if upd.StartAt != nil {
		builder.Set("start_at", *upd.StartAt)
	}
	if upd.State != nil {
		builder.Set("state", string(*upd.State))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update game query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return nil
}

func (r *GameRepository) ListSides(ctx context.Context, gameID int64) ([]game.SideRow, error) {
	query, args, err := qb.Select("game_id", "side_id", "slot").From("game_sides").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("slot").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select game sides query: %w", err)
	}

	var rows []struct {
		GameID int64 `db:"game_id"`
		SideID int64 `db:"side_id"`
		Slot   int   `db:"slot"`
	}
	if err := sqlx.SelectContext(ctx, queryerFrom(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select game sides: %w", err)
	}

	out := make([]game.SideRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, game.SideRow{GameID: row.GameID, SideID: row.SideID, Slot: row.Slot})
	}
	return out, nil
}

// ReplaceSide repoints both the join row and the denormalized column on the
// game itself.
func (r *GameRepository) ReplaceSide(ctx context.Context, gameID int64, slot int, newSideID int64) error {
	q := queryerFrom(ctx, r.db)

	sideQuery, sideArgs, err := qb.Update("game_sides").
		Set("side_id", newSideID).
		Where(qb.Eq("game_id", gameID), qb.Eq("slot", slot)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build replace game side query: %w", err)
	}
	if _, err := q.ExecContext(ctx, sideQuery, sideArgs...); err != nil {
		return fmt.Errorf("replace game side: %w", err)
	}

	column := "side_one_id"
	if slot == 2 {
		column = "side_two_id"
	}
	gameQuery, gameArgs, err := qb.Update("games").
		Set(column, newSideID).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game side column query: %w", err)
	}
	if _, err := q.ExecContext(ctx, gameQuery, gameArgs...); err != nil {
		return fmt.Errorf("update game side column: %w", err)
	}
	return nil
}

func (r *GameRepository) CountBySide(ctx context.Context, tournamentID, sideID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("games").
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.Expr("(side_one_id = ? OR side_two_id = ?)", sideID, sideID),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count games by side query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &count, query, args...); err != nil {
		return 0, fmt.Errorf("count games by side: %w", err)
	}
	return count, nil
}

func (r *GameRepository) ListByTournament(ctx context.Context, tournamentID int64) ([]game.Game, error) {
	query, args, err := qb.Select(gameSelectColumns...).From("games").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by tournament query: %w", err)
	}

	var rows []gameTableModel
	if err := sqlx.SelectContext(ctx, queryerFrom(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games by tournament: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) CreateMeet(ctx context.Context, m game.Meet) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("validate meet: %w", err)
	}

	const query = `
INSERT INTO meets (tournament_id, sl_id, side_one_id, side_two_id, main_game_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &id, query,
		m.TournamentID, m.SLID, m.SideOneID, m.SideTwoID, m.MainGameID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert meet: %w", err)
	}
	return id, nil
}

func (r *GameRepository) ListMeetsByTournament(ctx context.Context, tournamentID int64) ([]game.Meet, error) {
	query, args, err := qb.Select(
		"id", "tournament_id", "sl_id", "side_one_id", "side_two_id", "main_game_id",
	).From("meets").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select meets query: %w", err)
	}

	var rows []meetTableModel
	if err := sqlx.SelectContext(ctx, queryerFrom(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select meets: %w", err)
	}

	out := make([]game.Meet, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) SetMeetMainGame(ctx context.Context, meetID, gameID int64) error {
	query, args, err := qb.Update("meets").
		Set("main_game_id", gameID).
		Where(qb.Eq("id", meetID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set meet main game query: %w", err)
	}
	if _, err := queryerFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set meet main game: %w", err)
	}
	return nil
}
