package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/side"
	"github.com/arenahub/statsync/internal/domain/sport"
	qb "github.com/arenahub/statsync/internal/platform/querybuilder"
)

type SideRepository struct {
	db *sqlx.DB
}

type sideTableModel struct {
	ID       int64         `db:"id"`
	SportID  int64         `db:"sport_id"`
	SLID     sql.NullInt64 `db:"sl_id"`
	TeamID   sql.NullInt64 `db:"team_id"`
	PlayerID sql.NullInt64 `db:"player_id"`
	TypeID   int           `db:"type_id"`
	IsTBA    bool          `db:"is_tba"`
}

func (m sideTableModel) toDomain() side.Side {
	return side.Side{
		ID:       m.ID,
		SportID:  m.SportID,
		SLID:     nullInt64ToPtr(m.SLID),
		TeamID:   nullInt64ToPtr(m.TeamID),
		PlayerID: nullInt64ToPtr(m.PlayerID),
		TypeID:   sport.SideType(m.TypeID),
		IsTBA:    m.IsTBA,
	}
}

var sideSelectColumns = []string{
	"id",
	"sport_id",
	"sl_id",
	"team_id",
	"player_id",
	"type_id",
	"is_tba",
}

func NewSideRepository(db *sqlx.DB) *SideRepository {
	return &SideRepository{db: db}
}

func (r *SideRepository) GetByID(ctx context.Context, id int64) (side.Side, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *SideRepository) GetBySLID(ctx context.Context, sportID, slID int64) (side.Side, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("sl_id", slID))
}

func (r *SideRepository) GetByComposition(ctx context.Context, sportID int64, teamID, playerID *int64) (side.Side, bool, error) {
	conditions := []qb.Condition{qb.Eq("sport_id", sportID)}
	if teamID != nil {
		conditions = append(conditions, qb.Eq("team_id", *teamID))
	} else {
		conditions = append(conditions, qb.IsNull("team_id"))
	}
	if playerID != nil {
		conditions = append(conditions, qb.Eq("player_id", *playerID))
	} else {
		conditions = append(conditions, qb.IsNull("player_id"))
	}
	return r.getOne(ctx, conditions...)
}

func (r *SideRepository) getOne(ctx context.Context, conditions ...qb.Condition) (side.Side, bool, error) {
	query, args, err := qb.Select(sideSelectColumns...).From("sides").
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return side.Side{}, false, fmt.Errorf("build select side query: %w", err)
	}

	var row sideTableModel
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &row, query, args...); err != nil {
		if isNotFound(err) {
			return side.Side{}, false, nil
		}
		return side.Side{}, false, fmt.Errorf("select side: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SideRepository) Create(ctx context.Context, s side.Side) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, fmt.Errorf("validate side: %w", err)
	}

	const query = `
INSERT INTO sides (sport_id, sl_id, team_id, player_id, type_id, is_tba)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &id, query,
		s.SportID, s.SLID, s.TeamID, s.PlayerID, int(s.TypeID), s.IsTBA,
	)
	if err != nil {
		return 0, fmt.Errorf("insert side: %w", err)
	}
	return id, nil
}

func (r *SideRepository) LatestRatingBefore(ctx context.Context, sideID int64, before time.Time) (*int, error) {
	query, args, err := qb.Select("rating").From("side_ratings").
		Where(
			qb.Eq("side_id", sideID),
			qb.Lt("rated_at", before),
		).
		OrderBy("rated_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select side rating query: %w", err)
	}

	var rating int
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &rating, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select side rating: %w", err)
	}
	return &rating, nil
}
