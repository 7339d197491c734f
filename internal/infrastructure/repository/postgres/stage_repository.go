package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/stage"
	qb "github.com/arenahub/statsync/internal/platform/querybuilder"
)

type StageRepository struct {
	db *sqlx.DB
}

type stageTableModel struct {
	ID         int64         `db:"id"`
	SportID    int64         `db:"sport_id"`
	SLID       sql.NullInt64 `db:"sl_id"`
	OldID      sql.NullInt64 `db:"old_id"`
	NameRU     string        `db:"name_ru"`
	NameEN     string        `db:"name_en"`
	TourNumber sql.NullInt64 `db:"tour_number"`
}

func (m stageTableModel) toDomain() stage.Stage {
	return stage.Stage{
		ID:         m.ID,
		SportID:    m.SportID,
		SLID:       nullInt64ToPtr(m.SLID),
		OldID:      nullInt64ToPtr(m.OldID),
		NameRU:     m.NameRU,
		NameEN:     m.NameEN,
		TourNumber: nullInt64ToIntPtr(m.TourNumber),
	}
}

var stageSelectColumns = []string{
	"id",
	"sport_id",
	"sl_id",
	"old_id",
	"name_ru",
	"name_en",
	"tour_number",
}

func NewStageRepository(db *sqlx.DB) *StageRepository {
	return &StageRepository{db: db}
}

func (r *StageRepository) GetBySLID(ctx context.Context, sportID, slID int64) (stage.Stage, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("sl_id", slID))
}

func (r *StageRepository) GetByOldID(ctx context.Context, sportID, oldID int64) (stage.Stage, bool, error) {
	return r.getOne(ctx, qb.Eq("sport_id", sportID), qb.Eq("old_id", oldID))
}

func (r *StageRepository) getOne(ctx context.Context, conditions ...qb.Condition) (stage.Stage, bool, error) {
	query, args, err := qb.Select(stageSelectColumns...).From("stages").
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return stage.Stage{}, false, fmt.Errorf("build select stage query: %w", err)
	}

	var row stageTableModel
	if err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &row, query, args...); err != nil {
		if isNotFound(err) {
			return stage.Stage{}, false, nil
		}
		return stage.Stage{}, false, fmt.Errorf("select stage: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *StageRepository) Create(ctx context.Context, s stage.Stage) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, fmt.Errorf("validate stage: %w", err)
	}

	const query = `
INSERT INTO stages (sport_id, sl_id, old_id, name_ru, name_en, tour_number)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, queryerFrom(ctx, r.db), &id, query,
		s.SportID, s.SLID, s.OldID, s.NameRU, s.NameEN, s.TourNumber,
	)
	if err != nil {
		return 0, fmt.Errorf("insert stage: %w", err)
	}
	return id, nil
}
