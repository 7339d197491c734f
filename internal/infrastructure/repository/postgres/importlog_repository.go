package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/importlog"
	qb "github.com/arenahub/statsync/internal/platform/querybuilder"
)

type ImportLogRepository struct {
	db *sqlx.DB
}

func NewImportLogRepository(db *sqlx.DB) *ImportLogRepository {
	return &ImportLogRepository{db: db}
}

// Append deliberately bypasses any unit transaction on the context: the
// failure record must survive the rollback that follows it.
func (r *ImportLogRepository) Append(ctx context.Context, rec importlog.Record) error {
	query, args, err := qb.InsertInto("import_errors").
		Columns("id", "source", "external_id", "message", "payload", "created_at").
		Values(rec.ID, rec.Source, rec.ExternalID, rec.Message, rec.Payload, rec.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert import error query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert import error: %w", err)
	}
	return nil
}
