package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// queryer is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx. Every
// repository method resolves its executor through the context so that calls
// inside a unit transaction land on the transaction.
type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type txContextKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func queryerFrom(ctx context.Context, db *sqlx.DB) queryer {
	if tx, ok := ctx.Value(txContextKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

func nullInt64ToPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
