package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner wraps one import unit in a database transaction. The transaction
// rides on the context, so repository calls inside fn transparently join it.
type TxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
