package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if !isNotFound(errorsJoin(sql.ErrNoRows)) {
		t.Fatalf("expected true for wrapped sql.ErrNoRows")
	}
	if isNotFound(errors.New("pq: relation games does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func errorsJoin(err error) error {
	return errors.Join(errors.New("query tournament"), err)
}

func TestQueryerFrom(t *testing.T) {
	db := &sqlx.DB{}

	if got := queryerFrom(context.Background(), db); got != queryer(db) {
		t.Fatalf("expected plain queries to run on the db handle")
	}

	tx := &sqlx.Tx{}
	ctx := withTx(context.Background(), tx)
	if got := queryerFrom(ctx, db); got != queryer(tx) {
		t.Fatalf("expected transactional context to route to the tx")
	}
}

func TestNullInt64Helpers(t *testing.T) {
	if got := nullInt64ToPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("null must map to nil, got %v", *got)
	}
	got := nullInt64ToPtr(sql.NullInt64{Int64: 42, Valid: true})
	if got == nil || *got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}

	if got := nullInt64ToIntPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("null must map to nil, got %v", *got)
	}
	asInt := nullInt64ToIntPtr(sql.NullInt64{Int64: 7, Valid: true})
	if asInt == nil || *asInt != 7 {
		t.Fatalf("expected 7, got %v", asInt)
	}
}
