package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("users").
		Where(Eq("tenant_id", "t1"), IsNull("deleted_at")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM users WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "t1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("users").
		Columns("id", "name").
		Values("u1", "name-1").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO users (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "u1" || args[1] != "name-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("users").
		Set("name", "new").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "new" || args[1] != "u1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ComparisonsAndPagination(t *testing.T) {
	query, args, err := Select("id").
		From("games").
		Where(
			Gt("updated_at", "2024-01-01"),
			Lte("start_at", "2024-02-01"),
			NotEq("state", "canceled"),
			IsNotNull("sl_id"),
		).
		OrderBy("updated_at").
		Limit(50).
		Offset(100).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM games WHERE updated_at > $1 AND start_at <= $2 AND state <> $3 AND sl_id IS NOT NULL ORDER BY updated_at LIMIT 50 OFFSET 100"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "canceled" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprAndLiteral(t *testing.T) {
	query, args, err := Select("id").
		From("tournaments").
		Where(
			Eq("sport_id", int64(4)),
			EqLiteral("type", "meets"),
			Expr("start_at::date = ?::date", "2024-03-10"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM tournaments WHERE sport_id = $1 AND type = 'meets' AND start_at::date = $2::date"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[1] != "2024-03-10" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRowWithConflictSuffix(t *testing.T) {
	query, args, err := InsertInto("stage_sides").
		Columns("tournament_id", "side_id", "tour_number").
		Values(int64(1), int64(10), 1).
		Values(int64(1), int64(11), 1).
		Suffix("ON CONFLICT (tournament_id, side_id, tour_number) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO stage_sides (tournament_id, side_id, tour_number) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (tournament_id, side_id, tour_number) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
