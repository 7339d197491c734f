package memory

import (
	"context"
	"testing"

	"github.com/arenahub/statsync/internal/domain/tournament"
)

func int64Ptr(v int64) *int64 { return &v }

func TestResolveCategory_EqualKeysShareID(t *testing.T) {
	r := NewTournamentRepository()

	// Distinct pointer values carrying the same ids must map to one row,
	// matching the postgres upsert.
	a, err := r.ResolveCategory(context.Background(), tournament.CategoryKey{
		SportID: 2,
		EventID: int64Ptr(10),
		Gender:  "male",
	})
	if err != nil {
		t.Fatalf("resolve a: %v", err)
	}
	b, err := r.ResolveCategory(context.Background(), tournament.CategoryKey{
		SportID: 2,
		EventID: int64Ptr(10),
		Gender:  "male",
	})
	if err != nil {
		t.Fatalf("resolve b: %v", err)
	}
	if a != b {
		t.Fatalf("equal keys resolved to %d and %d", a, b)
	}
}

func TestResolveCategory_NilAndSetPointersDiffer(t *testing.T) {
	r := NewTournamentRepository()

	a, err := r.ResolveCategory(context.Background(), tournament.CategoryKey{SportID: 2, Gender: "male"})
	if err != nil {
		t.Fatalf("resolve nil-event key: %v", err)
	}
	b, err := r.ResolveCategory(context.Background(), tournament.CategoryKey{
		SportID: 2,
		EventID: int64Ptr(10),
		Gender:  "male",
	})
	if err != nil {
		t.Fatalf("resolve set-event key: %v", err)
	}
	if a == b {
		t.Fatalf("nil and set event ids must not share a category")
	}
}
