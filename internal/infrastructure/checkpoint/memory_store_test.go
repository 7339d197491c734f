package checkpoint

import (
	"context"
	"testing"
	"time"

	domaincheckpoint "github.com/arenahub/statsync/internal/domain/checkpoint"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, domaincheckpoint.KeySLLastUpdatedAt)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("empty store reported a checkpoint")
	}

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Set(ctx, domaincheckpoint.KeySLLastUpdatedAt, at); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := s.Get(ctx, domaincheckpoint.KeySLLastUpdatedAt)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || !got.Equal(at) {
		t.Fatalf("got %v ok=%v, want %v", got, ok, at)
	}

	later := at.Add(time.Hour)
	if err := s.Set(ctx, domaincheckpoint.KeySLLastUpdatedAt, later); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = s.Get(ctx, domaincheckpoint.KeySLLastUpdatedAt)
	if !got.Equal(later) {
		t.Fatalf("overwrite lost: %v", got)
	}
}
