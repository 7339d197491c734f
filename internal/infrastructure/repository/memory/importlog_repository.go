package memory

import (
	"context"
	"sync"

	"github.com/arenahub/statsync/internal/domain/importlog"
)

type ImportLogRepository struct {
	mu      sync.RWMutex
	records []importlog.Record
}

func NewImportLogRepository() *ImportLogRepository {
	return &ImportLogRepository{}
}

func (r *ImportLogRepository) Append(_ context.Context, rec importlog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	return nil
}

// Records exposes appended records for test assertions.
func (r *ImportLogRepository) Records() []importlog.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]importlog.Record, len(r.records))
	copy(out, r.records)
	return out
}
