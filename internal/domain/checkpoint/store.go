package checkpoint

import (
	"context"
	"time"
)

// KeySLLastUpdatedAt bounds the incremental polling window of the SL
// importer. The value is a Unix timestamp.
const KeySLLastUpdatedAt = "importer_sl:last_updated_at"

// Store is the key-value checkpoint collaborator. Read at job start, written
// only after a fully successful pass (at-least-once semantics).
type Store interface {
	Get(ctx context.Context, key string) (time.Time, bool, error)
	Set(ctx context.Context, key string, at time.Time) error
}
