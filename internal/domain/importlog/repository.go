package importlog

import "context"

// Repository appends failed-unit records outside the unit transaction, so a
// rollback never loses the error trail.
type Repository interface {
	Append(ctx context.Context, rec Record) error
}
