package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrStructural marks unrecoverable structural errors (unknown
	// sport-to-side-type mapping, a game referencing a stage absent from the
	// fetched set). The job runner aborts the whole run on these instead of
	// isolating the unit.
	ErrStructural = errors.New("structural import error")
)
