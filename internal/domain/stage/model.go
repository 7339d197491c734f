package stage

import "fmt"

// Stage is a named phase of a tournament (group, semifinal, final).
// Externally identical stages are shared across tournaments of one sport.
type Stage struct {
	ID      int64
	SportID int64

	SLID  *int64
	OldID *int64

	NameRU string
	NameEN string

	// TourNumber is set for round-robin group stages.
	TourNumber *int
}

func (s Stage) Validate() error {
	if s.SportID <= 0 {
		return fmt.Errorf("stage sport id is required")
	}
	if s.NameRU == "" && s.NameEN == "" {
		return fmt.Errorf("stage name is required")
	}
	return nil
}
