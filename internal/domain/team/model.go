package team

import "fmt"

// Team is a canonical club/collective row merged from both external sources.
type Team struct {
	ID      int64
	SportID int64

	SLID  *int64
	OldID *int64

	NameRU      string
	NameEN      string
	ShortNameRU string
	ShortNameEN string

	CaptainID *int64
	Gender    string
	City      string

	Rating *int
}

func (t Team) Validate() error {
	if t.SportID <= 0 {
		return fmt.Errorf("team sport id is required")
	}
	if t.NameRU == "" && t.NameEN == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
