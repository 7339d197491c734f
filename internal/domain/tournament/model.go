package tournament

import (
	"fmt"
	"time"
)

// State is the lifecycle of a tournament, derived from current time against
// start/finish unless explicitly canceled upstream.
type State string

const (
	StateAnnounce State = "announce"
	StateLive     State = "live"
	StateFinished State = "finished"
	StateCanceled State = "canceled"
)

// Type distinguishes split-bracket tournaments: the base bracket and the
// meet-carrying throw-in bracket the joiner stitches onto it.
type Type string

const (
	TypeBase  Type = "base"
	TypeMeets Type = "meets"
)

// TimeOfDay is the scheduled bucket a tournament runs in.
type TimeOfDay string

const (
	TimeOfDayMorning TimeOfDay = "morning"
	TimeOfDayDay     TimeOfDay = "day"
	TimeOfDayEvening TimeOfDay = "evening"
	TimeOfDayNight   TimeOfDay = "night"
)

// CategoryKey is the structured identity of a tournament category. Category
// rows are resolved by this combination, not by a single external id.
type CategoryKey struct {
	SportID  int64
	EventID  *int64
	LeagueID *int64
	Gender   string
	Division string
}

// Category is the resolved event/league/gender/division combination.
type Category struct {
	ID  int64
	Key CategoryKey
}

// Tournament is the aggregate root produced by the assembler.
type Tournament struct {
	ID      int64
	SportID int64

	SLID  *int64
	OldID *int64

	CategoryID int64
	PlaceID    *int64
	TimeOfDay  TimeOfDay
	Type       Type

	NameRU string
	NameEN string

	StartAt time.Time
	EndAt   *time.Time

	// SidesCount counts live (non-soft-deleted) tournament-side rows;
	// TBA placeholders never contribute.
	SidesCount   int
	MatchesCount int

	State State

	// NextPartID links a base bracket to its throw-in counterpart.
	NextPartID *int64

	CreatedAt time.Time
}

func (t Tournament) Validate() error {
	if t.SportID <= 0 {
		return fmt.Errorf("tournament sport id is required")
	}
	if t.SLID == nil && t.OldID == nil {
		return fmt.Errorf("tournament needs an external key")
	}
	if t.StartAt.IsZero() {
		return fmt.Errorf("tournament start time is required")
	}
	return nil
}

// DeriveState computes the lifecycle state from the clock. Canceled is
// sticky and never recomputed.
func DeriveState(now, startAt time.Time, endAt *time.Time, current State) State {
	if current == StateCanceled {
		return StateCanceled
	}
	if endAt != nil && !now.Before(*endAt) {
		return StateFinished
	}
	if !now.Before(startAt) {
		return StateLive
	}
	return StateAnnounce
}

// DeriveTimeOfDay buckets a start time the way the scheduler groups
// tournaments for display.
func DeriveTimeOfDay(startAt time.Time) TimeOfDay {
	switch hour := startAt.Hour(); {
	case hour < 6:
		return TimeOfDayNight
	case hour < 12:
		return TimeOfDayMorning
	case hour < 18:
		return TimeOfDayDay
	default:
		return TimeOfDayEvening
	}
}

// Side is the join row between a tournament and a participant side, carrying
// per-tournament metrics. Removal soft-deletes to preserve history.
type Side struct {
	TournamentID int64
	SideID       int64

	Seed         *int
	RatingBefore *int
	RatingAfter  *int
	RatingDelta  *int
	Placement    *int

	DeletedAt *time.Time
}

// StageSide is the per-tour join row used by group-stage sports.
type StageSide struct {
	TournamentID int64
	SideID       int64
	TourNumber   int
}
