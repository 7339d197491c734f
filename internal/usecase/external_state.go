package usecase

import (
	"context"
	"time"

	"github.com/arenahub/statsync/internal/domain/tournament"
)

// ExternalTournamentState is the generic snapshot of one upstream event. Both
// the SL feed and the LP dump adapters populate it; the assembler, checker
// and joiner only ever see this type.
type ExternalTournamentState struct {
	Source string

	SLID  *int64
	OldID *int64

	SportID int64

	NameRU string
	NameEN string

	Category ExternalCategory
	PlaceID  *int64

	StartAt time.Time
	EndAt   *time.Time

	Type tournament.Type

	// MaxTourNumber is the highest group-stage tour referenced by the batch;
	// zero for knockout-only sports.
	MaxTourNumber int

	Sides  []ExternalSide
	Stages []ExternalStage
	Meets  []ExternalMeet
	Games  []ExternalGame
}

// ExternalCategory carries the raw category sub-objects. Missing league or
// event is tolerated and maps to a null column.
type ExternalCategory struct {
	EventID  *int64
	LeagueID *int64
	Gender   string
	Division string
}

// ExternalSide is a raw participant record before side building.
type ExternalSide struct {
	SLID *int64

	TitleRU string
	TitleEN string

	// IsTBA may already be set upstream; placeholder titles force it.
	IsTBA bool

	Seed *int

	Gender string
}

type ExternalStage struct {
	SLID  *int64
	OldID *int64

	NameRU string
	NameEN string

	TourNumber *int
}

type ExternalMeet struct {
	SLID *int64

	SideOneSLID *int64
	SideTwoSLID *int64
}

type ExternalGame struct {
	SLID  *int64
	OldID *int64

	StageSLID  *int64
	StageOldID *int64
	MeetSLID   *int64

	SideOneSLID *int64
	SideTwoSLID *int64

	// The legacy dump carries no side ids; its games reference sides by the
	// exact title instead.
	SideOneTitle string
	SideTwoTitle string

	StartAt time.Time
	State   string
}

// ExternalGameUpdate is one row of the incremental poll: a game whose
// upstream record changed after the checkpoint.
type ExternalGameUpdate struct {
	GameSLID       int64
	TournamentSLID int64

	SideOne *ExternalSide
	SideTwo *ExternalSide

	StartAt   time.Time
	UpdatedAt time.Time
}

// ExternalRoundUpdate carries freshly fetched tournament-level metadata.
type ExternalRoundUpdate struct {
	TournamentSLID int64

	Category ExternalCategory
	NameRU   string
	NameEN   string

	StartAt time.Time
	EndAt   *time.Time

	UpdatedAt time.Time
}

// SourceProvider is the read-only upstream boundary. The SL adapter
// implements all three; the LP dump adapter only pages tournaments.
type SourceProvider interface {
	FetchTournamentPage(ctx context.Context, sportID int64, page int) ([]ExternalTournamentState, bool, error)
	FetchModifiedGames(ctx context.Context, sportID int64, since time.Time) ([]ExternalGameUpdate, error)
	FetchModifiedRounds(ctx context.Context, sportID int64, since time.Time) ([]ExternalRoundUpdate, error)
}

// TxRunner scopes a function to one local-store transaction. Unit-local
// failures roll back exactly that unit.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WorkQueue publishes per-tournament and per-participant work items to the
// downstream statistics consumer.
type WorkQueue interface {
	PublishTournament(ctx context.Context, tournamentID int64) error
	PublishParticipant(ctx context.Context, participantID, sportID int64, isThrowPlayer bool) error
}
