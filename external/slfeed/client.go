package slfeed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/arenahub/statsync/internal/domain/tournament"
	"github.com/arenahub/statsync/internal/platform/logging"
	"github.com/arenahub/statsync/internal/usecase"
)

const defaultPageSize = 50

// Config scopes the client to one import run: which upstream sport ids map
// to local ones and which date window to page through.
type Config struct {
	// SportCodes maps local sport id to the feed's sport id.
	SportCodes map[int64]int64
	PageSize   int
	WindowFrom time.Time
	WindowTo   time.Time
}

// Client reads the live feed replica. All access is read-only; the feed
// database belongs to the upstream provider.
type Client struct {
	db       *sqlx.DB
	cfg      Config
	validate *validator.Validate
	logger   *logging.Logger
}

func NewClient(db *sqlx.DB, cfg Config, logger *logging.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		db:       db,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

type tournamentRow struct {
	ID       int64          `db:"id" validate:"required"`
	SportID  int64          `db:"sport_id" validate:"required"`
	NameRU   string         `db:"name_ru"`
	NameEN   string         `db:"name_en"`
	EventID  sql.NullInt64  `db:"event_id"`
	LeagueID sql.NullInt64  `db:"league_id"`
	Gender   string         `db:"gender"`
	Division string         `db:"division"`
	PlaceID  sql.NullInt64  `db:"place_id"`
	Kind     string         `db:"kind"`
	StartAt  time.Time      `db:"start_at" validate:"required"`
	EndAt    *time.Time     `db:"end_at"`
	MaxTour  sql.NullInt64  `db:"max_tour"`
}

type sideRow struct {
	ID      sql.NullInt64 `db:"id"`
	TitleRU string        `db:"title_ru"`
	TitleEN string        `db:"title_en"`
	IsTBA   bool          `db:"is_tba"`
	Seed    sql.NullInt64 `db:"seed"`
	Gender  string        `db:"gender"`
}

type stageRow struct {
	ID         sql.NullInt64 `db:"id"`
	NameRU     string        `db:"name_ru"`
	NameEN     string        `db:"name_en"`
	TourNumber sql.NullInt64 `db:"tour_number"`
}

type meetRow struct {
	ID          sql.NullInt64 `db:"id"`
	SideOneID   sql.NullInt64 `db:"side_one_id"`
	SideTwoID   sql.NullInt64 `db:"side_two_id"`
}

type gameRow struct {
	ID        sql.NullInt64 `db:"id"`
	StageID   sql.NullInt64 `db:"stage_id"`
	MeetID    sql.NullInt64 `db:"meet_id"`
	SideOneID sql.NullInt64 `db:"side_one_id"`
	SideTwoID sql.NullInt64 `db:"side_two_id"`
	StartAt   time.Time     `db:"start_at"`
	State     string        `db:"state"`
}

// FetchTournamentPage pages the feed's rounds for one sport inside the
// configured window. The second return reports whether more pages remain.
func (c *Client) FetchTournamentPage(ctx context.Context, sportID int64, page int) ([]usecase.ExternalTournamentState, bool, error) {
	feedSportID, ok := c.cfg.SportCodes[sportID]
	if !ok {
		return nil, false, crerr.Newf("sport %d has no feed mapping", sportID)
	}

	const query = `
SELECT r.id, r.sport_id, r.name_ru, r.name_en,
       r.event_id, r.league_id, r.gender, r.division,
       r.place_id, r.kind, r.start_at, r.end_at, r.max_tour
FROM rounds r
WHERE r.sport_id = $1
  AND r.start_at >= $2
  AND r.start_at < $3
ORDER BY r.id
LIMIT $4 OFFSET $5`

	var rows []tournamentRow
	offset := page * c.cfg.PageSize
	err := c.db.SelectContext(ctx, &rows, query,
		feedSportID, c.cfg.WindowFrom, c.cfg.WindowTo, c.cfg.PageSize+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("select feed rounds sport=%d page=%d: %w", sportID, page, err)
	}

	hasMore := len(rows) > c.cfg.PageSize
	if hasMore {
		rows = rows[:c.cfg.PageSize]
	}

	out := make([]usecase.ExternalTournamentState, 0, len(rows))
	for _, row := range rows {
		if err := c.validate.Struct(row); err != nil {
			return nil, false, crerr.Wrapf(err, "invalid feed round id=%d", row.ID)
		}
		state, err := c.loadTournament(ctx, sportID, row)
		if err != nil {
			return nil, false, err
		}
		out = append(out, state)
	}
	return out, hasMore, nil
}

func (c *Client) loadTournament(ctx context.Context, sportID int64, row tournamentRow) (usecase.ExternalTournamentState, error) {
	slID := row.ID
	state := usecase.ExternalTournamentState{
		Source:  "sl",
		SLID:    &slID,
		SportID: sportID,
		NameRU:  row.NameRU,
		NameEN:  row.NameEN,
		Category: usecase.ExternalCategory{
			EventID:  nullInt64ToPtr(row.EventID),
			LeagueID: nullInt64ToPtr(row.LeagueID),
			Gender:   row.Gender,
			Division: row.Division,
		},
		PlaceID: nullInt64ToPtr(row.PlaceID),
		StartAt: row.StartAt,
		EndAt:   row.EndAt,
		Type:    tournament.TypeBase,
	}
	if row.Kind == "meets" {
		state.Type = tournament.TypeMeets
	}
	if row.MaxTour.Valid {
		state.MaxTourNumber = int(row.MaxTour.Int64)
	}

	var err error
	if state.Sides, err = c.loadSides(ctx, row.ID); err != nil {
		return usecase.ExternalTournamentState{}, err
	}
	if state.Stages, err = c.loadStages(ctx, row.ID); err != nil {
		return usecase.ExternalTournamentState{}, err
	}
	if state.Meets, err = c.loadMeets(ctx, row.ID); err != nil {
		return usecase.ExternalTournamentState{}, err
	}
	if state.Games, err = c.loadGames(ctx, row.ID); err != nil {
		return usecase.ExternalTournamentState{}, err
	}
	return state, nil
}

func (c *Client) loadSides(ctx context.Context, roundID int64) ([]usecase.ExternalSide, error) {
	const query = `
SELECT s.id, s.title_ru, s.title_en, s.is_tba, s.seed, s.gender
FROM round_sides s
WHERE s.round_id = $1
ORDER BY s.id`

	var rows []sideRow
	if err := c.db.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, fmt.Errorf("select feed sides round=%d: %w", roundID, err)
	}

	out := make([]usecase.ExternalSide, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ExternalSide{
			SLID:    nullInt64ToPtr(row.ID),
			TitleRU: row.TitleRU,
			TitleEN: row.TitleEN,
			IsTBA:   row.IsTBA,
			Seed:    nullInt64ToIntPtr(row.Seed),
			Gender:  row.Gender,
		})
	}
	return out, nil
}

func (c *Client) loadStages(ctx context.Context, roundID int64) ([]usecase.ExternalStage, error) {
	const query = `
SELECT st.id, st.name_ru, st.name_en, st.tour_number
FROM round_stages st
WHERE st.round_id = $1
ORDER BY st.id`

	var rows []stageRow
	if err := c.db.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, fmt.Errorf("select feed stages round=%d: %w", roundID, err)
	}

	out := make([]usecase.ExternalStage, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ExternalStage{
			SLID:       nullInt64ToPtr(row.ID),
			NameRU:     row.NameRU,
			NameEN:     row.NameEN,
			TourNumber: nullInt64ToIntPtr(row.TourNumber),
		})
	}
	return out, nil
}

func (c *Client) loadMeets(ctx context.Context, roundID int64) ([]usecase.ExternalMeet, error) {
	const query = `
SELECT m.id, m.side_one_id, m.side_two_id
FROM round_meets m
WHERE m.round_id = $1
ORDER BY m.id`

	var rows []meetRow
	if err := c.db.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, fmt.Errorf("select feed meets round=%d: %w", roundID, err)
	}

	out := make([]usecase.ExternalMeet, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ExternalMeet{
			SLID:        nullInt64ToPtr(row.ID),
			SideOneSLID: nullInt64ToPtr(row.SideOneID),
			SideTwoSLID: nullInt64ToPtr(row.SideTwoID),
		})
	}
	return out, nil
}

func (c *Client) loadGames(ctx context.Context, roundID int64) ([]usecase.ExternalGame, error) {
	const query = `
SELECT g.id, g.stage_id, g.meet_id, g.side_one_id, g.side_two_id, g.start_at, g.state
FROM round_games g
WHERE g.round_id = $1
ORDER BY g.id`

	var rows []gameRow
	if err := c.db.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, fmt.Errorf("select feed games round=%d: %w", roundID, err)
	}

	out := make([]usecase.ExternalGame, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ExternalGame{
			SLID:        nullInt64ToPtr(row.ID),
			StageSLID:   nullInt64ToPtr(row.StageID),
			MeetSLID:    nullInt64ToPtr(row.MeetID),
			SideOneSLID: nullInt64ToPtr(row.SideOneID),
			SideTwoSLID: nullInt64ToPtr(row.SideTwoID),
			StartAt:     row.StartAt,
			State:       row.State,
		})
	}
	return out, nil
}

type modifiedGameRow struct {
	GameID    int64         `db:"game_id" validate:"required"`
	RoundID   int64         `db:"round_id" validate:"required"`
	StartAt   time.Time     `db:"start_at"`
	UpdatedAt time.Time     `db:"updated_at"`

	SideOneID      sql.NullInt64 `db:"side_one_id"`
	SideOneTitleRU sql.NullString `db:"side_one_title_ru"`
	SideOneTitleEN sql.NullString `db:"side_one_title_en"`
	SideOneIsTBA   sql.NullBool   `db:"side_one_is_tba"`

	SideTwoID      sql.NullInt64 `db:"side_two_id"`
	SideTwoTitleRU sql.NullString `db:"side_two_title_ru"`
	SideTwoTitleEN sql.NullString `db:"side_two_title_en"`
	SideTwoIsTBA   sql.NullBool   `db:"side_two_is_tba"`
}

// FetchModifiedGames returns games whose upstream record changed after the
// checkpoint, joined with their current side descriptors.
func (c *Client) FetchModifiedGames(ctx context.Context, sportID int64, since time.Time) ([]usecase.ExternalGameUpdate, error) {
	feedSportID, ok := c.cfg.SportCodes[sportID]
	if !ok {
		return nil, crerr.Newf("sport %d has no feed mapping", sportID)
	}

	const query = `
SELECT g.id AS game_id, g.round_id, g.start_at, g.updated_at,
       s1.id AS side_one_id, s1.title_ru AS side_one_title_ru, s1.title_en AS side_one_title_en, s1.is_tba AS side_one_is_tba,
       s2.id AS side_two_id, s2.title_ru AS side_two_title_ru, s2.title_en AS side_two_title_en, s2.is_tba AS side_two_is_tba
FROM round_games g
JOIN rounds r ON r.id = g.round_id
LEFT JOIN round_sides s1 ON s1.id = g.side_one_id
LEFT JOIN round_sides s2 ON s2.id = g.side_two_id
WHERE r.sport_id = $1
  AND g.updated_at > $2
ORDER BY g.updated_at, g.id`

	var rows []modifiedGameRow
	if err := c.db.SelectContext(ctx, &rows, query, feedSportID, since); err != nil {
		return nil, fmt.Errorf("select modified feed games sport=%d: %w", sportID, err)
	}

	out := make([]usecase.ExternalGameUpdate, 0, len(rows))
	for _, row := range rows {
		if err := c.validate.Struct(row); err != nil {
			return nil, crerr.Wrapf(err, "invalid modified game row game=%d", row.GameID)
		}
		out = append(out, usecase.ExternalGameUpdate{
			GameSLID:       row.GameID,
			TournamentSLID: row.RoundID,
			SideOne:        modifiedSide(row.SideOneID, row.SideOneTitleRU, row.SideOneTitleEN, row.SideOneIsTBA),
			SideTwo:        modifiedSide(row.SideTwoID, row.SideTwoTitleRU, row.SideTwoTitleEN, row.SideTwoIsTBA),
			StartAt:        row.StartAt,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	return out, nil
}

type modifiedRoundRow struct {
	RoundID   int64         `db:"round_id" validate:"required"`
	NameRU    string        `db:"name_ru"`
	NameEN    string        `db:"name_en"`
	EventID   sql.NullInt64 `db:"event_id"`
	LeagueID  sql.NullInt64 `db:"league_id"`
	Gender    string        `db:"gender"`
	Division  string        `db:"division"`
	StartAt   time.Time     `db:"start_at"`
	EndAt     *time.Time    `db:"end_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

func (c *Client) FetchModifiedRounds(ctx context.Context, sportID int64, since time.Time) ([]usecase.ExternalRoundUpdate, error) {
	feedSportID, ok := c.cfg.SportCodes[sportID]
	if !ok {
		return nil, crerr.Newf("sport %d has no feed mapping", sportID)
	}

	const query = `
SELECT r.id AS round_id, r.name_ru, r.name_en,
       r.event_id, r.league_id, r.gender, r.division,
       r.start_at, r.end_at, r.updated_at
FROM rounds r
WHERE r.sport_id = $1
  AND r.updated_at > $2
ORDER BY r.updated_at, r.id`

	var rows []modifiedRoundRow
	if err := c.db.SelectContext(ctx, &rows, query, feedSportID, since); err != nil {
		return nil, fmt.Errorf("select modified feed rounds sport=%d: %w", sportID, err)
	}

	out := make([]usecase.ExternalRoundUpdate, 0, len(rows))
	for _, row := range rows {
		if err := c.validate.Struct(row); err != nil {
			return nil, crerr.Wrapf(err, "invalid modified round row round=%d", row.RoundID)
		}
		out = append(out, usecase.ExternalRoundUpdate{
			TournamentSLID: row.RoundID,
			Category: usecase.ExternalCategory{
				EventID:  nullInt64ToPtr(row.EventID),
				LeagueID: nullInt64ToPtr(row.LeagueID),
				Gender:   row.Gender,
				Division: row.Division,
			},
			NameRU:    row.NameRU,
			NameEN:    row.NameEN,
			StartAt:   row.StartAt,
			EndAt:     row.EndAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

func modifiedSide(id sql.NullInt64, titleRU, titleEN sql.NullString, isTBA sql.NullBool) *usecase.ExternalSide {
	if !id.Valid {
		return nil
	}
	slID := id.Int64
	return &usecase.ExternalSide{
		SLID:    &slID,
		TitleRU: titleRU.String,
		TitleEN: titleEN.String,
		IsTBA:   isTBA.Bool,
	}
}

func nullInt64ToPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
