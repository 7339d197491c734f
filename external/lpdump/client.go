package lpdump

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

const defaultPageSize = 100

// Config maps local sport ids to the dump's sport codes and bounds the
// historical window to page through.
type Config struct {
	SportCodes map[int64]string
	PageSize   int
	WindowFrom time.Time
	WindowTo   time.Time
}

// Client reads the legacy portal dump. The dump is a static snapshot: it
// pages tournaments but never produces incremental updates.
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
	ID       int64         `db:"id" validate:"required"`
	NameRU   string        `db:"name_ru"`
	Gender   string        `db:"gender"`
	Division string        `db:"division"`
	StartAt  time.Time     `db:"start_at" validate:"required"`
	EndAt    *time.Time    `db:"end_at"`
	MaxTour  sql.NullInt64 `db:"max_tour"`
}

type sideRow struct {
	Title string        `db:"title"`
	Seed  sql.NullInt64 `db:"seed"`
}

type stageRow struct {
	ID         int64         `db:"id"`
	NameRU     string        `db:"name_ru"`
	TourNumber sql.NullInt64 `db:"tour_number"`
}

type gameRow struct {
	ID        int64         `db:"id"`
	StageID   sql.NullInt64 `db:"stage_id"`
	SideOne   string        `db:"side_one"`
	SideTwo   string        `db:"side_two"`
	StartAt   time.Time     `db:"start_at"`
	State     string        `db:"state"`
}

// FetchTournamentPage pages the dump's tournaments for one sport. Sides in
// the dump are bare titles with no ids; the side builder resolves them
// through name matching.
func (c *Client) FetchTournamentPage(ctx context.Context, sportID int64, page int) ([]usecase.ExternalTournamentState, bool, error) {
	code, ok := c.cfg.SportCodes[sportID]
	if !ok {
		return nil, false, crerr.Newf("sport %d has no dump mapping", sportID)
	}

	const query = `
SELECT t.id, t.name_ru, t.gender, t.division, t.start_at, t.end_at, t.max_tour
FROM lp_tournaments t
WHERE t.sport_code = $1
  AND t.start_at >= $2
  AND t.start_at < $3
ORDER BY t.id
LIMIT $4 OFFSET $5`

	var rows []tournamentRow
	offset := page * c.cfg.PageSize
	err := c.db.SelectContext(ctx, &rows, query,
		code, c.cfg.WindowFrom, c.cfg.WindowTo, c.cfg.PageSize+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("select dump tournaments sport=%d page=%d: %w", sportID, page, err)
	}

	hasMore := len(rows) > c.cfg.PageSize
	if hasMore {
		rows = rows[:c.cfg.PageSize]
	}

	out := make([]usecase.ExternalTournamentState, 0, len(rows))
	for _, row := range rows {
		if err := c.validate.Struct(row); err != nil {
			return nil, false, crerr.Wrapf(err, "invalid dump tournament id=%d", row.ID)
		}
		state, err := c.loadTournament(ctx, sportID, row)
		if err != nil {
			return nil, false, err
		}
		out = append(out, state)
	}
	return out, hasMore, nil
}

// FetchModifiedGames always returns nothing: the dump never changes.
func (c *Client) FetchModifiedGames(_ context.Context, _ int64, _ time.Time) ([]usecase.ExternalGameUpdate, error) {
	return nil, nil
}

func (c *Client) FetchModifiedRounds(_ context.Context, _ int64, _ time.Time) ([]usecase.ExternalRoundUpdate, error) {
	return nil, nil
}

func (c *Client) loadTournament(ctx context.Context, sportID int64, row tournamentRow) (usecase.ExternalTournamentState, error) {
	oldID := row.ID
	state := usecase.ExternalTournamentState{
		Source:  "lp",
		OldID:   &oldID,
		SportID: sportID,
		NameRU:  row.NameRU,
		Category: usecase.ExternalCategory{
			Gender:   row.Gender,
			Division: row.Division,
		},
		StartAt: row.StartAt,
		EndAt:   row.EndAt,
		Type:    tournament.TypeBase,
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
	if state.Games, err = c.loadGames(ctx, row.ID); err != nil {
		return usecase.ExternalTournamentState{}, err
	}
	return state, nil
}

func (c *Client) loadSides(ctx context.Context, tournamentID int64) ([]usecase.ExternalSide, error) {
	const query = `
SELECT s.title, s.seed
FROM lp_tournament_sides s
WHERE s.tournament_id = $1
ORDER BY s.title`

	var rows []sideRow
	if err := c.db.SelectContext(ctx, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("select dump sides tournament=%d: %w", tournamentID, err)
	}

	out := make([]usecase.ExternalSide, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ExternalSide{
			TitleRU: row.Title,
			Seed:    nullInt64ToIntPtr(row.Seed),
		})
	}
	return out, nil
}

func (c *Client) loadStages(ctx context.Context, tournamentID int64) ([]usecase.ExternalStage, error) {
	const query = `
SELECT st.id, st.name_ru, st.tour_number
FROM lp_tournament_stages st
WHERE st.tournament_id = $1
ORDER BY st.id`

	var rows []stageRow
	if err := c.db.SelectContext(ctx, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("select dump stages tournament=%d: %w", tournamentID, err)
	}

	out := make([]usecase.ExternalStage, 0, len(rows))
	for _, row := range rows {
		stageID := row.ID
		out = append(out, usecase.ExternalStage{
			OldID:      &stageID,
			NameRU:     row.NameRU,
			TourNumber: nullInt64ToIntPtr(row.TourNumber),
		})
	}
	return out, nil
}

func (c *Client) loadGames(ctx context.Context, tournamentID int64) ([]usecase.ExternalGame, error) {
	const query = `
SELECT g.id, g.stage_id, g.side_one, g.side_two, g.start_at, g.state
FROM lp_games g
WHERE g.tournament_id = $1
ORDER BY g.id`

	var rows []gameRow
	if err := c.db.SelectContext(ctx, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("select dump games tournament=%d: %w", tournamentID, err)
	}

	out := make([]usecase.ExternalGame, 0, len(rows))
	for _, row := range rows {
		gameID := row.ID
		out = append(out, usecase.ExternalGame{
			OldID:        &gameID,
			StageOldID:   nullInt64ToPtr(row.StageID),
			SideOneTitle: row.SideOne,
			SideTwoTitle: row.SideTwo,
			StartAt:      row.StartAt,
			State:        row.State,
		})
	}
	return out, nil
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
