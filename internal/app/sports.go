package app

import (
	"fmt"

	"github.com/arenahub/statsync/internal/config"
	"github.com/arenahub/statsync/internal/domain/sport"
)

// sportCatalog is the static per-sport rule table. Which of these actually
// run is decided by IMPORTER_SPORTS; the catalog only describes behavior.
var sportCatalog = map[string]sport.Sport{
	"table-tennis": {
		ID:              1,
		Code:            "table-tennis",
		Class:           sport.ClassIndividual,
		UsesTourNumbers: true,
	},
	"tennis": {
		ID:           2,
		Code:         "tennis",
		Class:        sport.ClassIndividual,
		KeepTBAAlive: true,
	},
	"badminton": {
		ID:    3,
		Code:  "badminton",
		Class: sport.ClassIndividual,
	},
	"basketball": {
		ID:            4,
		Code:          "basketball",
		Class:         sport.ClassTeam,
		UsesMeets:     true,
		SplitBrackets: true,
		ExtraPlaceholders: []string{
			"winner",
			"loser",
		},
	},
	"cyber-football": {
		ID:    5,
		Code:  "cyber-football",
		Class: sport.ClassTeamPlayer,
	},
	"cyber-hockey": {
		ID:    6,
		Code:  "cyber-hockey",
		Class: sport.ClassTeamPlayer,
	},
}

func resolveSports(cfg config.Config) ([]sport.Sport, error) {
	out := make([]sport.Sport, 0, len(cfg.EnabledSports))
	for _, code := range cfg.EnabledSports {
		sp, ok := sportCatalog[code]
		if !ok {
			return nil, fmt.Errorf("unknown sport %q in IMPORTER_SPORTS", code)
		}
		if err := sp.Validate(); err != nil {
			return nil, fmt.Errorf("sport %q: %w", code, err)
		}
		out = append(out, sp)
	}
	return out, nil
}

func slSportCodes(cfg config.Config, sports []sport.Sport) (map[int64]int64, error) {
	out := make(map[int64]int64, len(sports))
	for _, sp := range sports {
		feedID, ok := cfg.SLSportCodes[sp.Code]
		if !ok {
			return nil, fmt.Errorf("SL_SPORT_CODES has no entry for sport %q", sp.Code)
		}
		out[sp.ID] = feedID
	}
	return out, nil
}

func lpSportCodes(cfg config.Config, sports []sport.Sport) (map[int64]string, error) {
	out := make(map[int64]string, len(sports))
	for _, sp := range sports {
		code, ok := cfg.LPSportCodes[sp.Code]
		if !ok {
			return nil, fmt.Errorf("LP_SPORT_CODES has no entry for sport %q", sp.Code)
		}
		out[sp.ID] = code
	}
	return out, nil
}
