package sport

import (
	"fmt"
	"strings"
)

// Class describes how a participant slot is composed for a sport.
type Class int

const (
	// ClassIndividual sports (table tennis, badminton) build a side from a single player.
	ClassIndividual Class = iota + 1
	// ClassTeam sports build a side from a team only.
	ClassTeam
	// ClassTeamPlayer sports (cyber football and friends) pair a team with the player behind it.
	ClassTeamPlayer
)

// SideType is the persisted type_id of a side row.
type SideType int

const (
	SideTypeSingles SideType = iota + 1
	SideTypeTeam
	SideTypeTeamPlayer
)

// Canonical placeholder names forced onto every TBA side regardless of sport.
const (
	PlaceholderTitleRU = "Команда не определена"
	PlaceholderTitleEN = "TBA"
)

// Sport carries the per-sport reconciliation rules. Static configuration,
// never persisted from external sources.
type Sport struct {
	ID   int64
	Code string

	Class Class

	// UsesMeets pairs games under a higher-level meet row.
	UsesMeets bool
	// UsesTourNumbers adds tournament-stage-side rows per group-stage tour.
	UsesTourNumbers bool
	// SplitBrackets marks sports where the upstream splits a tournament into
	// a base bracket and a throw-in bracket that the joiner stitches back.
	SplitBrackets bool
	// KeepTBAAlive keeps freshly substituted TBA sides live in the
	// tournament-side join (tennis behaves this way upstream).
	KeepTBAAlive bool

	// ExtraPlaceholders extends the default sentinel set for this sport.
	ExtraPlaceholders []string
}

var defaultPlaceholders = map[string]struct{}{
	"":                    {},
	"tba":                 {},
	"the final":           {},
	"3rd place":           {},
	"team is not defined": {},
}

// IsPlaceholderTitle reports whether a raw external title means "participant
// not yet determined" for this sport.
func (s Sport) IsPlaceholderTitle(title string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if _, ok := defaultPlaceholders[normalized]; ok {
		return true
	}
	for _, extra := range s.ExtraPlaceholders {
		if normalized == strings.ToLower(strings.TrimSpace(extra)) {
			return true
		}
	}
	return false
}

// SideType maps the sport class to the persisted side type_id. An unknown
// class is a structural error and must abort the whole run.
func (s Sport) SideType() (SideType, error) {
	switch s.Class {
	case ClassIndividual:
		return SideTypeSingles, nil
	case ClassTeam:
		return SideTypeTeam, nil
	case ClassTeamPlayer:
		return SideTypeTeamPlayer, nil
	default:
		return 0, fmt.Errorf("sport %q has no side type for class %d", s.Code, s.Class)
	}
}

func (s Sport) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("sport id is required")
	}
	if strings.TrimSpace(s.Code) == "" {
		return fmt.Errorf("sport code is required")
	}
	if _, err := s.SideType(); err != nil {
		return err
	}
	return nil
}
