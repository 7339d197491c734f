package player

import (
	"fmt"
	"strings"
	"time"
)

// Player is a canonical person row merged from the SL feed and the LP dump.
// External keys live side by side; the internal ID is the only stable key.
type Player struct {
	ID      int64
	SportID int64

	SLID   *int64
	OldID  *int64
	FNTRID *int64

	FirstNameRU  string
	SurnameRU    string
	PatronymicRU string
	FirstNameEN  string
	SurnameEN    string
	ShortNameRU  string
	ShortNameEN  string

	// Nickname is set for team-player sports instead of name parts.
	Nickname string

	SearchText string
	Gender     string

	Rating     *int
	RatingDate *time.Time
}

// FullNameRU is the concatenation used to detect upstream renames.
func (p Player) FullNameRU() string {
	return JoinNameParts(p.SurnameRU, p.FirstNameRU, p.PatronymicRU)
}

func (p Player) FullNameEN() string {
	return JoinNameParts(p.SurnameEN, p.FirstNameEN, "")
}

func (p Player) Validate() error {
	if p.SportID <= 0 {
		return fmt.Errorf("player sport id is required")
	}
	if p.Nickname == "" && p.FullNameRU() == "" && p.FullNameEN() == "" {
		return fmt.Errorf("player needs either name parts or a nickname")
	}
	if p.Nickname != "" && p.FullNameRU() != "" {
		return fmt.Errorf("player nickname and name parts are mutually exclusive")
	}
	return nil
}

// NameParts is the rename payload applied when upstream corrects a name.
type NameParts struct {
	FirstNameRU  string
	SurnameRU    string
	PatronymicRU string
	FirstNameEN  string
	SurnameEN    string
}

func (n NameParts) FullNameRU() string {
	return JoinNameParts(n.SurnameRU, n.FirstNameRU, n.PatronymicRU)
}

func (n NameParts) FullNameEN() string {
	return JoinNameParts(n.SurnameEN, n.FirstNameEN, "")
}

func JoinNameParts(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, " ")
}
