package side

import (
	"fmt"

	"github.com/arenahub/statsync/internal/domain/sport"
)

// Side is a participant slot in a match or tournament. It references exactly
// one of team/player, or both for team-player sports. TBA sides are
// placeholders: resolving one always creates a new concrete side and repoints
// references, never mutates the identity fields in place.
type Side struct {
	ID      int64
	SportID int64

	SLID *int64

	TeamID   *int64
	PlayerID *int64

	TypeID sport.SideType
	IsTBA  bool
}

func (s Side) Validate() error {
	if s.SportID <= 0 {
		return fmt.Errorf("side sport id is required")
	}
	switch s.TypeID {
	case sport.SideTypeSingles:
		if s.PlayerID == nil || s.TeamID != nil {
			return fmt.Errorf("singles side must reference a player only")
		}
	case sport.SideTypeTeam:
		if s.TeamID == nil || s.PlayerID != nil {
			return fmt.Errorf("team side must reference a team only")
		}
	case sport.SideTypeTeamPlayer:
		if s.TeamID == nil || s.PlayerID == nil {
			return fmt.Errorf("team-player side must reference both a team and a player")
		}
	default:
		return fmt.Errorf("side type %d is unknown", s.TypeID)
	}
	return nil
}
