package challengedb

import (
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/uptrace/bun"
)

// DefaultVenue is used until the players agree on a location.
const DefaultVenue = "TBD"

// Challenge is a ladder challenge row. Completed and forfeited rows are the
// permanent match history and are never deleted.
type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:c"`

	ID              sharedtypes.ChallengeID     `bun:"id,pk,type:uuid"`
	ChallengerID    sharedtypes.ProfileID       `bun:"challenger_id,notnull,type:uuid"`
	ChallengedID    sharedtypes.ProfileID       `bun:"challenged_id,notnull,type:uuid"`
	GameType        sharedtypes.GameType        `bun:"game_type,notnull"`
	GamesToWin      int                         `bun:"games_to_win,notnull"`
	Venue           string                      `bun:"venue,notnull,default:'TBD'"`
	ProposedTime    time.Time                   `bun:"proposed_time,notnull"`
	Status          sharedtypes.ChallengeStatus `bun:"status,notnull"`
	Deadline        time.Time                   `bun:"deadline,notnull"`
	ChallengerScore *int                        `bun:"challenger_score,nullzero"`
	ChallengedScore *int                        `bun:"challenged_score,nullzero"`
	WinnerID        *sharedtypes.ProfileID      `bun:"winner_id,nullzero,type:uuid"`
	StreamURL       *string                     `bun:"stream_url,nullzero"`
	CreatedAt       time.Time                   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time                   `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Participant reports whether id is one of the two players.
func (c *Challenge) Participant(id sharedtypes.ProfileID) bool {
	return c.ChallengerID == id || c.ChallengedID == id
}
