package challengedomain

import (
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// transitions is the full challenge state graph. Anything not listed here is
// an invalid transition.
var transitions = map[sharedtypes.ChallengeStatus][]sharedtypes.ChallengeStatus{
	sharedtypes.StatusPending:     {sharedtypes.StatusNegotiating, sharedtypes.StatusForfeited, sharedtypes.StatusExpired},
	sharedtypes.StatusNegotiating: {sharedtypes.StatusLive},
	sharedtypes.StatusLive:        {sharedtypes.StatusCompleted},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to sharedtypes.ChallengeStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsOverdue reports whether a pending challenge has lapsed past its deadline.
// Only pending challenges expire; everything else either moved on or is
// already terminal.
func IsOverdue(status sharedtypes.ChallengeStatus, deadline, now time.Time) bool {
	return status == sharedtypes.StatusPending && now.After(deadline)
}

// Winner determines the winning side of a finalized match. Exactly one score
// must have reached the race target; ok is false otherwise (both below, or
// both at/above, which a race format cannot produce legitimately).
func Winner(score1, score2, gamesToWin int) (challengerWon bool, ok bool) {
	first := score1 >= gamesToWin
	second := score2 >= gamesToWin
	if first == second {
		return false, false
	}
	return first, true
}
