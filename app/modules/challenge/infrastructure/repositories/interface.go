package challengedb

import (
	"context"
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// Patch carries the optional fields a transition may set alongside the status
// change. Nil fields are left untouched.
type Patch struct {
	Venue           *string
	ProposedTime    *time.Time
	StreamURL       *string
	ChallengerScore *int
	ChallengedScore *int
	WinnerID        *sharedtypes.ProfileID
}

// Filter narrows ListChallenges.
type Filter struct {
	ProfileID *sharedtypes.ProfileID
	Status    *sharedtypes.ChallengeStatus
	Limit     int
}

// ChallengeRepo is the persistence surface for challenges. TransitionStatus is
// a compare-and-swap: it only succeeds when the row still holds the expected
// status, so two concurrent transitions cannot both win.
type ChallengeRepo interface {
	GetChallenge(ctx context.Context, id sharedtypes.ChallengeID) (*Challenge, error)
	CreateChallenge(ctx context.Context, challenge *Challenge) error
	TransitionStatus(ctx context.Context, id sharedtypes.ChallengeID, from, to sharedtypes.ChallengeStatus, patch Patch) (*Challenge, error)
	ListChallenges(ctx context.Context, filter Filter) ([]Challenge, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]Challenge, error)
}
