package apperrors

import (
	"fmt"
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

// IneligibilityReason explains why a challenge could not be created.
type IneligibilityReason string

const (
	ReasonInCooldown IneligibilityReason = "IN_COOLDOWN"
	ReasonOutOfRange IneligibilityReason = "OUT_OF_RANGE"
)

// IneligibleError is returned when the eligibility rules deny a challenge.
type IneligibleError struct {
	Reason IneligibilityReason
	// CooldownRemaining is set when Reason is ReasonInCooldown.
	CooldownRemaining time.Duration
	// RankGap and AllowedRange are set when Reason is ReasonOutOfRange.
	RankGap      int
	AllowedRange int
}

func (e *IneligibleError) Error() string {
	switch e.Reason {
	case ReasonInCooldown:
		return fmt.Sprintf("ineligible: in cooldown for %s", e.CooldownRemaining.Round(time.Minute))
	case ReasonOutOfRange:
		return fmt.Sprintf("ineligible: rank gap %d exceeds allowed range %d", e.RankGap, e.AllowedRange)
	}
	return "ineligible"
}

// NotFoundError is returned when a profile or challenge id does not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ForbiddenError is returned when the caller is not allowed to perform the
// requested transition (e.g. responding to someone else's challenge).
type ForbiddenError struct {
	ActorID sharedtypes.ProfileID
	Action  string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("profile %s may not %s", e.ActorID, e.Action)
}

// InvalidStateError is returned when a transition is attempted from a state
// that does not permit it. The challenge is left unchanged.
type InvalidStateError struct {
	ChallengeID sharedtypes.ChallengeID
	Current     sharedtypes.ChallengeStatus
	Attempted   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("challenge %s: cannot %s from status %q", e.ChallengeID, e.Attempted, e.Current)
}

// MatchNotCompleteError is returned when finalize is called before exactly one
// side has reached the race target.
type MatchNotCompleteError struct {
	Score1     int
	Score2     int
	GamesToWin int
}

func (e *MatchNotCompleteError) Error() string {
	return fmt.Sprintf("match not complete: scores %d-%d, race to %d", e.Score1, e.Score2, e.GamesToWin)
}

// SettlementFailedError wraps a failure of the atomic rank settlement. The
// challenge must not reach completed status when this is returned.
type SettlementFailedError struct {
	WinnerID sharedtypes.ProfileID
	LoserID  sharedtypes.ProfileID
	Err      error
}

func (e *SettlementFailedError) Error() string {
	return fmt.Sprintf("settlement failed for winner %s / loser %s: %v", e.WinnerID, e.LoserID, e.Err)
}

func (e *SettlementFailedError) Unwrap() error { return e.Err }

// ValidationError covers malformed input (bad game type, race target out of
// bounds, self-challenge).
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}
