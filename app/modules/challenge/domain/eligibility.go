package challengedomain

import (
	"time"

	"github.com/capital-ladder/backend/app/shared/apperrors"
)

// Rules are the league constants that gate challenge creation.
type Rules struct {
	// ChallengeRange is the maximum rank gap, in either direction, between
	// challenger and target.
	ChallengeRange int
}

// Verdict is the outcome of an eligibility evaluation.
type Verdict struct {
	Eligible bool
	Reason   apperrors.IneligibilityReason
	// CooldownRemaining is set when Reason is ReasonInCooldown.
	CooldownRemaining time.Duration
	// RankGap is set when Reason is ReasonOutOfRange.
	RankGap int
}

// Evaluate decides whether a challenger may issue a challenge to a target.
// It is pure: same inputs, same verdict. Both the leaderboard display and the
// creation path call this exact function so the UI and the enforcement can
// never disagree. Rules are checked in order; the first failing rule wins.
// Self-challenge prevention is the caller's job, before this runs.
func Evaluate(challengerRank, targetRank int, cooldownUntil *time.Time, now time.Time, rules Rules) Verdict {
	if cooldownUntil != nil && cooldownUntil.After(now) {
		return Verdict{
			Eligible:          false,
			Reason:            apperrors.ReasonInCooldown,
			CooldownRemaining: cooldownUntil.Sub(now),
		}
	}

	gap := challengerRank - targetRank
	if gap < 0 {
		gap = -gap
	}
	if gap > rules.ChallengeRange {
		return Verdict{
			Eligible: false,
			Reason:   apperrors.ReasonOutOfRange,
			RankGap:  gap,
		}
	}

	return Verdict{Eligible: true}
}

// Err converts a denial verdict into its domain error. Returns nil for an
// eligible verdict.
func (v Verdict) Err(allowedRange int) error {
	if v.Eligible {
		return nil
	}
	return &apperrors.IneligibleError{
		Reason:            v.Reason,
		CooldownRemaining: v.CooldownRemaining,
		RankGap:           v.RankGap,
		AllowedRange:      allowedRange,
	}
}
