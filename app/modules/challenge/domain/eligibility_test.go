package challengedomain

import (
	"errors"
	"testing"
	"time"

	"github.com/capital-ladder/backend/app/shared/apperrors"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	rules := Rules{ChallengeRange: 2}
	inCooldown := now.Add(time.Hour)
	expiredCooldown := now.Add(-time.Hour)

	tests := []struct {
		name           string
		challengerRank int
		targetRank     int
		cooldownUntil  *time.Time
		wantEligible   bool
		wantReason     apperrors.IneligibilityReason
	}{
		{
			name:           "adjacent rank, no cooldown",
			challengerRank: 10,
			targetRank:     9,
			wantEligible:   true,
		},
		{
			name:           "at edge of range",
			challengerRank: 10,
			targetRank:     8,
			wantEligible:   true,
		},
		{
			name:           "downward challenge within range",
			challengerRank: 5,
			targetRank:     7,
			wantEligible:   true,
		},
		{
			name:           "active cooldown blocks",
			challengerRank: 10,
			targetRank:     9,
			cooldownUntil:  &inCooldown,
			wantEligible:   false,
			wantReason:     apperrors.ReasonInCooldown,
		},
		{
			name:           "expired cooldown does not block",
			challengerRank: 10,
			targetRank:     9,
			cooldownUntil:  &expiredCooldown,
			wantEligible:   true,
		},
		{
			name:           "rank gap too wide",
			challengerRank: 10,
			targetRank:     5,
			wantEligible:   false,
			wantReason:     apperrors.ReasonOutOfRange,
		},
		{
			name:           "cooldown checked before range",
			challengerRank: 10,
			targetRank:     1,
			cooldownUntil:  &inCooldown,
			wantEligible:   false,
			wantReason:     apperrors.ReasonInCooldown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.challengerRank, tt.targetRank, tt.cooldownUntil, now, rules)
			if verdict.Eligible != tt.wantEligible {
				t.Fatalf("Eligible = %v, want %v", verdict.Eligible, tt.wantEligible)
			}
			if !tt.wantEligible && verdict.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", verdict.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cooldown := now.Add(30 * time.Minute)
	rules := Rules{ChallengeRange: 2}

	first := Evaluate(10, 9, &cooldown, now, rules)
	for i := 0; i < 100; i++ {
		got := Evaluate(10, 9, &cooldown, now, rules)
		if got != first {
			t.Fatalf("Evaluate returned different verdicts for identical inputs: %+v vs %+v", got, first)
		}
	}
}

func TestEvaluateCooldownRemaining(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cooldown := now.Add(14 * time.Hour)

	verdict := Evaluate(10, 9, &cooldown, now, Rules{ChallengeRange: 2})
	if verdict.Eligible {
		t.Fatal("expected ineligible")
	}
	if verdict.CooldownRemaining != 14*time.Hour {
		t.Errorf("CooldownRemaining = %v, want 14h", verdict.CooldownRemaining)
	}
}

func TestVerdictErr(t *testing.T) {
	eligible := Verdict{Eligible: true}
	if err := eligible.Err(2); err != nil {
		t.Fatalf("eligible verdict produced error: %v", err)
	}

	denied := Verdict{Eligible: false, Reason: apperrors.ReasonOutOfRange, RankGap: 5}
	err := denied.Err(2)
	if err == nil {
		t.Fatal("expected error from denial verdict")
	}
	var ineligible *apperrors.IneligibleError
	if !errors.As(err, &ineligible) {
		t.Fatalf("expected IneligibleError, got %T", err)
	}
	if ineligible.RankGap != 5 || ineligible.AllowedRange != 2 {
		t.Errorf("error fields = gap %d range %d, want 5 and 2", ineligible.RankGap, ineligible.AllowedRange)
	}
}
