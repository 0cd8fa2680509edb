package challengedomain

import (
	"testing"
	"time"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to sharedtypes.ChallengeStatus
	}{
		{sharedtypes.StatusPending, sharedtypes.StatusNegotiating},
		{sharedtypes.StatusPending, sharedtypes.StatusForfeited},
		{sharedtypes.StatusPending, sharedtypes.StatusExpired},
		{sharedtypes.StatusNegotiating, sharedtypes.StatusLive},
		{sharedtypes.StatusLive, sharedtypes.StatusCompleted},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tt.from, tt.to)
		}
	}

	// Everything terminal permits nothing.
	all := []sharedtypes.ChallengeStatus{
		sharedtypes.StatusPending, sharedtypes.StatusNegotiating, sharedtypes.StatusLive,
		sharedtypes.StatusCompleted, sharedtypes.StatusForfeited, sharedtypes.StatusExpired,
	}
	for _, from := range []sharedtypes.ChallengeStatus{sharedtypes.StatusCompleted, sharedtypes.StatusForfeited, sharedtypes.StatusExpired} {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}

	denied := []struct {
		from, to sharedtypes.ChallengeStatus
	}{
		{sharedtypes.StatusPending, sharedtypes.StatusLive},
		{sharedtypes.StatusPending, sharedtypes.StatusCompleted},
		{sharedtypes.StatusNegotiating, sharedtypes.StatusCompleted},
		{sharedtypes.StatusNegotiating, sharedtypes.StatusPending},
		{sharedtypes.StatusLive, sharedtypes.StatusNegotiating},
		{sharedtypes.StatusLive, sharedtypes.StatusForfeited},
	}
	for _, tt := range denied {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tt.from, tt.to)
		}
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name          string
		score1        int
		score2        int
		gamesToWin    int
		wantFirstSide bool
		wantOK        bool
	}{
		{"challenger reaches race", 7, 3, 7, true, true},
		{"challenged reaches race", 2, 7, 7, false, true},
		{"neither reaches race", 3, 3, 7, false, false},
		{"both at race is malformed", 7, 7, 7, false, false},
		{"zero scores", 0, 0, 3, false, false},
		{"over the race target", 9, 1, 7, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, ok := Winner(tt.score1, tt.score2, tt.gamesToWin)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && first != tt.wantFirstSide {
				t.Errorf("challengerWon = %v, want %v", first, tt.wantFirstSide)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if !IsOverdue(sharedtypes.StatusPending, past, now) {
		t.Error("pending past deadline should be overdue")
	}
	if IsOverdue(sharedtypes.StatusPending, future, now) {
		t.Error("pending before deadline should not be overdue")
	}
	// Only pending rows expire.
	for _, status := range []sharedtypes.ChallengeStatus{
		sharedtypes.StatusNegotiating, sharedtypes.StatusLive,
		sharedtypes.StatusCompleted, sharedtypes.StatusForfeited, sharedtypes.StatusExpired,
	} {
		if IsOverdue(status, past, now) {
			t.Errorf("%s past deadline should not be overdue", status)
		}
	}
}
