package profiledomain

import "testing"

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name       string
		winnerRank int
		loserRank  int
		want       SettlementPlan
	}{
		{
			name:       "winner below loser swaps",
			winnerRank: 5,
			loserRank:  3,
			want:       SettlementPlan{NewWinnerRank: 3, NewLoserRank: 5, Swapped: true},
		},
		{
			name:       "winner already ahead is a no-op on ranks",
			winnerRank: 3,
			loserRank:  5,
			want:       SettlementPlan{NewWinnerRank: 3, NewLoserRank: 5, Swapped: false},
		},
		{
			name:       "adjacent ranks swap",
			winnerRank: 2,
			loserRank:  1,
			want:       SettlementPlan{NewWinnerRank: 1, NewLoserRank: 2, Swapped: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSettlement(tt.winnerRank, tt.loserRank)
			if got != tt.want {
				t.Errorf("PlanSettlement(%d, %d) = %+v, want %+v", tt.winnerRank, tt.loserRank, got, tt.want)
			}
		})
	}
}
