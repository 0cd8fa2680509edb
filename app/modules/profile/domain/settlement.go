package profiledomain

// SettlementPlan is the rank outcome of a completed match, computed before any
// row is written.
type SettlementPlan struct {
	NewWinnerRank int
	NewLoserRank  int
	Swapped       bool
}

// PlanSettlement decides the rank outcome for a completed match. Higher rank
// number means worse standing. When the winner sits below the loser the two
// swap positions directly; nobody else on the ladder moves. When the winner
// was already ahead the ranks stay put.
func PlanSettlement(winnerRank, loserRank int) SettlementPlan {
	if winnerRank > loserRank {
		return SettlementPlan{
			NewWinnerRank: loserRank,
			NewLoserRank:  winnerRank,
			Swapped:       true,
		}
	}
	return SettlementPlan{
		NewWinnerRank: winnerRank,
		NewLoserRank:  loserRank,
		Swapped:       false,
	}
}
