package entities

// JudgingResult is the complete decision for one bet: either a judged
// settlement with winners, or a void with a reason. It is computed in full
// before anything is written.
type JudgingResult struct {
	Status       BetStatus
	OutcomeValue string
	Winners      []int64
	VoidReason   string

	// Populated only for decisive head-to-head results
	WinnerID *int64
	LoserID  *int64
}

// IsVoid checks if the result voids the bet
func (r *JudgingResult) IsVoid() bool {
	return r.Status == BetStatusVoid
}

// IsWinner checks if a user is in the winner set
func (r *JudgingResult) IsWinner(userID int64) bool {
	for _, id := range r.Winners {
		if id == userID {
			return true
		}
	}
	return false
}

// SettlementResult is returned to the caller of a successful settlement
type SettlementResult struct {
	Bet             *Bet
	Winners         []int64
	Pot             int64
	PayoutPerWinner int64
	VoidReason      string

	// Per-user balance changes applied to the group ledger; empty for
	// head-to-head and void settlements
	LedgerDeltas map[int64]int64
}
