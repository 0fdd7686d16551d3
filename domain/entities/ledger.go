package entities

import "time"

// TransactionType categorizes ledger changes
type TransactionType string

const (
	TransactionTypeBetWin  TransactionType = "bet_win"
	TransactionTypeBetLoss TransactionType = "bet_loss"
)

// LedgerEntry is the running balance record for one (group, user) pair.
// Entries are created lazily on first settlement and mutated only by the
// settlement path; the reporting side only reads them.
type LedgerEntry struct {
	ID        int64     `db:"id"`
	GroupID   int64     `db:"group_id"`
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	Wins      int64     `db:"wins"`
	Losses    int64     `db:"losses"`
	TotalBets int64     `db:"total_bets"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LedgerDelta is one participant's share of a settlement
type LedgerDelta struct {
	BalanceChange int64
	Won           bool
}

// LedgerChange is an audit record of a single balance mutation, written in
// the same transaction as the mutation itself
type LedgerChange struct {
	ID              int64           `db:"id"`
	GroupID         int64           `db:"group_id"`
	UserID          int64           `db:"user_id"`
	BalanceBefore   int64           `db:"balance_before"`
	BalanceAfter    int64           `db:"balance_after"`
	ChangeAmount    int64           `db:"change_amount"`
	TransactionType TransactionType `db:"transaction_type"`
	Metadata        map[string]any  `db:"metadata"`
	RelatedBetID    *int64          `db:"related_bet_id"`
	CreatedAt       time.Time       `db:"created_at"`
}

// NetRecord returns wins minus losses
func (e *LedgerEntry) NetRecord() int64 {
	return e.Wins - e.Losses
}
