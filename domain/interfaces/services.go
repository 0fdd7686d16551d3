package interfaces

import (
	"context"
	"time"

	"betbook/domain/entities"
)

// BetService covers bet creation, the challenge lifecycle, and pick
// collection
type BetService interface {
	// CreateGroupBet creates an open group-mode bet with zero picks
	CreateGroupBet(ctx context.Context, groupID, creatorID int64, title string, wagerType entities.WagerType, wagerAmount int64, line *float64, closingAt time.Time) (*entities.Bet, error)

	// ProposeChallenge creates a pending head-to-head bet between two
	// users. The challenger is the favored side when odds are given.
	ProposeChallenge(ctx context.Context, challengerID, challengeeID int64, title string, wagerType entities.WagerType, wagerAmount int64, line *float64, odds *entities.OddsRatio, closingAt time.Time) (*entities.Bet, error)

	// SubmitPick stores one prediction per participant per bet. A
	// challengee's first pick accepts the challenge.
	SubmitPick(ctx context.Context, betID, userID int64, value string) (*entities.Pick, error)

	// DeclineChallenge declines a pending head-to-head bet
	DeclineChallenge(ctx context.Context, betID, userID int64) (*entities.Bet, error)

	// GetBetDetail retrieves a bet with its picks
	GetBetDetail(ctx context.Context, betID int64) (*entities.BetDetail, error)

	// ListOpenBets returns a group's open bets
	ListOpenBets(ctx context.Context, groupID int64) ([]*entities.Bet, error)

	// ListBetsForUser returns the bets a user participates in
	ListBetsForUser(ctx context.Context, userID int64) ([]*entities.Bet, error)

	// VoidExpiredChallenges voids pending challenges whose closing time
	// has passed and returns how many were swept
	VoidExpiredChallenges(ctx context.Context) (int, error)
}

// SettlementService judges a bet and applies the results atomically
type SettlementService interface {
	// Settle runs the one-time judging transition: computes the winner
	// set or void, calculates payouts, applies group ledger deltas, and
	// writes the terminal bet state, all in one unit of work
	Settle(ctx context.Context, betID int64, outcomeValue string, judgedBy int64) (*entities.SettlementResult, error)
}

// MetricsRecorder counts core operations. Implementations must be safe
// for concurrent use; a nil recorder disables metrics.
type MetricsRecorder interface {
	RecordPickSubmitted(ctx context.Context, wagerType entities.WagerType)
	RecordSettlement(ctx context.Context, mode entities.BetMode, status entities.BetStatus, seconds float64)
	RecordLedgerWrites(ctx context.Context, count int)
}

// LedgerService is the read side of the per-group ledger
type LedgerService interface {
	// Leaderboard returns a group's entries ordered by balance
	Leaderboard(ctx context.Context, groupID int64) ([]*entities.LedgerEntry, error)

	// RecentChanges returns a user's latest ledger audit records
	RecentChanges(ctx context.Context, groupID, userID int64, limit int) ([]*entities.LedgerChange, error)
}
