package interfaces

import (
	"context"
	"time"

	"betbook/domain/entities"
	"betbook/domain/events"
)

// BetRepository provides bet data access. Reads that find nothing return
// (nil, nil).
type BetRepository interface {
	// Create persists a new bet and fills in its id and creation time
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByID retrieves a bet by id
	GetByID(ctx context.Context, id int64) (*entities.Bet, error)

	// GetDetailByID retrieves a bet together with its picks
	GetDetailByID(ctx context.Context, id int64) (*entities.BetDetail, error)

	// UpdateAcceptance transitions the challenge sub-state only when the
	// current value matches from; reports whether a row changed
	UpdateAcceptance(ctx context.Context, betID int64, from, to entities.AcceptanceState) (bool, error)

	// SettleFromOpen writes the bet's terminal fields with an optimistic
	// precondition on the open status; reports whether a row changed.
	// Zero rows means a concurrent settlement won.
	SettleFromOpen(ctx context.Context, bet *entities.Bet) (bool, error)

	// ListOpenByGroup returns open bets for a group, newest first
	ListOpenByGroup(ctx context.Context, groupID int64) ([]*entities.Bet, error)

	// ListByParticipant returns bets the user has a pick on or is a side
	// of, newest first
	ListByParticipant(ctx context.Context, userID int64) ([]*entities.Bet, error)

	// GetExpiredPendingChallenges returns head-to-head bets still pending
	// acceptance whose closing time has passed
	GetExpiredPendingChallenges(ctx context.Context, now time.Time) ([]*entities.Bet, error)
}

// PickRepository provides pick data access
type PickRepository interface {
	// Create stores a pick. Returns entities.ErrDuplicatePick when the
	// user already has one for the bet, including under concurrent races.
	Create(ctx context.Context, pick *entities.Pick) error

	// GetByBet returns all picks for a bet
	GetByBet(ctx context.Context, betID int64) ([]*entities.Pick, error)

	// UpdateResults writes winner flags and payouts after judging
	UpdateResults(ctx context.Context, picks []*entities.Pick) error
}

// LedgerRepository provides access to (group, user) balance records
type LedgerRepository interface {
	// Get retrieves one entry, or (nil, nil) when the pair has never
	// settled a bet
	Get(ctx context.Context, groupID, userID int64) (*entities.LedgerEntry, error)

	// ApplyDelta lazily creates the entry and applies a settlement share:
	// balance and win/loss/total counters in one statement
	ApplyDelta(ctx context.Context, groupID, userID int64, delta entities.LedgerDelta) (*entities.LedgerEntry, error)

	// ListByGroup returns a group's entries ordered by balance descending
	ListByGroup(ctx context.Context, groupID int64) ([]*entities.LedgerEntry, error)
}

// LedgerChangeRepository records the audit trail of ledger mutations
type LedgerChangeRepository interface {
	Record(ctx context.Context, change *entities.LedgerChange) error
	GetRecentByUser(ctx context.Context, groupID, userID int64, limit int) ([]*entities.LedgerChange, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events during a transaction and
// releases them only after commit
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all pending events; called after commit
	Flush(ctx context.Context) error

	// Discard drops all pending events; called on rollback
	Discard()
}

// UnitOfWork bounds one atomic storage operation. All repositories
// obtained from it share a single transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BetRepository() BetRepository
	PickRepository() PickRepository
	LedgerRepository() LedgerRepository
	LedgerChangeRepository() LedgerChangeRepository

	// EventBus returns the transactional publisher tied to this unit of
	// work; events survive only if the transaction commits
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
