package repository

import (
	"context"
	"fmt"

	"betbook/database"
	"betbook/domain/interfaces"
	"betbook/infrastructure"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus interfaces.TransactionalEventPublisher
	betRepo          interfaces.BetRepository
	pickRepo         interfaces.PickRepository
	ledgerRepo       interfaces.LedgerRepository
	ledgerChangeRepo interfaces.LedgerChangeRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Events published
// through a unit of work are buffered and handed to eventPublisher only
// after the transaction commits.
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:             db,
		eventPublisher: eventPublisher,
	}
}

type unitOfWorkFactory struct {
	db             *database.DB
	eventPublisher interfaces.EventPublisher
}

func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: infrastructure.NewNATSTransactionalPublisher(f.eventPublisher),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.betRepo = newBetRepositoryWithTx(tx)
	u.pickRepo = newPickRepositoryWithTx(tx)
	u.ledgerRepo = newLedgerRepositoryWithTx(tx)
	u.ledgerChangeRepo = newLedgerChangeRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		_ = u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// PickRepository returns the pick repository for this unit of work
func (u *unitOfWork) PickRepository() interfaces.PickRepository {
	if u.pickRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pickRepo
}

// LedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	if u.ledgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerRepo
}

// LedgerChangeRepository returns the ledger change repository for this unit of work
func (u *unitOfWork) LedgerChangeRepository() interfaces.LedgerChangeRepository {
	if u.ledgerChangeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerChangeRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
