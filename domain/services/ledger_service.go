package services

import (
	"context"
	"fmt"

	"betbook/domain/entities"
	"betbook/domain/interfaces"
)

type ledgerService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewLedgerService creates the read-only ledger reporting service. All
// ledger writes happen inside settlement; this service never mutates.
func NewLedgerService(uowFactory interfaces.UnitOfWorkFactory) interfaces.LedgerService {
	return &ledgerService{uowFactory: uowFactory}
}

// Leaderboard returns a group's ledger entries ordered by balance
func (s *ledgerService) Leaderboard(ctx context.Context, groupID int64) ([]*entities.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	entries, err := uow.LedgerRepository().ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read: %w", err)
	}
	return entries, nil
}

// RecentChanges returns a user's latest ledger audit records
func (s *ledgerService) RecentChanges(ctx context.Context, groupID, userID int64, limit int) ([]*entities.LedgerChange, error) {
	if limit <= 0 {
		limit = 20
	}
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	changes, err := uow.LedgerChangeRepository().GetRecentByUser(ctx, groupID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger changes: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read: %w", err)
	}
	return changes, nil
}
