package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"betbook/database"
	"betbook/domain/entities"
)

// LedgerChangeRepository implements the ledger audit trail
type LedgerChangeRepository struct {
	q Queryable
}

// NewLedgerChangeRepository creates a new ledger change repository
func NewLedgerChangeRepository(db *database.DB) *LedgerChangeRepository {
	return &LedgerChangeRepository{q: db.Pool}
}

// newLedgerChangeRepositoryWithTx creates a new ledger change repository bound to a transaction
func newLedgerChangeRepositoryWithTx(tx Queryable) *LedgerChangeRepository {
	return &LedgerChangeRepository{q: tx}
}

// Record stores one audit row for a ledger mutation
func (r *LedgerChangeRepository) Record(ctx context.Context, change *entities.LedgerChange) error {
	var metadataJSON []byte
	if change.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(change.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO ledger_changes (
			group_id, user_id, balance_before, balance_after, change_amount,
			transaction_type, metadata, related_bet_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		change.GroupID,
		change.UserID,
		change.BalanceBefore,
		change.BalanceAfter,
		change.ChangeAmount,
		change.TransactionType,
		metadataJSON,
		change.RelatedBetID,
	).Scan(&change.ID, &change.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record ledger change: %w", err)
	}

	return nil
}

// GetRecentByUser returns a member's latest audit rows, newest first
func (r *LedgerChangeRepository) GetRecentByUser(ctx context.Context, groupID, userID int64, limit int) ([]*entities.LedgerChange, error) {
	query := `
		SELECT id, group_id, user_id, balance_before, balance_after, change_amount,
		       transaction_type, metadata, related_bet_id, created_at
		FROM ledger_changes
		WHERE group_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, groupID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger changes for user %d in group %d: %w", userID, groupID, err)
	}
	defer rows.Close()

	var changes []*entities.LedgerChange
	for rows.Next() {
		var change entities.LedgerChange
		var metadataJSON []byte
		if err := rows.Scan(
			&change.ID,
			&change.GroupID,
			&change.UserID,
			&change.BalanceBefore,
			&change.BalanceAfter,
			&change.ChangeAmount,
			&change.TransactionType,
			&metadataJSON,
			&change.RelatedBetID,
			&change.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger change: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &change.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		changes = append(changes, &change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger changes: %w", err)
	}

	return changes, nil
}
