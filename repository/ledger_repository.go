package repository

import (
	"context"
	"fmt"

	"betbook/database"
	"betbook/domain/entities"

	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements per-group ledger data access
type LedgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository bound to a transaction
func newLedgerRepositoryWithTx(tx Queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

const ledgerColumns = `
	id, group_id, user_id, balance, wins, losses, total_bets, created_at, updated_at`

func scanLedgerEntry(row pgx.Row) (*entities.LedgerEntry, error) {
	var entry entities.LedgerEntry
	err := row.Scan(
		&entry.ID,
		&entry.GroupID,
		&entry.UserID,
		&entry.Balance,
		&entry.Wins,
		&entry.Losses,
		&entry.TotalBets,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Get retrieves a member's ledger entry, or nil when the member has no
// settled bets in the group yet
func (r *LedgerRepository) Get(ctx context.Context, groupID, userID int64) (*entities.LedgerEntry, error) {
	query := `SELECT` + ledgerColumns + `
		FROM ledger_entries
		WHERE group_id = $1 AND user_id = $2`

	entry, err := scanLedgerEntry(r.q.QueryRow(ctx, query, groupID, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry for user %d in group %d: %w", userID, groupID, err)
	}

	return entry, nil
}

// ApplyDelta adjusts a member's balance and running record in one upsert,
// creating the entry lazily on first settlement. Returns the updated row.
func (r *LedgerRepository) ApplyDelta(ctx context.Context, groupID, userID int64, delta entities.LedgerDelta) (*entities.LedgerEntry, error) {
	wins := int64(0)
	losses := int64(0)
	if delta.Won {
		wins = 1
	} else {
		losses = 1
	}

	query := `
		INSERT INTO ledger_entries (group_id, user_id, balance, wins, losses, total_bets)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT ON CONSTRAINT ledger_one_per_member DO UPDATE
		SET balance = ledger_entries.balance + EXCLUDED.balance,
		    wins = ledger_entries.wins + EXCLUDED.wins,
		    losses = ledger_entries.losses + EXCLUDED.losses,
		    total_bets = ledger_entries.total_bets + 1,
		    updated_at = NOW()
		RETURNING` + ledgerColumns

	entry, err := scanLedgerEntry(r.q.QueryRow(ctx, query, groupID, userID, delta.BalanceChange, wins, losses))
	if err != nil {
		return nil, fmt.Errorf("failed to apply ledger delta for user %d in group %d: %w", userID, groupID, err)
	}

	return entry, nil
}

// ListByGroup returns a group's ledger ordered by balance, richest first
func (r *LedgerRepository) ListByGroup(ctx context.Context, groupID int64) ([]*entities.LedgerEntry, error) {
	query := `SELECT` + ledgerColumns + `
		FROM ledger_entries
		WHERE group_id = $1
		ORDER BY balance DESC, user_id`

	rows, err := r.q.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger for group %d: %w", groupID, err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger entries: %w", err)
	}

	return entries, nil
}
