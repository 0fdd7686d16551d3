package repository

import (
	"context"
	"fmt"

	"betbook/database"
	"betbook/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PickRepository implements pick data access
type PickRepository struct {
	q Queryable
}

// NewPickRepository creates a new pick repository
func NewPickRepository(db *database.DB) *PickRepository {
	return &PickRepository{q: db.Pool}
}

// newPickRepositoryWithTx creates a new pick repository bound to a transaction
func newPickRepositoryWithTx(tx Queryable) *PickRepository {
	return &PickRepository{q: tx}
}

// Create persists a pick. Each user gets one pick per bet; a second
// attempt returns entities.ErrDuplicatePick.
func (r *PickRepository) Create(ctx context.Context, pick *entities.Pick) error {
	query := `
		INSERT INTO picks (bet_id, user_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT picks_one_per_user DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, pick.BetID, pick.UserID, pick.Value).
		Scan(&pick.ID, &pick.CreatedAt)
	if err == pgx.ErrNoRows {
		return entities.ErrDuplicatePick
	}
	if err != nil {
		return fmt.Errorf("failed to create pick: %w", err)
	}

	return nil
}

// GetByBet returns all picks for a bet in submission order
func (r *PickRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.Pick, error) {
	query := `
		SELECT id, bet_id, user_id, value, is_winner, payout, created_at
		FROM picks
		WHERE bet_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get picks for bet %d: %w", betID, err)
	}
	defer rows.Close()

	var picks []*entities.Pick
	for rows.Next() {
		var pick entities.Pick
		if err := rows.Scan(
			&pick.ID,
			&pick.BetID,
			&pick.UserID,
			&pick.Value,
			&pick.IsWinner,
			&pick.Payout,
			&pick.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, &pick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read picks: %w", err)
	}

	return picks, nil
}

// UpdateResults writes the win flag and payout decided at settlement
func (r *PickRepository) UpdateResults(ctx context.Context, picks []*entities.Pick) error {
	query := `
		UPDATE picks
		SET is_winner = $2, payout = $3
		WHERE id = $1
	`

	for _, pick := range picks {
		if _, err := r.q.Exec(ctx, query, pick.ID, pick.IsWinner, pick.Payout); err != nil {
			return fmt.Errorf("failed to update pick %d: %w", pick.ID, err)
		}
	}

	return nil
}
