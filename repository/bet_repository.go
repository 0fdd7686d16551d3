package repository

import (
	"context"
	"fmt"
	"time"

	"betbook/database"
	"betbook/domain/entities"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements bet data access
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository bound to a transaction
func newBetRepositoryWithTx(tx Queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `
	id, group_id, creator_id, title, mode, wager_type, status, wager_amount, line,
	challenger_id, challengee_id, acceptance, favored_stake, underdog_stake,
	outcome_value, payout_per_winner, void_reason, winner_id, loser_id, winner_payout,
	closing_at, created_at, judged_at`

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var bet entities.Bet
	err := row.Scan(
		&bet.ID,
		&bet.GroupID,
		&bet.CreatorID,
		&bet.Title,
		&bet.Mode,
		&bet.WagerType,
		&bet.Status,
		&bet.WagerAmount,
		&bet.Line,
		&bet.ChallengerID,
		&bet.ChallengeeID,
		&bet.Acceptance,
		&bet.FavoredStake,
		&bet.UnderdogStake,
		&bet.OutcomeValue,
		&bet.PayoutPerWinner,
		&bet.VoidReason,
		&bet.WinnerID,
		&bet.LoserID,
		&bet.WinnerPayout,
		&bet.ClosingAt,
		&bet.CreatedAt,
		&bet.JudgedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create persists a new bet
func (r *BetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO bets (
			group_id, creator_id, title, mode, wager_type, status, wager_amount, line,
			challenger_id, challengee_id, acceptance, favored_stake, underdog_stake, closing_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.GroupID,
		bet.CreatorID,
		bet.Title,
		bet.Mode,
		bet.WagerType,
		bet.Status,
		bet.WagerAmount,
		bet.Line,
		bet.ChallengerID,
		bet.ChallengeeID,
		bet.Acceptance,
		bet.FavoredStake,
		bet.UnderdogStake,
		bet.ClosingAt,
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	query := `SELECT` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet by ID %d: %w", id, err)
	}

	return bet, nil
}

// GetDetailByID retrieves a bet together with its picks
func (r *BetRepository) GetDetailByID(ctx context.Context, id int64) (*entities.BetDetail, error) {
	bet, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, nil
	}

	query := `
		SELECT id, bet_id, user_id, value, is_winner, payout, created_at
		FROM picks
		WHERE bet_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get picks for bet %d: %w", id, err)
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

	return &entities.BetDetail{Bet: bet, Picks: picks}, nil
}

// UpdateAcceptance transitions the challenge sub-state with a precondition
// on the current value. Reports whether a row changed.
func (r *BetRepository) UpdateAcceptance(ctx context.Context, betID int64, from, to entities.AcceptanceState) (bool, error) {
	query := `
		UPDATE bets
		SET acceptance = $3
		WHERE id = $1 AND acceptance = $2 AND mode = 'head_to_head'
	`

	tag, err := r.q.Exec(ctx, query, betID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update acceptance for bet %d: %w", betID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// SettleFromOpen writes the bet's terminal fields only while the bet is
// still open. Zero affected rows means a concurrent settlement won the
// race.
func (r *BetRepository) SettleFromOpen(ctx context.Context, bet *entities.Bet) (bool, error) {
	query := `
		UPDATE bets
		SET status = $2,
		    outcome_value = $3,
		    payout_per_winner = $4,
		    void_reason = $5,
		    winner_id = $6,
		    loser_id = $7,
		    winner_payout = $8,
		    judged_at = $9
		WHERE id = $1 AND status = 'open'
	`

	tag, err := r.q.Exec(ctx, query,
		bet.ID,
		bet.Status,
		bet.OutcomeValue,
		bet.PayoutPerWinner,
		bet.VoidReason,
		bet.WinnerID,
		bet.LoserID,
		bet.WinnerPayout,
		bet.JudgedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to settle bet %d: %w", bet.ID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListOpenByGroup returns a group's open bets, newest first
func (r *BetRepository) ListOpenByGroup(ctx context.Context, groupID int64) ([]*entities.Bet, error) {
	query := `SELECT` + betColumns + `
		FROM bets
		WHERE group_id = $1 AND status = 'open'
		ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open bets for group %d: %w", groupID, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// ListByParticipant returns bets the user has a pick on or is a side of,
// newest first
func (r *BetRepository) ListByParticipant(ctx context.Context, userID int64) ([]*entities.Bet, error) {
	query := `SELECT` + betColumns + `
		FROM bets
		WHERE challenger_id = $1 OR challengee_id = $1
		   OR id IN (SELECT bet_id FROM picks WHERE user_id = $1)
		ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// GetExpiredPendingChallenges returns head-to-head bets still pending
// acceptance whose closing time has passed
func (r *BetRepository) GetExpiredPendingChallenges(ctx context.Context, now time.Time) ([]*entities.Bet, error) {
	query := `SELECT` + betColumns + `
		FROM bets
		WHERE status = 'open' AND acceptance = 'pending' AND closing_at <= $1
		ORDER BY closing_at`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired pending challenges: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func collectBets(rows pgx.Rows) ([]*entities.Bet, error) {
	var bets []*entities.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bets: %w", err)
	}
	return bets, nil
}
