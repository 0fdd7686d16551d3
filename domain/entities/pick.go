package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pick value tokens for yes_no and over_under bets
const (
	PickYes   = "yes"
	PickNo    = "no"
	PickOver  = "over"
	PickUnder = "under"
)

// Pick is one participant's prediction for a bet. Picks are immutable once
// submitted; a second submission by the same user is rejected.
type Pick struct {
	ID        int64     `db:"id"`
	BetID     int64     `db:"bet_id"`
	UserID    int64     `db:"user_id"`
	Value     string    `db:"value"`
	IsWinner  *bool     `db:"is_winner"`
	Payout    *int64    `db:"payout"`
	CreatedAt time.Time `db:"created_at"`
}

// NumericValue parses the pick as a real number. Only valid for
// closest_guess picks, which are stored as their decimal text.
func (p *Pick) NumericValue() (float64, error) {
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("pick %q is not numeric: %w", p.Value, err)
	}
	return v, nil
}

// NormalizePickValue validates a raw prediction against the wager type's
// expected domain and returns its canonical stored form.
func NormalizePickValue(wagerType WagerType, raw string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch wagerType {
	case WagerTypeYesNo:
		if v != PickYes && v != PickNo {
			return "", fmt.Errorf("%w: expected %q or %q, got %q", ErrInvalidPickValue, PickYes, PickNo, raw)
		}
		return v, nil
	case WagerTypeOverUnder:
		if v != PickOver && v != PickUnder {
			return "", fmt.Errorf("%w: expected %q or %q, got %q", ErrInvalidPickValue, PickOver, PickUnder, raw)
		}
		return v, nil
	case WagerTypeClosestGuess:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a number", ErrInvalidPickValue, raw)
		}
		// Canonical decimal form so equal guesses compare equal as text
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: unknown wager type %q", ErrInvalidPickValue, wagerType)
	}
}

// ParseOutcomeValue validates an authoritative outcome against the wager
// type. Yes/no outcomes are the token itself; over_under and closest_guess
// outcomes are real numbers.
func ParseOutcomeValue(wagerType WagerType, raw string) (string, float64, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch wagerType {
	case WagerTypeYesNo:
		if v != PickYes && v != PickNo {
			return "", 0, fmt.Errorf("%w: expected %q or %q, got %q", ErrInvalidOutcome, PickYes, PickNo, raw)
		}
		return v, 0, nil
	case WagerTypeOverUnder, WagerTypeClosestGuess:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %q is not a number", ErrInvalidOutcome, raw)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), n, nil
	default:
		return "", 0, fmt.Errorf("%w: unknown wager type %q", ErrInvalidOutcome, wagerType)
	}
}
