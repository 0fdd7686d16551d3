package entities

import (
	"time"
)

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusOpen   BetStatus = "open"
	BetStatusJudged BetStatus = "judged"
	BetStatusVoid   BetStatus = "void"
)

// WagerType represents how a bet's outcome is judged
type WagerType string

const (
	WagerTypeYesNo        WagerType = "yes_no"
	WagerTypeOverUnder    WagerType = "over_under"
	WagerTypeClosestGuess WagerType = "closest_guess"
)

// BetMode distinguishes many-party group bets from two-party challenges
type BetMode string

const (
	BetModeGroup      BetMode = "group"
	BetModeHeadToHead BetMode = "head_to_head"
)

// AcceptanceState is the challenge sub-state of a head-to-head bet,
// independent of the betting status
type AcceptanceState string

const (
	AcceptancePending  AcceptanceState = "pending"
	AcceptanceAccepted AcceptanceState = "accepted"
	AcceptanceDeclined AcceptanceState = "declined"
)

// Void reasons written to terminal bets
const (
	VoidReasonOnTheLine        = "on the line"
	VoidReasonNoCorrectPicks   = "no correct picks"
	VoidReasonNoOneCorrect     = "no one picked correctly"
	VoidReasonExactTie         = "exact tie"
	VoidReasonMissingPick      = "missing pick"
	VoidReasonChallengeExpired = "challenge expired"
)

// OddsRatio is an asymmetric stake pair for a head-to-head bet. The
// favored side stakes more to win less.
type OddsRatio struct {
	FavoredShare  int64
	UnderdogShare int64
}

// Bet represents one wager. Group bets settle against a per-group ledger;
// head-to-head bets carry their result on the record itself.
type Bet struct {
	ID          int64     `db:"id"`
	GroupID     *int64    `db:"group_id"`
	CreatorID   int64     `db:"creator_id"`
	Title       string    `db:"title"`
	Mode        BetMode   `db:"mode"`
	WagerType   WagerType `db:"wager_type"`
	Status      BetStatus `db:"status"`
	WagerAmount int64     `db:"wager_amount"`
	Line        *float64  `db:"line"`

	// Head-to-head fields. The challenger is the favored side when an
	// odds ratio is configured; the stakes are the actual amounts risked.
	ChallengerID  *int64           `db:"challenger_id"`
	ChallengeeID  *int64           `db:"challengee_id"`
	Acceptance    *AcceptanceState `db:"acceptance"`
	FavoredStake  *int64           `db:"favored_stake"`
	UnderdogStake *int64           `db:"underdog_stake"`

	// Settlement fields, populated only on terminal bets
	OutcomeValue    *string   `db:"outcome_value"`
	PayoutPerWinner int64     `db:"payout_per_winner"`
	VoidReason      *string   `db:"void_reason"`
	WinnerID        *int64    `db:"winner_id"`
	LoserID         *int64    `db:"loser_id"`
	WinnerPayout    int64     `db:"winner_payout"`

	ClosingAt time.Time  `db:"closing_at"`
	CreatedAt time.Time  `db:"created_at"`
	JudgedAt  *time.Time `db:"judged_at"`
}

// BetDetail combines a bet with its submitted picks
type BetDetail struct {
	Bet   *Bet
	Picks []*Pick
}

// IsOpen checks if the bet is still in its open state
func (b *Bet) IsOpen() bool {
	return b.Status == BetStatusOpen
}

// IsTerminal checks if the bet has been settled one way or the other
func (b *Bet) IsTerminal() bool {
	return b.Status == BetStatusJudged || b.Status == BetStatusVoid
}

// IsClosed reports whether the bet is closed at the given instant.
// Closed is a predicate, not a stored state: a bet past its closing time
// is closed even though its status still reads open.
func (b *Bet) IsClosed(now time.Time) bool {
	return b.Status != BetStatusOpen || !now.Before(b.ClosingAt)
}

// CanAcceptPicks checks if new picks may be submitted at the given instant
func (b *Bet) CanAcceptPicks(now time.Time) bool {
	if b.IsClosed(now) {
		return false
	}
	if b.IsHeadToHead() && b.Acceptance != nil && *b.Acceptance == AcceptanceDeclined {
		return false
	}
	return true
}

// IsGroup checks if this is a group-mode bet
func (b *Bet) IsGroup() bool {
	return b.Mode == BetModeGroup
}

// IsHeadToHead checks if this is a two-party challenge
func (b *Bet) IsHeadToHead() bool {
	return b.Mode == BetModeHeadToHead
}

// IsParticipant checks if a user is one of the two challenge parties
func (b *Bet) IsParticipant(userID int64) bool {
	if !b.IsHeadToHead() {
		return false
	}
	return (b.ChallengerID != nil && *b.ChallengerID == userID) ||
		(b.ChallengeeID != nil && *b.ChallengeeID == userID)
}

// Opponent returns the other party of a head-to-head bet, or 0 for
// non-participants
func (b *Bet) Opponent(userID int64) int64 {
	if b.ChallengerID != nil && *b.ChallengerID == userID && b.ChallengeeID != nil {
		return *b.ChallengeeID
	}
	if b.ChallengeeID != nil && *b.ChallengeeID == userID && b.ChallengerID != nil {
		return *b.ChallengerID
	}
	return 0
}

// HasOdds checks if a head-to-head bet carries an asymmetric stake pair
func (b *Bet) HasOdds() bool {
	return b.FavoredStake != nil && b.UnderdogStake != nil
}

// StakeOf returns the amount a head-to-head participant has at risk.
// The challenger stakes the favored share when odds are configured.
func (b *Bet) StakeOf(userID int64) int64 {
	if !b.HasOdds() {
		return b.WagerAmount
	}
	if b.ChallengerID != nil && *b.ChallengerID == userID {
		return *b.FavoredStake
	}
	return *b.UnderdogStake
}

// ParticipantIDs returns the user ids participating in the bet. For group
// bets a pick implies participation; for head-to-head bets the two parties
// are fixed at creation.
func (d *BetDetail) ParticipantIDs() []int64 {
	if d.Bet.IsHeadToHead() {
		ids := make([]int64, 0, 2)
		if d.Bet.ChallengerID != nil {
			ids = append(ids, *d.Bet.ChallengerID)
		}
		if d.Bet.ChallengeeID != nil {
			ids = append(ids, *d.Bet.ChallengeeID)
		}
		return ids
	}
	ids := make([]int64, 0, len(d.Picks))
	for _, p := range d.Picks {
		ids = append(ids, p.UserID)
	}
	return ids
}

// PickOf returns the stored pick for a user, or nil if none was submitted
func (d *BetDetail) PickOf(userID int64) *Pick {
	for _, p := range d.Picks {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
