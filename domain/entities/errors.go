package entities

import "errors"

// Typed failures reported synchronously to callers of pick submission and
// judging. Side-effect failures (notifications, activity feed) are logged
// instead and never surface through these.
var (
	// ErrBetNotFound indicates a point read by id found nothing
	ErrBetNotFound = errors.New("bet not found")

	// ErrBetClosed indicates a pick arrived at or after closing time, or
	// on a bet that already left the open state
	ErrBetClosed = errors.New("bet is closed to new picks")

	// ErrNotYetClosed indicates a judging attempt before the closing time
	ErrNotYetClosed = errors.New("bet has not closed yet")

	// ErrAlreadySettled indicates a judging attempt on a terminal bet,
	// including the loser of two concurrent judging attempts
	ErrAlreadySettled = errors.New("bet has already been settled")

	// ErrDuplicatePick indicates the user already has a stored pick
	ErrDuplicatePick = errors.New("pick already submitted for this bet")

	// ErrInvalidPickValue indicates a prediction outside the wager type's
	// value domain
	ErrInvalidPickValue = errors.New("invalid pick value")

	// ErrInvalidOutcome indicates an outcome value outside the wager
	// type's value domain
	ErrInvalidOutcome = errors.New("invalid outcome value")

	// ErrUnauthorized indicates an actor other than the bet creator
	// attempted to judge
	ErrUnauthorized = errors.New("not authorized")

	// ErrChallengeDeclined indicates a pick on a declined head-to-head bet
	ErrChallengeDeclined = errors.New("challenge was declined")

	// ErrNotParticipant indicates a pick from a user outside a
	// head-to-head bet's two parties
	ErrNotParticipant = errors.New("user is not a participant of this bet")
)
