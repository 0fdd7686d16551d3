package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBetCreated         EventType = "bet_created"
	EventTypePickSubmitted      EventType = "pick_submitted"
	EventTypeChallengeResponded EventType = "challenge_responded"
	EventTypeBetSettled         EventType = "bet_settled"
	EventTypePayoutNotification EventType = "payout_notification"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BetCreatedEvent informs the activity feed of a new bet
type BetCreatedEvent struct {
	BetID     int64
	GroupID   *int64
	CreatorID int64
	Title     string
	Mode      string
	WagerType string
}

func (e BetCreatedEvent) Type() EventType {
	return EventTypeBetCreated
}

// PickSubmittedEvent records a stored pick
type PickSubmittedEvent struct {
	BetID  int64
	UserID int64
}

func (e PickSubmittedEvent) Type() EventType {
	return EventTypePickSubmitted
}

// ChallengeRespondedEvent records a head-to-head acceptance transition
type ChallengeRespondedEvent struct {
	BetID        int64
	ChallengeeID int64
	Accepted     bool
}

func (e ChallengeRespondedEvent) Type() EventType {
	return EventTypeChallengeResponded
}

// BetSettledEvent records a terminal bet transition
type BetSettledEvent struct {
	BetID           int64
	GroupID         *int64
	Status          string
	OutcomeValue    string
	Winners         []int64
	PayoutPerWinner int64
	VoidReason      string
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// PayoutNotificationEvent is emitted once per participant after a
// settlement commits; the notification dispatcher consumes these
type PayoutNotificationEvent struct {
	UserID   int64
	BetID    int64
	BetTitle string
	Won      bool
	Amount   int64
}

func (e PayoutNotificationEvent) Type() EventType {
	return EventTypePayoutNotification
}
