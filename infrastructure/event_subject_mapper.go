package infrastructure

import (
	"fmt"

	"betbook/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBetCreated:
		return "bets.created"
	case events.EventTypePickSubmitted:
		return "bets.picks.submitted"
	case events.EventTypeChallengeResponded:
		return "bets.challenges.responded"
	case events.EventTypeBetSettled:
		return "bets.settled"
	case events.EventTypePayoutNotification:
		return "bets.payouts.notified"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "bets.created":
		return events.EventTypeBetCreated
	case "bets.picks.submitted":
		return events.EventTypePickSubmitted
	case "bets.challenges.responded":
		return events.EventTypeChallengeResponded
	case "bets.settled":
		return events.EventTypeBetSettled
	case "bets.payouts.notified":
		return events.EventTypePayoutNotification
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"bets.created",
		"bets.picks.submitted",
		"bets.challenges.responded",
		"bets.settled",
		"bets.payouts.notified",
	}
}
