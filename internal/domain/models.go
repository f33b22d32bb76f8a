package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccountID uniquely identifies an account
type AccountID = uuid.UUID

// ApplicationID uniquely identifies a job application
type ApplicationID = uuid.UUID

// EventID uniquely identifies an application event
type EventID = uuid.UUID

// EventType is the lifecycle state an application event records.
// The set is closed; ordinal values matter only for storage ordering.
type EventType int

const (
	EventSubmitted EventType = iota
	EventInReview
	EventPhoneScreen
	EventTechnicalInterview
	EventOnsiteInterview
	EventOfferReceived
	EventOfferAccepted
	EventOfferDeclined
	EventRejected
	EventWithdrawn
)

var eventTypeNames = [...]string{
	EventSubmitted:          "submitted",
	EventInReview:           "in_review",
	EventPhoneScreen:        "phone_screen",
	EventTechnicalInterview: "technical_interview",
	EventOnsiteInterview:    "onsite_interview",
	EventOfferReceived:      "offer_received",
	EventOfferAccepted:      "offer_accepted",
	EventOfferDeclined:      "offer_declined",
	EventRejected:           "rejected",
	EventWithdrawn:          "withdrawn",
}

// EventTypes lists every event type in declaration order
func EventTypes() []EventType {
	out := make([]EventType, 0, len(eventTypeNames))
	for i := range eventTypeNames {
		out = append(out, EventType(i))
	}
	return out
}

// Valid reports whether t is one of the declared event types
func (t EventType) Valid() bool {
	return t >= EventSubmitted && int(t) < len(eventTypeNames)
}

// Terminal reports whether no transition may leave t
func (t EventType) Terminal() bool {
	switch t {
	case EventOfferAccepted, EventOfferDeclined, EventRejected, EventWithdrawn:
		return true
	default:
		return false
	}
}

func (t EventType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("event_type(%d)", int(t))
	}
	return eventTypeNames[t]
}

// MarshalText encodes t as its snake_case name
func (t EventType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("domain: unknown event type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts anything ParseEventType does
func (t *EventType) UnmarshalText(b []byte) error {
	parsed, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseEventType resolves snake_case ("in_review"), PascalCase ("InReview")
// and spaced ("in review") spellings, case-insensitively.
func ParseEventType(s string) (EventType, error) {
	key := normalizeName(s)
	for i, name := range eventTypeNames {
		if normalizeName(name) == key {
			return EventType(i), nil
		}
	}
	return 0, &ValidationError{Field: "event_type", Value: s, Reason: "unknown event type"}
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}
