package application

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/honeycarbs/career-ledger/internal/domain"
)

const (
	// ClockSkewTolerance is how far in the future OccurredAt may be at creation
	ClockSkewTolerance = time.Hour

	maxNotesLength = 5000
)

// Event is an immutable lifecycle fact: at OccurredAt the application entered
// Type. The zero Event is never valid and AddEvent rejects it.
type Event struct {
	id            domain.EventID
	applicationID domain.ApplicationID
	accountID     domain.AccountID
	eventType     domain.EventType
	occurredAt    time.Time
	createdAt     time.Time
	notes         string
}

// EventRecord is the flat storage form of an Event
type EventRecord struct {
	ID            domain.EventID
	ApplicationID domain.ApplicationID
	AccountID     domain.AccountID
	Type          domain.EventType
	OccurredAt    time.Time
	CreatedAt     time.Time
	Notes         string
}

// NewEvent validates the inputs and returns a new event stamped with the
// current time. An empty notes string means no notes.
func NewEvent(
	applicationID domain.ApplicationID,
	accountID domain.AccountID,
	eventType domain.EventType,
	occurredAt time.Time,
	notes string,
	opts ...Option,
) (Event, error) {
	o := buildOptions(opts)
	now := o.clock().UTC()

	if applicationID == uuid.Nil {
		return Event{}, &domain.ValidationError{Field: "application_id", Reason: "is required"}
	}
	if accountID == uuid.Nil {
		return Event{}, &domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	if !eventType.Valid() {
		return Event{}, &domain.ValidationError{Field: "event_type", Value: int(eventType), Reason: "unknown event type"}
	}
	if occurredAt.IsZero() {
		return Event{}, &domain.ValidationError{Field: "occurred_at", Reason: "is required"}
	}
	if occurredAt.After(now.Add(ClockSkewTolerance)) {
		return Event{}, &domain.ValidationError{Field: "occurred_at", Value: occurredAt, Reason: "cannot be in the future"}
	}
	if err := validateNotes(notes); err != nil {
		return Event{}, err
	}

	return Event{
		id:            uuid.New(),
		applicationID: applicationID,
		accountID:     accountID,
		eventType:     eventType,
		occurredAt:    occurredAt.UTC(),
		createdAt:     now,
		notes:         strings.TrimSpace(notes),
	}, nil
}

// RestoreEvent rebuilds an event loaded from storage. The future-time rule
// applied at creation is not re-checked.
func RestoreEvent(rec EventRecord) (Event, error) {
	if rec.ID == uuid.Nil {
		return Event{}, &domain.ValidationError{Field: "event_id", Reason: "is required"}
	}
	if rec.ApplicationID == uuid.Nil {
		return Event{}, &domain.ValidationError{Field: "application_id", Reason: "is required"}
	}
	if rec.AccountID == uuid.Nil {
		return Event{}, &domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	if !rec.Type.Valid() {
		return Event{}, &domain.ValidationError{Field: "event_type", Value: int(rec.Type), Reason: "unknown event type"}
	}

	return Event{
		id:            rec.ID,
		applicationID: rec.ApplicationID,
		accountID:     rec.AccountID,
		eventType:     rec.Type,
		occurredAt:    rec.OccurredAt.UTC(),
		createdAt:     rec.CreatedAt.UTC(),
		notes:         rec.Notes,
	}, nil
}

func validateNotes(notes string) error {
	if strings.TrimSpace(notes) != "" && utf8.RuneCountInString(notes) > maxNotesLength {
		return &domain.ValidationError{Field: "notes", Reason: "cannot exceed 5000 characters"}
	}
	return nil
}

func (e Event) ID() domain.EventID                  { return e.id }
func (e Event) ApplicationID() domain.ApplicationID { return e.applicationID }
func (e Event) AccountID() domain.AccountID         { return e.accountID }
func (e Event) Type() domain.EventType              { return e.eventType }
func (e Event) OccurredAt() time.Time               { return e.occurredAt }
func (e Event) CreatedAt() time.Time                { return e.createdAt }
func (e Event) Notes() string                       { return e.notes }

// IsZero reports whether e was never constructed
func (e Event) IsZero() bool {
	return e.id == uuid.Nil
}

// Record returns the storage form of e
func (e Event) Record() EventRecord {
	return EventRecord{
		ID:            e.id,
		ApplicationID: e.applicationID,
		AccountID:     e.accountID,
		Type:          e.eventType,
		OccurredAt:    e.occurredAt,
		CreatedAt:     e.createdAt,
		Notes:         e.notes,
	}
}

// after reports whether e sorts after other in status order:
// later OccurredAt first, then later CreatedAt.
func (e Event) after(other Event) bool {
	if !e.occurredAt.Equal(other.occurredAt) {
		return e.occurredAt.After(other.occurredAt)
	}
	return e.createdAt.After(other.createdAt)
}
