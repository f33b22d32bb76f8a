package application

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/honeycarbs/career-ledger/internal/domain"
)

const (
	maxNameLength = 255
	maxURLLength  = 2048
)

// Application is the aggregate root for one job application. Its status is
// never stored: CurrentStatus folds over the event log on every call.
type Application struct {
	id          domain.ApplicationID
	accountID   domain.AccountID
	companyName string
	jobTitle    string
	jobURL      string
	createdAt   time.Time
	events      []Event
}

// Params are the inputs to New. Zero values mean "not provided".
type Params struct {
	AccountID   domain.AccountID
	CompanyName string
	JobTitle    string
	JobURL      string
	SubmittedAt time.Time // defaults to the creation time
	Notes       string
}

// Record is the flat storage form of an Application, without its events
type Record struct {
	ID          domain.ApplicationID
	AccountID   domain.AccountID
	CompanyName string
	JobTitle    string
	JobURL      string
	CreatedAt   time.Time
}

// New validates p and returns an application holding its initial Submitted
// event. Errors from building that event are returned unchanged.
func New(p Params, opts ...Option) (*Application, error) {
	o := buildOptions(opts)

	if p.AccountID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	if err := validateBasicInfo(p.CompanyName, p.JobTitle, p.JobURL); err != nil {
		return nil, err
	}

	now := o.clock().UTC()
	app := &Application{
		id:          uuid.New(),
		accountID:   p.AccountID,
		companyName: strings.TrimSpace(p.CompanyName),
		jobTitle:    strings.TrimSpace(p.JobTitle),
		jobURL:      strings.TrimSpace(p.JobURL),
		createdAt:   now,
	}

	submittedAt := p.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = now
	}

	submitted, err := NewEvent(app.id, app.accountID, domain.EventSubmitted, submittedAt, p.Notes, opts...)
	if err != nil {
		return nil, err
	}
	app.events = append(app.events, submitted)

	return app, nil
}

// Restore rebuilds an application and its event log loaded from storage
func Restore(rec Record, events []EventRecord) (*Application, error) {
	if rec.ID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "application_id", Reason: "is required"}
	}
	if rec.AccountID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	if len(events) == 0 {
		return nil, &domain.ValidationError{Field: "events", Value: rec.ID, Reason: "application has no events"}
	}

	app := &Application{
		id:          rec.ID,
		accountID:   rec.AccountID,
		companyName: rec.CompanyName,
		jobTitle:    rec.JobTitle,
		jobURL:      rec.JobURL,
		createdAt:   rec.CreatedAt.UTC(),
		events:      make([]Event, 0, len(events)),
	}

	for _, er := range events {
		ev, err := RestoreEvent(er)
		if err != nil {
			return nil, err
		}
		if err := app.AddEvent(ev); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// UpdateBasicInfo replaces company, title and URL. Events and status are untouched.
func (a *Application) UpdateBasicInfo(companyName, jobTitle, jobURL string) error {
	if err := validateBasicInfo(companyName, jobTitle, jobURL); err != nil {
		return err
	}

	a.companyName = strings.TrimSpace(companyName)
	a.jobTitle = strings.TrimSpace(jobTitle)
	a.jobURL = strings.TrimSpace(jobURL)
	return nil
}

// AddEvent appends ev to the log. It checks ownership only; whether ev is a
// legal successor of CurrentStatus is the lifecycle policy's call.
func (a *Application) AddEvent(ev Event) error {
	if ev.IsZero() {
		return &domain.ValidationError{Field: "event", Reason: "is required"}
	}
	if ev.applicationID != a.id {
		return &domain.OwnershipError{Field: "application_id", Expected: a.id, Actual: ev.applicationID}
	}
	if ev.accountID != a.accountID {
		return &domain.OwnershipError{Field: "account_id", Expected: a.accountID, Actual: ev.accountID}
	}

	a.events = append(a.events, ev)
	return nil
}

// CurrentStatus is the type of the latest event by OccurredAt, then CreatedAt.
// Full ties keep the earliest-appended event. An empty log reads as Submitted.
func (a *Application) CurrentStatus() domain.EventType {
	latest, ok := a.latest()
	if !ok {
		return domain.EventSubmitted
	}
	return latest.eventType
}

func (a *Application) latest() (Event, bool) {
	if len(a.events) == 0 {
		return Event{}, false
	}

	latest := a.events[0]
	for _, ev := range a.events[1:] {
		if ev.after(latest) {
			latest = ev
		}
	}
	return latest, true
}

// EventCount is the number of events in the log
func (a *Application) EventCount() int {
	return len(a.events)
}

// LastUpdated is the greatest CreatedAt in the log; ok is false when empty
func (a *Application) LastUpdated() (t time.Time, ok bool) {
	for _, ev := range a.events {
		if !ok || ev.createdAt.After(t) {
			t, ok = ev.createdAt, true
		}
	}
	return t, ok
}

// Events returns a copy of the log in append order
func (a *Application) Events() []Event {
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}

// History returns a copy of the log oldest first, in status order
func (a *Application) History() []Event {
	out := a.Events()
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].after(out[i])
	})
	return out
}

func (a *Application) ID() domain.ApplicationID    { return a.id }
func (a *Application) AccountID() domain.AccountID { return a.accountID }
func (a *Application) CompanyName() string         { return a.companyName }
func (a *Application) JobTitle() string            { return a.jobTitle }
func (a *Application) JobURL() string              { return a.jobURL }
func (a *Application) CreatedAt() time.Time        { return a.createdAt }

// Record returns the storage form of a, without events
func (a *Application) Record() Record {
	return Record{
		ID:          a.id,
		AccountID:   a.accountID,
		CompanyName: a.companyName,
		JobTitle:    a.jobTitle,
		JobURL:      a.jobURL,
		CreatedAt:   a.createdAt,
	}
}

// Length limits apply to the raw input, before trimming.
func validateBasicInfo(companyName, jobTitle, jobURL string) error {
	if strings.TrimSpace(companyName) == "" {
		return &domain.ValidationError{Field: "company_name", Reason: "is required"}
	}
	if utf8.RuneCountInString(companyName) > maxNameLength {
		return &domain.ValidationError{Field: "company_name", Reason: "cannot exceed 255 characters"}
	}
	if strings.TrimSpace(jobTitle) == "" {
		return &domain.ValidationError{Field: "job_title", Reason: "is required"}
	}
	if utf8.RuneCountInString(jobTitle) > maxNameLength {
		return &domain.ValidationError{Field: "job_title", Reason: "cannot exceed 255 characters"}
	}
	if strings.TrimSpace(jobURL) != "" && utf8.RuneCountInString(jobURL) > maxURLLength {
		return &domain.ValidationError{Field: "job_url", Reason: "cannot exceed 2048 characters"}
	}
	return nil
}
