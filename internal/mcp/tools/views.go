package tools

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
)

// AccountView is the wire form of an account. The password hash is never returned.
type AccountView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// EventView is the wire form of one lifecycle event
type EventView struct {
	ID         string `json:"id"`
	Type       string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`
	CreatedAt  string `json:"created_at"`
	Notes      string `json:"notes,omitempty"`
}

// ApplicationSummary is the list form of an application
type ApplicationSummary struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	JobURL      string `json:"job_url,omitempty"`
	Status      string `json:"status"`
	Terminal    bool   `json:"terminal"`
	EventCount  int    `json:"event_count"`
	CreatedAt   string `json:"created_at"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// ApplicationView is an application with its ordered history and the
// statuses it may move to next
type ApplicationView struct {
	ApplicationSummary
	AccountID string      `json:"account_id"`
	History   []EventView `json:"history"`
	Next      []string    `json:"next"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func newAccountView(acct *account.Account) AccountView {
	return AccountView{
		ID:        acct.ID().String(),
		Email:     acct.Email(),
		Active:    acct.Active(),
		CreatedAt: formatTime(acct.CreatedAt()),
	}
}

func newSummary(app *application.Application) ApplicationSummary {
	status := app.CurrentStatus()
	last, _ := app.LastUpdated()
	return ApplicationSummary{
		ID:          app.ID().String(),
		CompanyName: app.CompanyName(),
		JobTitle:    app.JobTitle(),
		JobURL:      app.JobURL(),
		Status:      status.String(),
		Terminal:    status.Terminal(),
		EventCount:  app.EventCount(),
		CreatedAt:   formatTime(app.CreatedAt()),
		LastUpdated: formatTime(last),
	}
}

func newApplicationView(app *application.Application, next []domain.EventType) ApplicationView {
	history := app.History()
	view := ApplicationView{
		ApplicationSummary: newSummary(app),
		AccountID:          app.AccountID().String(),
		History:            make([]EventView, 0, len(history)),
		Next:               make([]string, 0, len(next)),
	}
	for _, ev := range history {
		view.History = append(view.History, EventView{
			ID:         ev.ID().String(),
			Type:       ev.Type().String(),
			OccurredAt: formatTime(ev.OccurredAt()),
			CreatedAt:  formatTime(ev.CreatedAt()),
			Notes:      ev.Notes(),
		})
	}
	for _, t := range next {
		view.Next = append(view.Next, t.String())
	}
	return view
}

// resolveAccount parses raw, falling back to owner when raw is blank
func resolveAccount(raw string, owner domain.AccountID) (domain.AccountID, error) {
	if strings.TrimSpace(raw) == "" {
		if owner == uuid.Nil {
			return uuid.Nil, &domain.ValidationError{Field: "account_id", Reason: "is required"}
		}
		return owner, nil
	}
	return parseID("account_id", raw)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, &domain.ValidationError{Field: field, Value: raw, Reason: "must be a UUID"}
	}
	return id, nil
}

// parseTime reads an RFC 3339 timestamp; blank yields the zero time
func parseTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Value: raw, Reason: "must be an RFC 3339 timestamp"}
	}
	return t, nil
}
