package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
)

var _ application.Repository = (*ApplicationRepository)(nil)

// ApplicationRepository implements application.Repository with PostgreSQL.
// applications.version mirrors the number of stored events and guards appends.
type ApplicationRepository struct {
	db *sql.DB
}

// NewApplicationRepository creates an ApplicationRepository
func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const insertEventSQL = `INSERT INTO application_events
	(id, application_id, account_id, event_type, occurred_at, created_at, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectEventsSQL = `SELECT id, application_id, account_id, event_type, occurred_at, created_at, notes
	FROM application_events`

// Create inserts the application row and its events in one transaction
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}
	defer tx.Rollback()

	rec := app.Record()
	events := app.Events()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applications (id, account_id, company_name, job_title, job_url, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.AccountID, rec.CompanyName, rec.JobTitle, rec.JobURL, len(events), rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("application %s: %w", rec.ID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("postgres: insert application: %w", err)
	}

	for _, ev := range events {
		if err := insertEvent(ctx, tx, ev); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit transaction: %w", err)
	}
	return nil
}

// Get loads an application with its event log in append order
func (r *ApplicationRepository) Get(ctx context.Context, id domain.ApplicationID) (*application.Application, error) {
	var rec application.Record
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, company_name, job_title, job_url, created_at
		 FROM applications WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.AccountID, &rec.CompanyName, &rec.JobTitle, &rec.JobURL, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: select application: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectEventsSQL+` WHERE application_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: select events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	return application.Restore(rec, events[rec.ID])
}

// ListByAccount loads every application of accountID with two queries
func (r *ApplicationRepository) ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*application.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, company_name, job_title, job_url, created_at
		 FROM applications WHERE account_id = $1 ORDER BY created_at`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: select applications: %w", err)
	}

	var records []application.Record
	for rows.Next() {
		var rec application.Record
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.CompanyName, &rec.JobTitle, &rec.JobURL, &rec.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("postgres: scan application: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("postgres: iterate applications: %w", err)
	}
	rows.Close()

	if len(records) == 0 {
		return []*application.Application{}, nil
	}

	eventRows, err := r.db.QueryContext(ctx, selectEventsSQL+` WHERE account_id = $1 ORDER BY seq`, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres: select events: %w", err)
	}
	defer eventRows.Close()

	events, err := scanEvents(eventRows)
	if err != nil {
		return nil, err
	}

	out := make([]*application.Application, 0, len(records))
	for _, rec := range records {
		app, err := application.Restore(rec, events[rec.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, nil
}

// UpdateBasicInfo persists company, title and URL
func (r *ApplicationRepository) UpdateBasicInfo(ctx context.Context, app *application.Application) error {
	rec := app.Record()
	result, err := r.db.ExecContext(ctx,
		`UPDATE applications SET company_name = $2, job_title = $3, job_url = $4 WHERE id = $1`,
		rec.ID, rec.CompanyName, rec.JobTitle, rec.JobURL,
	)
	if err != nil {
		return fmt.Errorf("postgres: update application: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("application %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

// AppendEvent bumps the version guard and inserts ev in one transaction. The
// conditional UPDATE row-locks the application, serializing concurrent appends.
func (r *ApplicationRepository) AppendEvent(ctx context.Context, ev application.Event, expectedVersion int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE applications SET version = version + 1
		 WHERE id = $1 AND account_id = $2 AND version = $3`,
		ev.ApplicationID(), ev.AccountID(), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("postgres: bump version: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if n == 0 {
		return r.explainMissedAppend(ctx, tx, ev, expectedVersion)
	}

	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit transaction: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) explainMissedAppend(ctx context.Context, tx *sql.Tx, ev application.Event, expectedVersion int) error {
	var (
		accountID domain.AccountID
		version   int
	)
	err := tx.QueryRowContext(ctx,
		`SELECT account_id, version FROM applications WHERE id = $1`,
		ev.ApplicationID(),
	).Scan(&accountID, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("application %s: %w", ev.ApplicationID(), domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("postgres: select version: %w", err)
	}

	if accountID != ev.AccountID() {
		return &domain.OwnershipError{Field: "account_id", Expected: accountID, Actual: ev.AccountID()}
	}
	return fmt.Errorf("application %s at version %d, expected %d: %w",
		ev.ApplicationID(), version, expectedVersion, domain.ErrConcurrentUpdate)
}

func insertEvent(ctx context.Context, tx *sql.Tx, ev application.Event) error {
	rec := ev.Record()
	_, err := tx.ExecContext(ctx, insertEventSQL,
		rec.ID, rec.ApplicationID, rec.AccountID, rec.Type.String(), rec.OccurredAt, rec.CreatedAt, rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert event: %w", err)
	}
	return nil
}

// scanEvents groups event rows by application id, preserving row order
func scanEvents(rows *sql.Rows) (map[domain.ApplicationID][]application.EventRecord, error) {
	out := make(map[domain.ApplicationID][]application.EventRecord)
	for rows.Next() {
		var (
			rec       application.EventRecord
			eventType string
		)
		if err := rows.Scan(&rec.ID, &rec.ApplicationID, &rec.AccountID, &eventType, &rec.OccurredAt, &rec.CreatedAt, &rec.Notes); err != nil {
			return nil, fmt.Errorf("postgres: scan event: %w", err)
		}

		t, err := domain.ParseEventType(eventType)
		if err != nil {
			return nil, fmt.Errorf("postgres: event %s: %w", rec.ID, err)
		}
		rec.Type = t

		out[rec.ApplicationID] = append(out[rec.ApplicationID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate events: %w", err)
	}
	return out, nil
}
