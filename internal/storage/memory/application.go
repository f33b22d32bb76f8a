package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
)

var _ application.Repository = (*ApplicationRepository)(nil)

// ApplicationRepository implements application.Repository over a Store
type ApplicationRepository struct {
	store *Store
}

// NewApplicationRepository creates an ApplicationRepository
func NewApplicationRepository(store *Store) *ApplicationRepository {
	return &ApplicationRepository{store: store}
}

// Create stores an application and its initial events
func (r *ApplicationRepository) Create(_ context.Context, app *application.Application) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := app.Record()
	if _, exists := s.applications[rec.ID]; exists {
		return fmt.Errorf("application %s: %w", rec.ID, domain.ErrConflict)
	}

	events := app.Events()
	records := make([]application.EventRecord, 0, len(events))
	for _, ev := range events {
		records = append(records, ev.Record())
	}

	s.applications[rec.ID] = rec
	s.events[rec.ID] = records
	return nil
}

// Get loads an application with its event log
func (r *ApplicationRepository) Get(_ context.Context, id domain.ApplicationID) (*application.Application, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return r.restoreLocked(id)
}

// ListByAccount loads every application owned by accountID, oldest first
func (r *ApplicationRepository) ListByAccount(_ context.Context, accountID domain.AccountID) ([]*application.Application, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*application.Application, 0)
	for id, rec := range s.applications {
		if rec.AccountID != accountID {
			continue
		}
		app, err := r.restoreLocked(id)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

// UpdateBasicInfo persists company, title and URL
func (r *ApplicationRepository) UpdateBasicInfo(_ context.Context, app *application.Application) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := app.Record()
	stored, ok := s.applications[rec.ID]
	if !ok {
		return fmt.Errorf("application %s: %w", rec.ID, domain.ErrNotFound)
	}

	stored.CompanyName = rec.CompanyName
	stored.JobTitle = rec.JobTitle
	stored.JobURL = rec.JobURL
	s.applications[rec.ID] = stored
	return nil
}

// AppendEvent appends ev when the stored log length equals expectedVersion
func (r *ApplicationRepository) AppendEvent(_ context.Context, ev application.Event, expectedVersion int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ev.ApplicationID()
	rec, ok := s.applications[id]
	if !ok {
		return fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	if rec.AccountID != ev.AccountID() {
		return &domain.OwnershipError{Field: "account_id", Expected: rec.AccountID, Actual: ev.AccountID()}
	}
	if got := len(s.events[id]); got != expectedVersion {
		return fmt.Errorf("application %s at version %d, expected %d: %w", id, got, expectedVersion, domain.ErrConcurrentUpdate)
	}

	s.events[id] = append(s.events[id], ev.Record())
	return nil
}

func (r *ApplicationRepository) restoreLocked(id domain.ApplicationID) (*application.Application, error) {
	s := r.store
	rec, ok := s.applications[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}

	events := make([]application.EventRecord, len(s.events[id]))
	copy(events, s.events[id])
	return application.Restore(rec, events)
}
