package application

import (
	"context"

	"github.com/honeycarbs/career-ledger/internal/domain"
)

// Repository persists applications together with their event logs.
//
// The version of an application is the number of stored events. AppendEvent
// must write ev only if the stored version still equals expectedVersion,
// otherwise it returns domain.ErrConcurrentUpdate. Missing records are
// reported as domain.ErrNotFound.
type Repository interface {
	// Create stores a new application and all of its events atomically
	Create(ctx context.Context, app *Application) error

	// Get loads an application with its full event log
	Get(ctx context.Context, id domain.ApplicationID) (*Application, error)

	// ListByAccount loads every application owned by accountID
	ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*Application, error)

	// UpdateBasicInfo persists company, title and URL
	UpdateBasicInfo(ctx context.Context, app *Application) error

	// AppendEvent adds one event to an existing application's log
	AppendEvent(ctx context.Context, ev Event, expectedVersion int) error
}
