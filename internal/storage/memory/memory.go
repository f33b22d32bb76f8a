// Package memory is a thread-safe in-process implementation of the account
// and application repositories. Records are copied on the way in and out so
// callers never share state with the store.
package memory

import (
	"sync"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
)

// Store holds accounts, applications and event logs in maps. Repositories
// built on the same Store see each other's writes.
type Store struct {
	mu           sync.RWMutex
	accounts     map[domain.AccountID]account.Record
	emails       map[string]domain.AccountID
	applications map[domain.ApplicationID]application.Record
	events       map[domain.ApplicationID][]application.EventRecord
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts:     make(map[domain.AccountID]account.Record),
		emails:       make(map[string]domain.AccountID),
		applications: make(map[domain.ApplicationID]application.Record),
		events:       make(map[domain.ApplicationID][]application.EventRecord),
	}
}
