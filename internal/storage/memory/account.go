package memory

import (
	"context"
	"fmt"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
)

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository over a Store
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates an AccountRepository
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stores a new account, enforcing unique emails
func (r *AccountRepository) Create(_ context.Context, acct *account.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := acct.Record()
	if _, exists := s.accounts[rec.ID]; exists {
		return fmt.Errorf("account %s: %w", rec.ID, domain.ErrConflict)
	}
	if _, taken := s.emails[rec.Email]; taken {
		return fmt.Errorf("account email %s: %w", rec.Email, domain.ErrConflict)
	}

	s.accounts[rec.ID] = rec
	s.emails[rec.Email] = rec.ID
	return nil
}

// Get loads an account by id
func (r *AccountRepository) Get(_ context.Context, id domain.AccountID) (*account.Account, error) {
	s := r.store
	s.mu.RLock()
	rec, ok := s.accounts[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return account.Restore(rec)
}

// GetByEmail loads an account by email, normalized before lookup
func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[account.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("account email %s: %w", email, domain.ErrNotFound)
	}
	return account.Restore(s.accounts[id])
}

// Update persists the active flag, the only mutable account field
func (r *AccountRepository) Update(_ context.Context, acct *account.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := acct.Record()
	stored, ok := s.accounts[rec.ID]
	if !ok {
		return fmt.Errorf("account %s: %w", rec.ID, domain.ErrNotFound)
	}

	stored.Active = rec.Active
	s.accounts[rec.ID] = stored
	return nil
}
