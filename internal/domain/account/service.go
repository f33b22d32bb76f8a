package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/pkg/logging"
)

// Service manages account records
type Service struct {
	repo   Repository
	clock  func() time.Time
	logger *logging.Logger
}

// NewService creates an account service
func NewService(repo Repository, logger *logging.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("account.Service: repository is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Service{
		repo:   repo,
		clock:  time.Now,
		logger: logger,
	}, nil
}

// Register creates a new active account
func (s *Service) Register(ctx context.Context, email, passwordHash string) (*Account, error) {
	acct, err := New(email, passwordHash, WithClock(s.clock))
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, acct.Email()); err == nil {
		return nil, fmt.Errorf("account %s: %w", acct.Email(), domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", "account_id", acct.ID(), "email", acct.Email())
	return acct, nil
}

// Get loads an account by id
func (s *Service) Get(ctx context.Context, id domain.AccountID) (*Account, error) {
	return s.repo.Get(ctx, id)
}

// SetActive deactivates or reactivates an account
func (s *Service) SetActive(ctx context.Context, id domain.AccountID, active bool) (*Account, error) {
	acct, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if active {
		acct.Reactivate()
	} else {
		acct.Deactivate()
	}

	if err := s.repo.Update(ctx, acct); err != nil {
		return nil, err
	}

	s.logger.Info("account active flag changed", "account_id", id, "active", active)
	return acct, nil
}

// EnsureOwner returns the account registered under email, creating it when
// missing. The stored password hash is never overwritten.
func (s *Service) EnsureOwner(ctx context.Context, email, passwordHash string) (*Account, error) {
	acct, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return s.Register(ctx, email, passwordHash)
}
