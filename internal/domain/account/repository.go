package account

import (
	"context"

	"github.com/honeycarbs/career-ledger/internal/domain"
)

// Repository persists and loads accounts.
// Implementations return domain.ErrNotFound for missing rows and
// domain.ErrConflict when the email is already taken.
type Repository interface {
	Create(ctx context.Context, acct *Account) error
	Get(ctx context.Context, id domain.AccountID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, acct *Account) error
}
