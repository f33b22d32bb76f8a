package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
)

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository with PostgreSQL
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates an AccountRepository
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. A taken email maps to domain.ErrConflict.
func (r *AccountRepository) Create(ctx context.Context, acct *account.Account) error {
	rec := acct.Record()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Email, rec.PasswordHash, rec.Active, rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("account email %s: %w", rec.Email, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("postgres: insert account: %w", err)
	}
	return nil
}

// Get loads an account by id
func (r *AccountRepository) Get(ctx context.Context, id domain.AccountID) (*account.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, is_active, created_at FROM accounts WHERE id = $1`,
		id,
	)
	return scanAccount(row, id.String())
}

// GetByEmail loads an account by normalized email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	normalized := account.NormalizeEmail(email)
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, is_active, created_at FROM accounts WHERE email = $1`,
		normalized,
	)
	return scanAccount(row, normalized)
}

// Update persists the active flag
func (r *AccountRepository) Update(ctx context.Context, acct *account.Account) error {
	rec := acct.Record()
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = $2 WHERE id = $1`,
		rec.ID, rec.Active,
	)
	if err != nil {
		return fmt.Errorf("postgres: update account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

func scanAccount(row *sql.Row, key string) (*account.Account, error) {
	var rec account.Record
	err := row.Scan(&rec.ID, &rec.Email, &rec.PasswordHash, &rec.Active, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan account: %w", err)
	}
	return account.Restore(rec)
}
