package account

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/honeycarbs/career-ledger/internal/domain"
)

const (
	minEmailLength = 5
	maxEmailLength = 255
)

// Account is an identity that owns applications. Instances only come from
// New or Restore, so every Account in memory has a well-formed email.
type Account struct {
	id           domain.AccountID
	email        string
	passwordHash string
	active       bool
	createdAt    time.Time
}

// Record is the flat storage form of an Account
type Record struct {
	ID           domain.AccountID
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// Option configures account construction
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// New validates the inputs and returns an active account.
// The email is trimmed and lowercased before it is stored.
func New(email, passwordHash string, opts ...Option) (*Account, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, &domain.ValidationError{Field: "password_hash", Reason: "is required"}
	}

	return &Account{
		id:           uuid.New(),
		email:        NormalizeEmail(email),
		passwordHash: passwordHash,
		active:       true,
		createdAt:    o.clock().UTC(),
	}, nil
}

// Restore rebuilds an account loaded from storage
func Restore(rec Record) (*Account, error) {
	if rec.ID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	if err := validateEmail(rec.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.PasswordHash) == "" {
		return nil, &domain.ValidationError{Field: "password_hash", Reason: "is required"}
	}

	return &Account{
		id:           rec.ID,
		email:        NormalizeEmail(rec.Email),
		passwordHash: rec.PasswordHash,
		active:       rec.Active,
		createdAt:    rec.CreatedAt.UTC(),
	}, nil
}

// NormalizeEmail returns the canonical stored form of an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Length limits apply to the raw input, before trimming.
func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &domain.ValidationError{Field: "email", Value: email, Reason: "is required"}
	}
	if n := utf8.RuneCountInString(email); n < minEmailLength || n > maxEmailLength {
		return &domain.ValidationError{Field: "email", Value: email, Reason: "must be between 5 and 255 characters"}
	}
	if !strings.Contains(email, "@") {
		return &domain.ValidationError{Field: "email", Value: email, Reason: "must be a valid email address"}
	}
	return nil
}

func (a *Account) ID() domain.AccountID { return a.id }
func (a *Account) Email() string        { return a.email }
func (a *Account) PasswordHash() string { return a.passwordHash }
func (a *Account) Active() bool         { return a.active }
func (a *Account) CreatedAt() time.Time { return a.createdAt }

// Deactivate soft-deletes the account. Owned applications are untouched.
func (a *Account) Deactivate() {
	a.active = false
}

// Reactivate reverses Deactivate
func (a *Account) Reactivate() {
	a.active = true
}

// Record returns the storage form of a
func (a *Account) Record() Record {
	return Record{
		ID:           a.id,
		Email:        a.email,
		PasswordHash: a.passwordHash,
		Active:       a.active,
		CreatedAt:    a.createdAt,
	}
}
