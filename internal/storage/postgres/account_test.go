package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestAccountRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	acct, err := account.New("owner@example.com", "hash")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(acct.ID().String(), "owner@example.com", "hash", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), acct))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	acct, err := account.New("owner@example.com", "hash")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err = repo.Create(context.Background(), acct)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	id := mustUUID(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email = $1")).
		WithArgs("owner@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "is_active", "created_at"}).
			AddRow(id.String(), "owner@example.com", "hash", false, created))

	acct, err := repo.GetByEmail(context.Background(), "  OWNER@example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, acct.ID())
	assert.False(t, acct.Active())
	assert.True(t, created.Equal(acct.CreatedAt()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), mustUUID(t))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepository_UpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	acct, err := account.New("owner@example.com", "hash")
	require.NoError(t, err)
	acct.Deactivate()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET is_active = $2")).
		WithArgs(acct.ID().String(), false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), acct)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
