package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/account"

	pkgneo4j "github.com/honeycarbs/career-ledger/pkg/neo4j"
)

// Ensure AccountRepository implements account.Repository
var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository with Neo4j
type AccountRepository struct {
	client *pkgneo4j.Client
}

// NewAccountRepository creates an AccountRepository with a Neo4j client
func NewAccountRepository(client *pkgneo4j.Client) *AccountRepository {
	return &AccountRepository{client: client}
}

// Create inserts an Account node. The email constraint maps to domain.ErrConflict.
func (r *AccountRepository) Create(ctx context.Context, acct *account.Account) error {
	rec := acct.Record()

	query := `
		CREATE (a:Account {
			id: $id,
			email: $email,
			passwordHash: $passwordHash,
			active: $active,
			createdAt: $createdAt
		})
	`

	_, err := r.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{
			"id":           rec.ID.String(),
			"email":        rec.Email,
			"passwordHash": rec.PasswordHash,
			"active":       rec.Active,
			"createdAt":    rec.CreatedAt,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if isConstraintViolation(err) {
		return fmt.Errorf("account email %s: %w", rec.Email, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("neo4j: create account: %w", err)
	}
	return nil
}

// Get loads an account by id
func (r *AccountRepository) Get(ctx context.Context, id domain.AccountID) (*account.Account, error) {
	return r.findOne(ctx, `MATCH (a:Account {id: $key}) RETURN a`, id.String())
}

// GetByEmail loads an account by normalized email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.findOne(ctx, `MATCH (a:Account {email: $key}) RETURN a`, account.NormalizeEmail(email))
}

// Update persists the active flag
func (r *AccountRepository) Update(ctx context.Context, acct *account.Account) error {
	rec := acct.Record()

	query := `
		MATCH (a:Account {id: $id})
		SET a.active = $active
		RETURN count(a) AS matched
	`

	matched, err := r.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{
			"id":     rec.ID.String(),
			"active": rec.Active,
		})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _, err := neo4j.GetRecordValue[int64](record, "matched")
		return n, err
	})
	if err != nil {
		return fmt.Errorf("neo4j: update account: %w", err)
	}
	if matched.(int64) == 0 {
		return fmt.Errorf("account %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, query, key string) (*account.Account, error) {
	found, err := r.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"key": key})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		p, ok := nodeProps(records[0], "a")
		if !ok {
			return nil, fmt.Errorf("neo4j: account node missing from result")
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: find account: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("account %s: %w", key, domain.ErrNotFound)
	}

	return accountFromProps(found.(props))
}

func accountFromProps(p props) (*account.Account, error) {
	id, err := p.uuid("id")
	if err != nil {
		return nil, fmt.Errorf("neo4j: account id: %w", err)
	}

	return account.Restore(account.Record{
		ID:           id,
		Email:        p.str("email"),
		PasswordHash: p.str("passwordHash"),
		Active:       p.boolean("active"),
		CreatedAt:    p.time("createdAt"),
	})
}
