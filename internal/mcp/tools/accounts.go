package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
)

// AccountService is the account surface the tools depend on
type AccountService interface {
	Register(ctx context.Context, email, passwordHash string) (*account.Account, error)
	Get(ctx context.Context, id domain.AccountID) (*account.Account, error)
	SetActive(ctx context.Context, id domain.AccountID, active bool) (*account.Account, error)
}

// AccountRegisterParams defines the arguments for account_register
type AccountRegisterParams struct {
	Email        string `json:"email" jsonschema:"Login email, stored lowercased"`
	PasswordHash string `json:"password_hash" jsonschema:"Pre-computed password hash"`
}

// AccountGetParams defines the arguments for account_get
type AccountGetParams struct {
	AccountID string `json:"account_id,omitempty" jsonschema:"Account UUID, defaults to the ledger owner"`
}

// AccountSetActiveParams defines the arguments for account_set_active
type AccountSetActiveParams struct {
	AccountID string `json:"account_id,omitempty" jsonschema:"Account UUID, defaults to the ledger owner"`
	Active    bool   `json:"active" jsonschema:"false deactivates, true reactivates"`
}

type accountTools struct {
	service AccountService
	owner   domain.AccountID
}

// WithAccountTools registers account_register, account_get and account_set_active
func WithAccountTools(service AccountService, owner domain.AccountID) Option {
	return func(reg *registry) {
		reg.later(func(reg *registry) {
			t := accountTools{service: service, owner: owner}
			addTool(reg, &sdkmcp.Tool{
				Name:        "account_register",
				Description: "Register a new ledger account",
			}, t.register)
			addTool(reg, &sdkmcp.Tool{
				Name:        "account_get",
				Description: "Show an account",
			}, t.get)
			addTool(reg, &sdkmcp.Tool{
				Name:        "account_set_active",
				Description: "Deactivate or reactivate an account",
			}, t.setActive)
		})
	}
}

func (t accountTools) register(ctx context.Context, _ *sdkmcp.CallToolRequest, params AccountRegisterParams) (*sdkmcp.CallToolResult, any, error) {
	acct, err := t.service.Register(ctx, params.Email, params.PasswordHash)
	if err != nil {
		return nil, nil, err
	}

	view := newAccountView(acct)
	return toolText("account_register", "registered %s (%s)", view.Email, view.ID), view, nil
}

func (t accountTools) get(ctx context.Context, _ *sdkmcp.CallToolRequest, params AccountGetParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}

	acct, err := t.service.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	view := newAccountView(acct)
	return toolText("account_get", "%s active=%t", view.Email, view.Active), view, nil
}

func (t accountTools) setActive(ctx context.Context, _ *sdkmcp.CallToolRequest, params AccountSetActiveParams) (*sdkmcp.CallToolResult, any, error) {
	id, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}

	acct, err := t.service.SetActive(ctx, id, params.Active)
	if err != nil {
		return nil, nil, err
	}

	view := newAccountView(acct)
	return toolText("account_set_active", "%s active=%t", view.Email, view.Active), view, nil
}
