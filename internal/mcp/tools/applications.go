package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
	"github.com/honeycarbs/career-ledger/internal/domain/lifecycle"
)

// ApplicationCreateParams defines the arguments for application_create
type ApplicationCreateParams struct {
	AccountID   string `json:"account_id,omitempty" jsonschema:"Owning account UUID, defaults to the ledger owner"`
	CompanyName string `json:"company_name" jsonschema:"Company applied to"`
	JobTitle    string `json:"job_title" jsonschema:"Position title"`
	JobURL      string `json:"job_url,omitempty" jsonschema:"Posting URL"`
	SubmittedAt string `json:"submitted_at,omitempty" jsonschema:"RFC 3339 submission time, defaults to now"`
	Notes       string `json:"notes,omitempty" jsonschema:"Notes attached to the Submitted event"`
}

// ApplicationUpdateParams defines the arguments for application_update
type ApplicationUpdateParams struct {
	AccountID     string `json:"account_id,omitempty" jsonschema:"Owning account UUID, defaults to the ledger owner"`
	ApplicationID string `json:"application_id" jsonschema:"Application UUID"`
	CompanyName   string `json:"company_name" jsonschema:"Company applied to"`
	JobTitle      string `json:"job_title" jsonschema:"Position title"`
	JobURL        string `json:"job_url,omitempty" jsonschema:"Posting URL"`
}

// RecordEventParams defines the arguments for application_record_event
type RecordEventParams struct {
	AccountID     string `json:"account_id,omitempty" jsonschema:"Owning account UUID, defaults to the ledger owner"`
	ApplicationID string `json:"application_id" jsonschema:"Application UUID"`
	EventType     string `json:"event_type" jsonschema:"New status, e.g. phone_screen or offer_received"`
	OccurredAt    string `json:"occurred_at,omitempty" jsonschema:"RFC 3339 time the change happened, defaults to now"`
	Notes         string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

// ApplicationGetParams defines the arguments for application_get
type ApplicationGetParams struct {
	AccountID     string `json:"account_id,omitempty" jsonschema:"Owning account UUID, defaults to the ledger owner"`
	ApplicationID string `json:"application_id" jsonschema:"Application UUID"`
}

// ApplicationListParams defines the arguments for application_list
type ApplicationListParams struct {
	AccountID string `json:"account_id,omitempty" jsonschema:"Owning account UUID, defaults to the ledger owner"`
	Status    string `json:"status,omitempty" jsonschema:"Only return applications currently in this status"`
}

// ApplicationListResult is the structured response of application_list
type ApplicationListResult struct {
	Applications []ApplicationSummary `json:"applications"`
	Count        int                  `json:"count"`
}

type applicationTools struct {
	service lifecycle.Service
	owner   domain.AccountID
}

// WithApplicationTools registers the application_* tools
func WithApplicationTools(service lifecycle.Service, owner domain.AccountID) Option {
	return func(reg *registry) {
		reg.later(func(reg *registry) {
			t := applicationTools{service: service, owner: owner}
			addTool(reg, &sdkmcp.Tool{
				Name:        "application_create",
				Description: "Record a new job application with its initial Submitted event",
			}, t.create)
			addTool(reg, &sdkmcp.Tool{
				Name:        "application_update",
				Description: "Change company, title or URL of an application without touching its status",
			}, t.update)
			addTool(reg, &sdkmcp.Tool{
				Name:        "application_record_event",
				Description: "Append a lifecycle event if the transition from the current status is allowed",
			}, t.recordEvent)
			addTool(reg, &sdkmcp.Tool{
				Name:        "application_get",
				Description: "Show an application with its history and allowed next statuses",
			}, t.get)
			addTool(reg, &sdkmcp.Tool{
				Name:        "application_list",
				Description: "List applications, most recently active first",
			}, t.list)
		})
	}
}

func (t applicationTools) create(ctx context.Context, _ *sdkmcp.CallToolRequest, params ApplicationCreateParams) (*sdkmcp.CallToolResult, any, error) {
	accountID, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}
	submittedAt, err := parseTime("submitted_at", params.SubmittedAt)
	if err != nil {
		return nil, nil, err
	}

	app, err := t.service.CreateApplication(ctx, application.Params{
		AccountID:   accountID,
		CompanyName: params.CompanyName,
		JobTitle:    params.JobTitle,
		JobURL:      params.JobURL,
		SubmittedAt: submittedAt,
		Notes:       params.Notes,
	})
	if err != nil {
		return nil, nil, err
	}

	return t.respond("application_create", app)
}

func (t applicationTools) update(ctx context.Context, _ *sdkmcp.CallToolRequest, params ApplicationUpdateParams) (*sdkmcp.CallToolResult, any, error) {
	accountID, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}
	appID, err := parseID("application_id", params.ApplicationID)
	if err != nil {
		return nil, nil, err
	}

	app, err := t.service.UpdateBasicInfo(ctx, lifecycle.UpdateInput{
		AccountID:     accountID,
		ApplicationID: appID,
		CompanyName:   params.CompanyName,
		JobTitle:      params.JobTitle,
		JobURL:        params.JobURL,
	})
	if err != nil {
		return nil, nil, err
	}

	return t.respond("application_update", app)
}

func (t applicationTools) recordEvent(ctx context.Context, _ *sdkmcp.CallToolRequest, params RecordEventParams) (*sdkmcp.CallToolResult, any, error) {
	accountID, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}
	appID, err := parseID("application_id", params.ApplicationID)
	if err != nil {
		return nil, nil, err
	}
	eventType, err := domain.ParseEventType(params.EventType)
	if err != nil {
		return nil, nil, err
	}
	occurredAt, err := parseTime("occurred_at", params.OccurredAt)
	if err != nil {
		return nil, nil, err
	}

	app, err := t.service.RecordEvent(ctx, lifecycle.RecordEventInput{
		AccountID:     accountID,
		ApplicationID: appID,
		Type:          eventType,
		OccurredAt:    occurredAt,
		Notes:         params.Notes,
	})
	if err != nil {
		return nil, nil, err
	}

	return t.respond("application_record_event", app)
}

func (t applicationTools) get(ctx context.Context, _ *sdkmcp.CallToolRequest, params ApplicationGetParams) (*sdkmcp.CallToolResult, any, error) {
	accountID, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}
	appID, err := parseID("application_id", params.ApplicationID)
	if err != nil {
		return nil, nil, err
	}

	app, err := t.service.Get(ctx, accountID, appID)
	if err != nil {
		return nil, nil, err
	}

	return t.respond("application_get", app)
}

func (t applicationTools) list(ctx context.Context, _ *sdkmcp.CallToolRequest, params ApplicationListParams) (*sdkmcp.CallToolResult, any, error) {
	accountID, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}

	var (
		filter    domain.EventType
		hasFilter bool
	)
	if strings.TrimSpace(params.Status) != "" {
		filter, err = domain.ParseEventType(params.Status)
		if err != nil {
			return nil, nil, err
		}
		hasFilter = true
	}

	apps, err := t.service.List(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	result := ApplicationListResult{Applications: make([]ApplicationSummary, 0, len(apps))}
	for _, app := range apps {
		if hasFilter && app.CurrentStatus() != filter {
			continue
		}
		result.Applications = append(result.Applications, newSummary(app))
	}
	result.Count = len(result.Applications)

	return textResult(formatList(result)), result, nil
}

// respond renders app with the statuses it may move to next
func (t applicationTools) respond(tool string, app *application.Application) (*sdkmcp.CallToolResult, any, error) {
	view := newApplicationView(app, t.service.TransitionsFor(app).Next)
	return toolText(tool, "%s at %s: %s (%d event(s))",
		view.JobTitle, view.CompanyName, view.Status, view.EventCount), view, nil
}
