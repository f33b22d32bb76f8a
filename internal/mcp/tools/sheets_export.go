package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/lifecycle"
)

// SheetsExporter writes application rows to a spreadsheet
type SheetsExporter interface {
	Export(ctx context.Context, req SheetsExportRequest) (SheetsExportResult, error)
}

// SheetRow is one application rendered for a spreadsheet
type SheetRow struct {
	Company     string
	Title       string
	URL         string
	Status      string
	SubmittedAt string
	LastUpdated string
	EventCount  int
	Notes       string // notes of the latest event
}

// SheetsExportRequest is what the tool hands to a SheetsExporter
type SheetsExportRequest struct {
	SpreadsheetID string
	Tab           string
	ClearTab      bool
	Rows          []SheetRow
}

// SheetsExportParams defines the arguments for the sheets_export tool
type SheetsExportParams struct {
	AccountID     string `json:"account_id,omitempty" jsonschema:"Owning account UUID, defaults to the ledger owner"`
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"Google Sheets document ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name, defaults to Sheet1"`
	ClearTab      bool   `json:"clear_tab,omitempty" jsonschema:"Replace the tab contents instead of appending"`
}

// SheetsExportResult describes the summary returned after export
type SheetsExportResult struct {
	SpreadsheetID string    `json:"spreadsheet_id" jsonschema:"Target spreadsheet ID"`
	Tab           string    `json:"tab,omitempty" jsonschema:"Target tab name"`
	WrittenRows   int       `json:"written_rows" jsonschema:"How many rows were written"`
	Mode          string    `json:"mode" jsonschema:"append or replace"`
	CompletedAt   time.Time `json:"completed_at" jsonschema:"Timestamp when export finished"`
	Message       string    `json:"message,omitempty" jsonschema:"Optional status message"`
}

type sheetsExportTool struct {
	service  lifecycle.Service
	exporter SheetsExporter
	owner    domain.AccountID
}

// WithSheetsExport registers the sheets_export tool
func WithSheetsExport(service lifecycle.Service, exporter SheetsExporter, owner domain.AccountID) Option {
	return func(reg *registry) {
		reg.later(func(reg *registry) {
			t := sheetsExportTool{service: service, exporter: exporter, owner: owner}
			addTool(reg, &sdkmcp.Tool{
				Name:        "sheets_export",
				Description: "Export applications with their derived status to Google Sheets",
			}, t.handle)
		})
	}
}

func (t sheetsExportTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params SheetsExportParams) (*sdkmcp.CallToolResult, any, error) {
	if t.exporter == nil {
		return nil, nil, fmt.Errorf("sheets_export unavailable: Google Sheets client not configured (GOOGLE_SHEETS_CREDENTIALS_PATH not set)")
	}
	if strings.TrimSpace(params.SpreadsheetID) == "" {
		return nil, nil, &domain.ValidationError{Field: "spreadsheet_id", Reason: "is required"}
	}

	accountID, err := resolveAccount(params.AccountID, t.owner)
	if err != nil {
		return nil, nil, err
	}

	apps, err := t.service.List(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]SheetRow, 0, len(apps))
	for _, app := range apps {
		summary := newSummary(app)
		row := SheetRow{
			Company:     summary.CompanyName,
			Title:       summary.JobTitle,
			URL:         summary.JobURL,
			Status:      summary.Status,
			LastUpdated: summary.LastUpdated,
			EventCount:  summary.EventCount,
		}
		if history := app.History(); len(history) > 0 {
			row.SubmittedAt = formatTime(history[0].OccurredAt())
			row.Notes = history[len(history)-1].Notes()
		}
		rows = append(rows, row)
	}

	result, err := t.exporter.Export(ctx, SheetsExportRequest{
		SpreadsheetID: params.SpreadsheetID,
		Tab:           params.Tab,
		ClearTab:      params.ClearTab,
		Rows:          rows,
	})
	if err != nil {
		return nil, nil, err
	}

	return toolText("sheets_export", "mode=%s rows=%d spreadsheet_id=%q tab=%q",
		result.Mode, result.WrittenRows, result.SpreadsheetID, result.Tab), result, nil
}
