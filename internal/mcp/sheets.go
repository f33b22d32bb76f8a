package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/career-ledger/internal/mcp/tools"
	sheetsclient "github.com/honeycarbs/career-ledger/pkg/sheets"
)

var sheetHeader = []interface{}{
	"Company",
	"Title",
	"URL",
	"Status",
	"Submitted At",
	"Last Updated",
	"Events",
	"Latest Notes",
}

// valuesWriter is the subset of the Sheets client the exporter uses
type valuesWriter interface {
	AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error
	ReplaceTab(ctx context.Context, spreadsheetID, tab string, header []interface{}, rows [][]interface{}) error
}

type sheetsExporter struct {
	client valuesWriter
	clock  func() time.Time
}

func newSheetsExporter(client *sheetsclient.Client) *sheetsExporter {
	return &sheetsExporter{client: client, clock: time.Now}
}

// Export appends rows to the tab, or replaces the tab with a header and rows
// when ClearTab is set
func (e *sheetsExporter) Export(ctx context.Context, req tools.SheetsExportRequest) (tools.SheetsExportResult, error) {
	tab := req.Tab
	if tab == "" {
		tab = sheetsclient.DefaultTab
	}

	result := tools.SheetsExportResult{
		SpreadsheetID: req.SpreadsheetID,
		Tab:           tab,
		Mode:          "append",
	}

	values := convertRowsToValues(req.Rows)

	if req.ClearTab {
		result.Mode = "replace"
		if err := e.client.ReplaceTab(ctx, req.SpreadsheetID, tab, sheetHeader, values); err != nil {
			return result, fmt.Errorf("sheets: failed to replace tab: %w", err)
		}
	} else {
		if len(values) == 0 {
			result.CompletedAt = e.clock().UTC()
			result.Message = "no rows to export"
			return result, nil
		}
		if err := e.client.AppendValues(ctx, req.SpreadsheetID, fmt.Sprintf("%s!A1", tab), values); err != nil {
			return result, fmt.Errorf("sheets: failed to append rows: %w", err)
		}
	}

	result.WrittenRows = len(values)
	result.CompletedAt = e.clock().UTC()
	result.Message = fmt.Sprintf("successfully exported %d row(s)", result.WrittenRows)

	return result, nil
}

func convertRowsToValues(rows []tools.SheetRow) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = []interface{}{
			row.Company,
			row.Title,
			row.URL,
			row.Status,
			row.SubmittedAt,
			row.LastUpdated,
			row.EventCount,
			row.Notes,
		}
	}
	return values
}
