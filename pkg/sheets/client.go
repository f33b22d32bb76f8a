package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultTab is used when a caller leaves the tab name blank
const DefaultTab = "Sheet1"

// values are written as given, never parsed as formulas or dates
const valueInputOption = "RAW"

// Client is a thin wrapper over the Sheets v4 values API
type Client struct {
	values *sheets.SpreadsheetsValuesService
}

type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
	// Endpoint overrides the API base URL, used by tests against a fake server
	Endpoint string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	switch {
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case cfg.Endpoint != "":
		opts = append(opts, option.WithoutAuthentication())
	default:
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}

	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{values: service.Spreadsheets.Values}, nil
}

// AppendValues inserts rows after the last populated row of range_
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	_, err := c.values.Append(spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", range_, err)
	}
	return nil
}

// UpdateValues overwrites the cells starting at range_
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	_, err := c.values.Update(spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", range_, err)
	}
	return nil
}

// ClearValues empties range_ but keeps formatting
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, range_ string) error {
	_, err := c.values.Clear(spreadsheetID, range_, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", range_, err)
	}
	return nil
}

// ReplaceTab clears columns A through Z of tab, then writes header and rows from A1
func (c *Client) ReplaceTab(ctx context.Context, spreadsheetID, tab string, header []interface{}, rows [][]interface{}) error {
	if tab == "" {
		tab = DefaultTab
	}

	if err := c.ClearValues(ctx, spreadsheetID, tab+"!A1:Z"); err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, header)
	values = append(values, rows...)

	return c.UpdateValues(ctx, spreadsheetID, tab+"!A1", values)
}
