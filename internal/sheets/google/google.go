// Package google exports statements to a Google Sheets spreadsheet
// using the owner's OAuth credentials.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cardtrack/internal/core"
	ports "cardtrack/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.StatementWriter = (*Client)(nil)

// New creates a Sheets client from OAuth client and token JSON blobs.
func New(ctx context.Context, spreadsheetID, sheetName string, clientJSON, tokenJSON []byte) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	cfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendStatement writes one row per transaction below the current end
// of the sheet. Columns: period, filename, date, merchant, amount,
// currency, category.
func (c *Client) AppendStatement(ctx context.Context, st *core.Statement, txns []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(txns) == 0 {
		return "", nil
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	firstRow := len(resp.Values) + 1

	period := fmt.Sprintf("%d/%d", st.Month, st.Year)
	values := make([][]any, 0, len(txns))
	for _, t := range txns {
		currency := "ARS"
		if t.IsDollar {
			currency = "USD"
		}
		category := ""
		if t.Category != nil {
			category = t.Category.Name
		}
		values = append(values, []any{
			period,
			st.Filename,
			t.Date.String(),
			t.Merchant,
			t.Amount.Float64(),
			currency,
			category,
		})
	}

	lastRow := firstRow + len(values) - 1
	dataRange := fmt.Sprintf("%s!A%d:G%d", c.sheetName, firstRow, lastRow)
	vr := &gsheet.ValueRange{Values: values}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}
