// Package google exports statements to a Google Sheets spreadsheet using
// service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.StatementWriter = (*Client)(nil)

// New creates a Sheets client writing statements to the named sheet of
// the spreadsheet. Service account credentials come from the
// environment: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Statements"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewFromEnv creates a Sheets client from GOOGLE_SPREADSHEET_ID and
// GOOGLE_STATEMENT_SHEET_NAME (default "Statements"), the same keys the
// config package reads.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx,
		os.Getenv("GOOGLE_SPREADSHEET_ID"),
		os.Getenv("GOOGLE_STATEMENT_SHEET_NAME"))
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteStatement appends one row per statement line plus an opening and
// closing marker row, and returns the appended range.
func (c *Client) WriteStatement(ctx context.Context, account core.Account, st ledger.Statement) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := statementRows(account, st)
	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	vr := &gsheet.ValueRange{Values: values}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append statement to sheet %s: %w", c.sheetName, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// statementRows flattens a statement into spreadsheet rows:
// account, month, date, description, amount, running balance.
func statementRows(account core.Account, st ledger.Statement) [][]any {
	label := fmt.Sprintf("%s %s", account.BankName, account.Number)
	month := st.Month.String()

	rows := [][]any{
		{label, month, "", "opening balance", "", st.Opening.String()},
	}
	for _, line := range st.Lines {
		rows = append(rows, []any{
			label,
			month,
			line.Date.Format("2006-01-02"),
			line.TransactionName + " " + line.Description,
			line.Amount.String(),
			line.Running.String(),
		})
	}
	rows = append(rows, []any{label, month, "", "closing balance", "", st.Closing.String()})
	return rows
}
