package sheets

import (
	"context"
	"fmt"
	"os"

	"workupdatebot/database"
	"workupdatebot/utils"
	"workupdatebot/workflow"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client mirrors submissions and leaves into a shared Google
// spreadsheet so admins can watch it live. A nil Client is valid and
// drops every call, which is how the bot runs when no sheet is
// configured.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// New builds the remote sink from a service-account credentials file
// (or raw JSON when credsJSON is set). An empty spreadsheetID disables
// the sink entirely.
func New(ctx context.Context, spreadsheetID, credsFile, credsJSON string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, nil
	}

	raw := []byte(credsJSON)
	if len(raw) == 0 {
		var err error
		raw, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read google credentials: %v", err)
		}
	}

	conf, err := google.JWTConfigFromJSON(raw, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid google credentials: %v", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %v", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Enabled reports whether the sink actually writes anywhere.
func (c *Client) Enabled() bool {
	return c != nil && c.svc != nil
}

// ensureTab adds the named tab with a header row if the spreadsheet
// does not have it yet.
func (c *Client) ensureTab(ctx context.Context, title string, headers []interface{}) error {
	doc, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to inspect spreadsheet: %v", err)
	}
	for _, s := range doc.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add sheet %q: %v", title, err)
	}

	return c.appendRow(ctx, title, headers)
}

func (c *Client) appendRow(ctx context.Context, tab string, values []interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab+"!A1", &sheetsapi.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to %q: %v", tab, err)
	}
	return nil
}

// AppendSubmission mirrors one work update into its month tab.
func (c *Client) AppendSubmission(ctx context.Context, rec workflow.Record) error {
	if !c.Enabled() {
		return nil
	}

	tab := utils.MonthSheetName(rec.DateKey)
	headers := []interface{}{"Date", "Day", "Emp ID", "Name", "Username", "Department", "Time", "Work Update", "Status"}
	if err := c.ensureTab(ctx, tab, headers); err != nil {
		return err
	}

	status := "On Time"
	if rec.Late {
		status = "Late"
	}
	return c.appendRow(ctx, tab, []interface{}{
		rec.Date, rec.Day, rec.EmpID, rec.Name, rec.Username, rec.Dept, rec.Time, rec.Work, status,
	})
}

// AppendLeave mirrors an approved leave into the Leave Register tab.
func (c *Client) AppendLeave(ctx context.Context, dateKey string, emp database.Employee, reason string, leaveNo, deduction int) error {
	if !c.Enabled() {
		return nil
	}

	headers := []interface{}{"Date", "Emp ID", "Name", "Reason", "Leave #", "Deduction"}
	if err := c.ensureTab(ctx, "Leave Register", headers); err != nil {
		return err
	}

	charge := "-"
	if deduction > 0 {
		charge = fmt.Sprintf("%d", deduction)
	}
	return c.appendRow(ctx, "Leave Register", []interface{}{
		utils.DisplayDate(dateKey), emp.ID, emp.Name, reason, leaveNo, charge,
	})
}
