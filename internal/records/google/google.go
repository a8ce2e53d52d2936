// Package google backs the record ports with a Google spreadsheet, one
// worksheet per period.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financas/internal/core"
	"financas/internal/records"
)

// Config holds what the client needs. Credentials follow the usual service
// account conventions: inline JSON wins over a file path.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	// Timeout bounds each API call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds a single Sheets API call.
const DefaultTimeout = 15 * time.Second

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	timeout       time.Duration
}

var (
	_ records.RowSource    = (*Client)(nil)
	_ records.RowAppender  = (*Client)(nil)
	_ records.PeriodLister = (*Client)(nil)
)

// New creates a Sheets-backed client using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		timeout:       timeout,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	if json := strings.TrimSpace(cfg.ServiceAccountJSON); json != "" {
		return []byte(json), nil
	}
	if file := strings.TrimSpace(cfg.ServiceAccountFile); file != "" {
		credentials, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return credentials, nil
	}
	return nil, errors.New("missing service account credentials")
}

// Rows implements records.RowSource. The worksheet's first row is its
// header and keys the remaining rows; a worksheet that does not exist, or a
// backend that cannot be reached, is reported as the period being absent,
// never as partial data.
func (c *Client) Rows(ctx context.Context, p core.Period) ([]core.RawRow, error) {
	label := p.Label()
	rng := fmt.Sprintf("%s!A:E", label)

	var resp *gsheet.ValueRange
	err := c.withRetry(ctx, "values.get", func(callCtx context.Context) error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(callCtx).Do()
		return err
	})
	if err != nil {
		if isMissingSheet(err) || isTransient(err) {
			slog.WarnContext(ctx, "Worksheet unavailable", "period", label, "error", err)
			return nil, fmt.Errorf("%w: %s", records.ErrPeriodNotFound, label)
		}
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	return rowsToRaw(resp.Values), nil
}

// Append implements records.RowAppender. The period's worksheet is created
// with its header row on first write.
func (c *Client) Append(ctx context.Context, p core.Period, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	label := p.Label()

	if err := c.ensureWorksheet(ctx, label); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		tx.Date, tx.Category, tx.Description, tx.Amount.Float(), string(tx.Kind),
	}}}

	var resp *gsheet.AppendValuesResponse
	err := c.withRetry(ctx, "values.append", func(callCtx context.Context) error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.
			Append(c.spreadsheetID, fmt.Sprintf("%s!A:E", label), vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(callCtx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", label, err)
	}

	ref := label
	if resp != nil && resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Record appended to sheet", "period", label, "ref", ref)
	return ref, nil
}

// Periods implements records.PeriodLister, newest first. Worksheets whose
// titles are not period labels are skipped.
func (c *Client) Periods(ctx context.Context) ([]core.Period, error) {
	var resp *gsheet.Spreadsheet
	err := c.withRetry(ctx, "spreadsheets.get", func(callCtx context.Context) error {
		var err error
		resp, err = c.svc.Spreadsheets.Get(c.spreadsheetID).Context(callCtx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}

	var out []core.Period
	for _, sheet := range resp.Sheets {
		if sheet.Properties == nil {
			continue
		}
		p, err := core.ParsePeriodLabel(sheet.Properties.Title)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (c *Client) ensureWorksheet(ctx context.Context, label string) error {
	err := c.withRetry(ctx, "values.get", func(callCtx context.Context) error {
		_, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, label+"!A1").Context(callCtx).Do()
		return err
	})
	if err == nil {
		return nil
	}
	if !isMissingSheet(err) {
		return fmt.Errorf("probe worksheet %s: %w", label, err)
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{
			Properties: &gsheet.SheetProperties{Title: label},
		},
	}}}
	err = c.withRetry(ctx, "batch.addsheet", func(callCtx context.Context) error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(callCtx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("create worksheet %s: %w", label, err)
	}

	headerRange := fmt.Sprintf("%s!A1:E1", label)
	vr := &gsheet.ValueRange{Values: [][]any{{
		core.FieldDate, core.FieldCategory, core.FieldDescription, core.FieldAmount, core.FieldKind,
	}}}
	err = c.withRetry(ctx, "values.update", func(callCtx context.Context) error {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, vr).
			ValueInputOption("RAW").Context(callCtx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write header for %s: %w", label, err)
	}
	return nil
}

// withRetry bounds the call with the client timeout and retries exactly once
// on a transient failure.
func (c *Client) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	err := call(callCtx)
	cancel()
	if err == nil || !isTransient(err) {
		return err
	}

	slog.WarnContext(ctx, "Transient Sheets API failure, retrying once", "op", op, "error", err)
	callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return call(callCtx)
}
