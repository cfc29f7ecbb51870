package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"drivefin/internal/core"
	"drivefin/internal/goals"
	ports "drivefin/internal/sheets"
	"drivefin/internal/storage"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultTransactionsSheet = "Transactions"
	DefaultGoalsSheet        = "Goals"
)

var (
	transactionHeader = []any{"ID", "Date", "Kind", "Category", "Description", "Amount", "Created", "Updated"}
	goalHeader        = []any{"ID", "Title", "Category", "Status", "Target", "Current", "Progress", "Deadline", "Updated"}
)

// Config selects the spreadsheet and credentials. CredentialsJSON wins over
// CredentialsFile.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	GoalsSheet        string
	CredentialsJSON   string
	CredentialsFile   string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	goalsSheet        string
}

var _ ports.RecordExporter = (*Client)(nil)

// New creates a Sheets client from cfg. Passing opts replaces the
// service-account credentials entirely.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet", cfg.SpreadsheetID)
	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: orDefault(cfg.TransactionsSheet, DefaultTransactionsSheet),
		goalsSheet:        orDefault(cfg.GoalsSheet, DefaultGoalsSheet),
	}, nil
}

// NewFromEnv reads GOOGLE_SPREADSHEET_ID, GOOGLE_SERVICE_ACCOUNT_JSON or
// GOOGLE_SERVICE_ACCOUNT_FILE (falling back to GOOGLE_APPLICATION_CREDENTIALS)
// and the optional GOOGLE_TRANSACTIONS_SHEET / GOOGLE_GOALS_SHEET names.
func NewFromEnv(ctx context.Context) (*Client, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return New(ctx, Config{
		SpreadsheetID:     strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		TransactionsSheet: strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET")),
		GoalsSheet:        strings.TrimSpace(os.Getenv("GOOGLE_GOALS_SHEET")),
		CredentialsJSON:   strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile:   file,
	})
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) ExportTransaction(ctx context.Context, t core.Transaction) error {
	return c.upsert(ctx, c.transactionsSheet, transactionHeader, transactionRow(t))
}

func (c *Client) ExportGoal(ctx context.Context, g core.Goal) error {
	return c.upsert(ctx, c.goalsSheet, goalHeader, goalRow(g))
}

// Remove clears the row holding id. Only transactions and goals are exported.
func (c *Client) Remove(ctx context.Context, kind storage.Kind, id string) error {
	sheet, header, ok := c.sheetFor(kind)
	if !ok {
		return nil
	}
	row, err := c.findRow(ctx, sheet, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}
	rng := rowRange(sheet, row, len(header))
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

func (c *Client) sheetFor(kind storage.Kind) (string, []any, bool) {
	switch kind {
	case storage.KindTransactions:
		return c.transactionsSheet, transactionHeader, true
	case storage.KindGoals:
		return c.goalsSheet, goalHeader, true
	}
	return "", nil, false
}

func (c *Client) upsert(ctx context.Context, sheet string, header, values []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	ids, err := c.ids(ctx, sheet)
	if err != nil {
		return err
	}
	id := fmt.Sprint(values[0])
	if row := indexOf(ids, id); row > 0 {
		rng := rowRange(sheet, row, len(header))
		vr := &gsheet.ValueRange{Values: [][]any{values}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		return nil
	}

	rows := [][]any{values}
	if len(ids) == 0 {
		rows = [][]any{header, values}
	}
	rng := fmt.Sprintf("%s!A:%s", sheet, column(len(header)))
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

// findRow returns the 1-based row holding id, or 0.
func (c *Client) findRow(ctx context.Context, sheet, id string) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	ids, err := c.ids(ctx, sheet)
	if err != nil {
		return 0, err
	}
	return indexOf(ids, id), nil
}

func (c *Client) ids(ctx context.Context, sheet string) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

func transactionRow(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Date.String(),
		string(t.Kind),
		t.Category,
		t.Description,
		t.Amount,
		stamp(t.CreatedAt),
		stamp(t.UpdatedAt),
	}
}

func goalRow(g core.Goal) []any {
	return []any{
		g.ID,
		g.Title,
		string(g.Category),
		string(g.Status),
		g.TargetValue,
		g.CurrentValue,
		goals.Progress(g),
		g.Deadline.String(),
		stamp(g.UpdatedAt),
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// indexOf returns the 1-based row of target in a column, skipping the header.
func indexOf(col []string, target string) int {
	for i, v := range col {
		if i == 0 {
			continue
		}
		if v == target {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, row, width int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, column(width), row)
}

// column converts a 1-based column number to its letter (A..Z).
func column(n int) string {
	if n < 1 || n > 26 {
		n = 26
	}
	return string(rune('A' + n - 1))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
