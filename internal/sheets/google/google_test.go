package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"drivefin/internal/core"
	"drivefin/internal/storage"

	goption "google.golang.org/api/option"
)

type call struct {
	Method string
	Range  string
	Values [][]any
}

// fakeSheets serves column A of each sheet and records every write.
type fakeSheets struct {
	mu      sync.Mutex
	columns map[string][]string
	calls   []call
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/v4/spreadsheets/sheet-id/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodGet {
		sheet, _, _ := strings.Cut(rng, "!")
		rows := [][]string{}
		for _, v := range f.columns[sheet] {
			rows = append(rows, []string{v})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": rows})
		return
	}

	var body struct {
		Values [][]any `json:"values"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	method := "update"
	switch {
	case strings.HasSuffix(rng, ":append"):
		method, rng = "append", strings.TrimSuffix(rng, ":append")
	case strings.HasSuffix(rng, ":clear"):
		method, rng = "clear", strings.TrimSuffix(rng, ":clear")
	}
	f.calls = append(f.calls, call{Method: method, Range: rng, Values: body.Values})
	_, _ = w.Write([]byte(`{}`))
}

func newTestClient(t *testing.T, columns map[string][]string) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{columns: columns}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, fake
}

func sampleTransaction() core.Transaction {
	created := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	return core.Transaction{
		ID:          "t-1",
		Kind:        core.Income,
		Amount:      42.5,
		Description: "Corrida aeroporto",
		Category:    "Uber",
		Date:        core.NewDate(2025, 6, 18),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestExportTransaction_AppendsWithHeaderOnEmptySheet(t *testing.T) {
	c, fake := newTestClient(t, map[string][]string{})

	if err := c.ExportTransaction(context.Background(), sampleTransaction()); err != nil {
		t.Fatalf("ExportTransaction: %v", err)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(fake.calls))
	}
	got := fake.calls[0]
	if got.Method != "append" || got.Range != "Transactions!A:H" {
		t.Errorf("unexpected call: %+v", got)
	}
	if len(got.Values) != 2 || got.Values[0][0] != "ID" || got.Values[1][0] != "t-1" {
		t.Errorf("expected header and row, got %v", got.Values)
	}
}

func TestExportTransaction_UpdatesExistingRow(t *testing.T) {
	c, fake := newTestClient(t, map[string][]string{
		"Transactions": {"ID", "t-0", "t-1"},
	})

	if err := c.ExportTransaction(context.Background(), sampleTransaction()); err != nil {
		t.Fatalf("ExportTransaction: %v", err)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(fake.calls))
	}
	if got := fake.calls[0]; got.Method != "update" || got.Range != "Transactions!A3:H3" {
		t.Errorf("unexpected call: %+v", got)
	}
}

func TestExportGoal_AppendsWithoutHeader(t *testing.T) {
	c, fake := newTestClient(t, map[string][]string{
		"Goals": {"ID", "g-0"},
	})

	g := core.Goal{
		ID: "g-1", Title: "Reserva", TargetValue: 1000, CurrentValue: 500,
		Deadline: core.NewDate(2025, 12, 31), Category: core.CategoryEmergency, Status: core.GoalActive,
	}
	if err := c.ExportGoal(context.Background(), g); err != nil {
		t.Fatalf("ExportGoal: %v", err)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(fake.calls))
	}
	got := fake.calls[0]
	if got.Method != "append" || got.Range != "Goals!A:I" || len(got.Values) != 1 {
		t.Errorf("unexpected call: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name      string
		kind      storage.Kind
		id        string
		wantCalls []call
	}{
		{"existing goal", storage.KindGoals, "g-1", []call{{Method: "clear", Range: "Goals!A2:I2"}}},
		{"missing id", storage.KindGoals, "nope", nil},
		{"kind not exported", storage.KindSessions, "s-1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestClient(t, map[string][]string{"Goals": {"ID", "g-1"}})

			if err := c.Remove(context.Background(), tt.kind, tt.id); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if len(fake.calls) != len(tt.wantCalls) {
				t.Fatalf("expected %d writes, got %+v", len(tt.wantCalls), fake.calls)
			}
			for i, want := range tt.wantCalls {
				if fake.calls[i].Method != want.Method || fake.calls[i].Range != want.Range {
					t.Errorf("call %d = %+v, want %+v", i, fake.calls[i], want)
				}
			}
		})
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestColumnAndRange(t *testing.T) {
	tests := []struct {
		width int
		row   int
		want  string
	}{
		{1, 2, "S!A2:A2"},
		{8, 5, "S!A5:H5"},
		{9, 10, "S!A10:I10"},
	}
	for _, tt := range tests {
		if got := rowRange("S", tt.row, tt.width); got != tt.want {
			t.Errorf("rowRange(%d, %d) = %q, want %q", tt.row, tt.width, got, tt.want)
		}
	}
}

func TestIndexOfSkipsHeader(t *testing.T) {
	col := []string{"t-1", "t-2", "t-1"}
	if got := indexOf(col, "t-1"); got != 3 {
		t.Errorf("indexOf = %d, want 3", got)
	}
	if got := indexOf(col, "t-9"); got != 0 {
		t.Errorf("indexOf missing = %d, want 0", got)
	}
}

func TestTransactionRow(t *testing.T) {
	row := transactionRow(sampleTransaction())
	want := []any{"t-1", "2025-06-18", "income", "Uber", "Corrida aeroporto", 42.5, "2025-06-18T10:00:00Z", "2025-06-18T10:00:00Z"}
	if len(row) != len(want) {
		t.Fatalf("row has %d cells, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, row[i], want[i])
		}
	}
}
