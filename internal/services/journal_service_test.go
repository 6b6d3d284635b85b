package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"trenerka/internal/core"
	"trenerka/internal/journal/memory"
	applog "trenerka/internal/log"
	"trenerka/internal/metrics"
	ports "trenerka/internal/sheets"
	"trenerka/internal/sheets/xlsx"
	"trenerka/internal/storage"
)

type failingWorkbook struct{}

func (failingWorkbook) WriteWorkbook(context.Context, io.Writer, []core.Session) error {
	return errors.New("disk full")
}

var _ ports.WorkbookWriter = failingWorkbook{}

func newTestService(t *testing.T, opts ...Option) (*JournalService, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	opts = append([]Option{WithLogger(logger), WithWorkbookWriter(xlsx.New())}, opts...)
	return NewJournalService(memory.New(), opts...), &buf
}

func submit(t *testing.T, s *JournalService, fields map[string]string) core.Session {
	t.Helper()
	ctx := context.Background()
	for k, v := range fields {
		if err := s.UpdateDraftField(ctx, k, v); err != nil {
			t.Fatalf("UpdateDraftField(%s): %v", k, err)
		}
	}
	session, err := s.AddSession(ctx)
	if err != nil {
		t.Fatalf("AddSession: %v", err)
	}
	return session
}

func addScenario(t *testing.T, s *JournalService) {
	t.Helper()
	submit(t, s, map[string]string{"name": "Иван", "date": "2024-06-03", "type": "игровая", "paid": "1000", "cost": "200"})
	submit(t, s, map[string]string{"name": "Анна", "date": "2024-06-05", "type": "персональная", "paid": "500", "cost": "0"})
}

func TestJournalService_Scenario(t *testing.T) {
	s, logs := newTestService(t)
	ctx := context.Background()
	addScenario(t, s)

	all, err := s.Sessions(ctx, "")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(all) != 2 || all[0].Balance != "800.00" || all[1].Balance != "500.00" {
		t.Fatalf("sessions = %+v", all)
	}

	filtered, _ := s.Sessions(ctx, "иван")
	if len(filtered) != 1 || filtered[0].Name != "Иван" {
		t.Fatalf("filtered = %+v", filtered)
	}

	summary, err := s.WeeklyTotals(ctx)
	if err != nil {
		t.Fatalf("WeeklyTotals: %v", err)
	}
	if len(summary.Weeks) != 1 || summary.Weeks[0].Week != "2024-06-02" || summary.Weeks[0].Total.StringFixed(2) != "1500.00" {
		t.Fatalf("summary = %+v", summary)
	}

	var out bytes.Buffer
	if err := s.ExportWorkbook(ctx, &out); err != nil {
		t.Fatalf("ExportWorkbook: %v", err)
	}
	f, err := excelize.OpenReader(&out)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	rows, err := f.GetRows(ports.SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("workbook rows = %d, want header + 2", len(rows))
	}

	if !strings.Contains(logs.String(), `"msg":"Session added"`) || !strings.Contains(logs.String(), `"msg":"Journal exported"`) {
		t.Errorf("expected session and export logs, got:\n%s", logs.String())
	}
}

func TestJournalService_DraftResetAfterAdd(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	submit(t, s, map[string]string{"name": "Иван", "attended": "да", "type": "персональная"})

	d, err := s.Draft(ctx)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if d != core.NewDraft() {
		t.Fatalf("draft not reset: %+v", d)
	}
}

func TestJournalService_UnknownField(t *testing.T) {
	m := metrics.New()
	s, _ := newTestService(t, WithMetrics(m))

	err := s.UpdateDraftField(context.Background(), "balance", "100")
	if !errors.Is(err, core.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if !strings.Contains(err.Error(), `"balance"`) {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestJournalService_ExportIgnoresFilter(t *testing.T) {
	s, _ := newTestService(t)
	addScenario(t, s)

	if _, err := s.Sessions(context.Background(), "анна"); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := s.ExportWorkbook(context.Background(), &out); err != nil {
		t.Fatalf("ExportWorkbook: %v", err)
	}
	f, _ := excelize.OpenReader(&out)
	rows, _ := f.GetRows(ports.SheetName)
	if len(rows) != 3 || rows[1][0] != "Иван" || rows[2][0] != "Анна" {
		t.Fatalf("export must hold every session in store order, got %v", rows)
	}
}

func TestJournalService_ExportFailure(t *testing.T) {
	s, logs := newTestService(t, WithWorkbookWriter(failingWorkbook{}))
	addScenario(t, s)

	err := s.ExportWorkbook(context.Background(), io.Discard)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped export error, got %v", err)
	}
	if !strings.Contains(logs.String(), `"msg":"Export failed"`) {
		t.Errorf("export failure must be logged:\n%s", logs.String())
	}
}

func TestJournalService_ExporterUnavailable(t *testing.T) {
	s := NewJournalService(memory.New(), WithLogger(applog.New(applog.Config{Output: io.Discard})))

	if err := s.ExportWorkbook(context.Background(), io.Discard); !errors.Is(err, ErrExporterUnavailable) {
		t.Errorf("ExportWorkbook err = %v", err)
	}
	if err := s.ExportSnapshot(context.Background(), "x.db"); !errors.Is(err, ErrExporterUnavailable) {
		t.Errorf("ExportSnapshot err = %v", err)
	}
}

func TestJournalService_ExportSnapshot(t *testing.T) {
	s, _ := newTestService(t, WithSnapshotWriter(storage.NewSnapshotExporter()))
	addScenario(t, s)

	path := filepath.Join(t.TempDir(), "journal.db")
	if err := s.ExportSnapshot(context.Background(), path); err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}
	err := s.ExportSnapshot(context.Background(), path)
	if !errors.Is(err, storage.ErrSnapshotExists) {
		t.Fatalf("second snapshot err = %v, want ErrSnapshotExists", err)
	}
}

func TestJournalService_WeekOrder(t *testing.T) {
	s, _ := newTestService(t, WithWeekOrder(core.FirstSeen))
	submit(t, s, map[string]string{"date": "2024-06-12", "paid": "1"})
	submit(t, s, map[string]string{"date": "2024-06-03", "paid": "2"})

	summary, _ := s.WeeklyTotals(context.Background())
	if len(summary.Weeks) != 2 || summary.Weeks[0].Week != "2024-06-09" {
		t.Fatalf("first-seen order not kept: %+v", summary.Weeks)
	}
}

func TestSessionCountFollowsLog(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if n, err := s.SessionCount(ctx); err != nil || n != 0 {
		t.Fatalf("SessionCount() = %d, %v; want 0", n, err)
	}
	addScenario(t, s)
	if n, _ := s.SessionCount(ctx); n != 2 {
		t.Fatalf("SessionCount() = %d, want 2", n)
	}
}
