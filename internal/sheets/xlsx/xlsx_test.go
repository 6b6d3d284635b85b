package xlsx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"trenerka/internal/core"
	applog "trenerka/internal/log"
	ports "trenerka/internal/sheets"
)

func sampleSessions() []core.Session {
	return []core.Session{
		{Name: "Иван", Date: "2024-06-03", Type: core.Game, Plan: "подачи", Paid: "1000", Cost: "200", Attended: true, AfterComment: "ок", Comment: "-", Balance: "800.00"},
		{Name: "Анна", Date: "2024-06-05", Type: core.Personal, Paid: "500", Cost: "0", Balance: "500.00"},
	}
}

func readBack(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != ports.SheetName {
		t.Fatalf("sheets = %v, want [%s]", sheets, ports.SheetName)
	}
	rows, err := f.GetRows(ports.SheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	return rows
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := New().WriteWorkbook(context.Background(), &buf, sampleSessions()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	rows := readBack(t, &buf)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	header := ports.Header()
	for i, h := range header {
		if rows[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}

	first := rows[1]
	if first[0] != "Иван" || first[1] != "2024-06-03" || first[2] != "игровая" || first[9] != "800.00" {
		t.Fatalf("unexpected first row %v", first)
	}
	if first[6] != "TRUE" {
		t.Fatalf("attended cell = %q, want TRUE", first[6])
	}
	if rows[2][0] != "Анна" || rows[2][6] != "FALSE" || rows[2][9] != "500.00" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}

func TestWriteWorkbookEmptyLog(t *testing.T) {
	var buf bytes.Buffer
	if err := New().WriteWorkbook(context.Background(), &buf, nil); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	rows := readBack(t, &buf)
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d", len(rows))
	}
}

func TestWriteWorkbookCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := New().WriteWorkbook(ctx, &buf, sampleSessions()); err == nil {
		t.Fatalf("expected context error")
	}
}


func TestWriteWorkbookLogsUnderExportComponent(t *testing.T) {
	var logs bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "json", Output: &logs})
	ctx := applog.WithLogger(context.Background(), logger)

	var buf bytes.Buffer
	if err := New().WriteWorkbook(ctx, &buf, sampleSessions()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, `"msg":"Workbook written"`) || !strings.Contains(out, `"component":"export"`) {
		t.Fatalf("log = %s", out)
	}
	if !strings.Contains(out, `"session_count":2`) {
		t.Errorf("log missing session count: %s", out)
	}
}
