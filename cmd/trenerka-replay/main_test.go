package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	ports "trenerka/internal/sheets"
	"trenerka/internal/storage"
)

const entries = `
- name: Иван
  date: 2024-06-03
  type: игровая
  paid: 1000
  cost: 200
  attended: да
- name: Анна
  date: 2024-06-05
  type: персональная
  paid: 500
  cost: 500
`

func writeEntries(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entries.yaml")
	if err := os.WriteFile(path, []byte(entries), 0o644); err != nil {
		t.Fatalf("write entries: %v", err)
	}
	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(io.Discard)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReport(t *testing.T) {
	in := writeEntries(t)

	out, err := execute("report", "--in", in, "--filter", "иван")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"2024-06-02", "1500.00₽", "Иван"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Анна") {
		t.Errorf("filtered report lists Анна\n%s", out)
	}
}

func TestExport(t *testing.T) {
	in := writeEntries(t)
	outPath := filepath.Join(t.TempDir(), ports.FileName)

	if _, err := execute("export", "--in", in, "--out", outPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(ports.SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
}

func TestSnapshot(t *testing.T) {
	in := writeEntries(t)
	db := filepath.Join(t.TempDir(), "snapshot.db")

	if _, err := execute("snapshot", "--in", in, "--db", db); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("snapshot file: %v", err)
	}

	_, err := execute("snapshot", "--in", in, "--db", db)
	if !errors.Is(err, storage.ErrSnapshotExists) {
		t.Fatalf("second snapshot err = %v, want ErrSnapshotExists", err)
	}
}

func TestBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("- balance: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute("report", "--in", path); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := execute("report"); err == nil {
		t.Fatal("expected missing --in error")
	}
}
