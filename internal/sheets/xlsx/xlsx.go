package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"trenerka/internal/core"
	applog "trenerka/internal/log"
	ports "trenerka/internal/sheets"
)

// defaultSheet is the sheet excelize creates in a new workbook.
const defaultSheet = "Sheet1"

var _ ports.WorkbookWriter = (*Exporter)(nil)

// Exporter serializes the session log into a single-sheet workbook.
type Exporter struct {
	sheet string
}

func New() *Exporter {
	return &Exporter{sheet: ports.SheetName}
}

// WriteWorkbook writes a header row and one row per session to w.
func (e *Exporter) WriteWorkbook(ctx context.Context, w io.Writer, sessions []core.Session) error {
	f, err := e.build(ctx, sessions)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	applog.FromContext(ctx).WithComponent(applog.ComponentExport).DebugContext(ctx, "Workbook written",
		"sheet", e.sheet, applog.FieldSessionCount, len(sessions), "bytes", n)
	return nil
}

func (e *Exporter) build(ctx context.Context, sessions []core.Session) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, e.sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(core.Columns))
	for _, h := range ports.Header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(e.sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range ports.Rows(sessions) {
		if err := ctx.Err(); err != nil {
			f.Close()
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("row %d cell name: %w", i+2, err)
		}
		values := []any(row)
		if err := f.SetSheetRow(e.sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
