package sheets

import (
	"context"
	"io"

	"trenerka/internal/core"
)

const (
	// SheetName is the single sheet of the exported workbook.
	SheetName = "Тренировки"
	// FileName is the download name of the exported workbook.
	FileName = "тренировки.xlsx"
	// FallbackFileName is offered to clients that cannot decode FileName.
	FallbackFileName = "trainings.xlsx"
)

// Ports for outbound export adapters. Both always receive the full,
// unfiltered log in store order.
type (
	WorkbookWriter interface {
		WriteWorkbook(ctx context.Context, w io.Writer, sessions []core.Session) error
	}

	// SnapshotWriter stores the log into a standalone file at path.
	SnapshotWriter interface {
		WriteSnapshot(ctx context.Context, path string, sessions []core.Session) error
	}
)

// Row is one flattened session. Cells are strings except attended, a bool.
type Row []any

// Header returns the column names in export order.
func Header() []string {
	out := make([]string, len(core.Columns))
	for i, c := range core.Columns {
		out[i] = string(c)
	}
	return out
}

// Rows flattens sessions into export rows without filtering or sorting.
func Rows(sessions []core.Session) []Row {
	rows := make([]Row, len(sessions))
	for i, s := range sessions {
		rows[i] = Row{
			s.Name,
			s.Date,
			string(s.Type),
			s.Plan,
			s.Paid,
			s.Cost,
			s.Attended,
			s.AfterComment,
			s.Comment,
			s.Balance,
		}
	}
	return rows
}
