package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"trenerka/internal/core"
	"trenerka/internal/journal"
	applog "trenerka/internal/log"
	"trenerka/internal/metrics"
	ports "trenerka/internal/sheets"
)

// Export formats, as reported in logs and metrics.
const (
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

var ErrExporterUnavailable = errors.New("exporter not configured")

// JournalService orchestrates the session journal: draft edits, commits,
// derived views and exports.
type JournalService struct {
	store     journal.Store
	workbook  ports.WorkbookWriter
	snapshot  ports.SnapshotWriter
	metrics   *metrics.Recorder
	logger    *applog.Logger
	weekOrder core.WeekOrder
}

type Option func(*JournalService)

func WithWorkbookWriter(w ports.WorkbookWriter) Option {
	return func(s *JournalService) { s.workbook = w }
}

func WithSnapshotWriter(w ports.SnapshotWriter) Option {
	return func(s *JournalService) { s.snapshot = w }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *JournalService) { s.metrics = m }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *JournalService) { s.logger = l }
}

func WithWeekOrder(o core.WeekOrder) Option {
	return func(s *JournalService) { s.weekOrder = o }
}

func NewJournalService(store journal.Store, opts ...Option) *JournalService {
	s := &JournalService{store: store, weekOrder: core.Ascending}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.FromContext(context.Background())
	}
	s.logger = s.logger.WithComponent(applog.ComponentJournal)
	return s
}

// UpdateDraftField sets one draft field by its form name. Unknown names
// return an error wrapping core.ErrUnknownField.
func (s *JournalService) UpdateDraftField(ctx context.Context, field, value string) error {
	f, err := core.ParseField(field)
	if err == nil {
		err = s.store.UpdateDraftField(ctx, f, value)
	}
	s.metrics.DraftUpdated(metricField(f), err)
	if err != nil {
		return fmt.Errorf("update draft field %q: %w", field, err)
	}
	s.logger.DebugContext(ctx, "Draft updated", applog.FieldDraftField, field)
	return nil
}

// Draft returns the live draft.
func (s *JournalService) Draft(ctx context.Context) (core.Draft, error) {
	return s.store.Draft(ctx)
}

// AddSession commits the draft. The draft is reset by the store.
func (s *JournalService) AddSession(ctx context.Context) (core.Session, error) {
	session, err := s.store.AddSession(ctx)
	if err != nil {
		return core.Session{}, fmt.Errorf("add session: %w", err)
	}

	total := -1
	if all, err := s.store.Sessions(ctx); err == nil {
		total = len(all)
		s.metrics.SessionAdded(total)
	}

	applog.NewStructuredLogger(s.logger).
		LogSessionAdded(ctx, session.Name, session.Date, string(session.Type), session.Balance, total)
	return session, nil
}

// Sessions returns the log filtered by name. An empty filter returns every
// session.
func (s *JournalService) Sessions(ctx context.Context, filter string) ([]core.Session, error) {
	all, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return core.FilterByName(all, filter), nil
}

// SessionCount returns the number of committed sessions. The log is
// append-only, so the count identifies its state.
func (s *JournalService) SessionCount(ctx context.Context) (int, error) {
	all, err := s.store.Sessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	return len(all), nil
}

// WeeklyTotals aggregates the whole log, ignoring any filter.
func (s *JournalService) WeeklyTotals(ctx context.Context) (core.WeeklySummary, error) {
	all, err := s.store.Sessions(ctx)
	if err != nil {
		return core.WeeklySummary{}, fmt.Errorf("list sessions: %w", err)
	}
	summary := core.WeeklyTotals(all, s.weekOrder)
	if summary.HasInvalid() {
		s.logger.WarnContext(ctx, "Weekly totals contain invalid records",
			"skipped", summary.Skipped, "weeks", len(summary.Weeks))
	}
	return summary, nil
}

// ExportWorkbook writes every committed session to w as a spreadsheet.
func (s *JournalService) ExportWorkbook(ctx context.Context, w io.Writer) error {
	if s.workbook == nil {
		return ErrExporterUnavailable
	}
	return s.export(ctx, FormatXLSX, func(all []core.Session) error {
		return s.workbook.WriteWorkbook(ctx, w, all)
	})
}

// ExportSnapshot writes every committed session into a new SQLite file.
func (s *JournalService) ExportSnapshot(ctx context.Context, path string) error {
	if s.snapshot == nil {
		return ErrExporterUnavailable
	}
	return s.export(ctx, FormatSQLite, func(all []core.Session) error {
		return s.snapshot.WriteSnapshot(ctx, path, all)
	})
}

func (s *JournalService) export(ctx context.Context, format string, write func([]core.Session) error) error {
	all, err := s.store.Sessions(ctx)
	if err == nil {
		err = write(all)
	}
	s.metrics.Exported(format, err)

	if err != nil {
		applog.NewStructuredLogger(s.logger).LogError(ctx, "Export failed", err,
			applog.ComponentExport, applog.OpExport,
			applog.NewFields().WithErrorType(applog.ErrorTypeExport))
		return fmt.Errorf("export %s: %w", format, err)
	}

	s.logger.WithComponent(applog.ComponentExport).InfoContext(ctx, "Journal exported",
		applog.FieldFormat, format, applog.FieldSessionCount, len(all))
	return nil
}

// metricField keeps label cardinality bounded to the known field names.
func metricField(f core.Field) string {
	if f == "" {
		return "unknown"
	}
	return string(f)
}
