package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trenerka/internal/core"
	applog "trenerka/internal/log"
	ports "trenerka/internal/sheets"

	_ "modernc.org/sqlite"
)

var ErrSnapshotExists = errors.New("snapshot file already exists")

var _ ports.SnapshotWriter = (*SnapshotExporter)(nil)

// SnapshotExporter writes the session log into a new SQLite file. The file
// is an export artifact; nothing reads it back into the store.
type SnapshotExporter struct {
	now func() time.Time
}

func NewSnapshotExporter() *SnapshotExporter {
	return &SnapshotExporter{now: time.Now}
}

// WriteSnapshot creates path and stores every session with its position.
// An existing file is never overwritten.
func (e *SnapshotExporter) WriteSnapshot(ctx context.Context, path string, sessions []core.Session) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrSnapshotExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open snapshot database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping snapshot database: %w", err)
	}
	version, err := migrateSnapshot(path)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sessions
		(position, name, date, type, plan, paid, cost, attended, after_comment, comment, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range sessions {
		attended := 0
		if s.Attended {
			attended = 1
		}
		if _, err := stmt.ExecContext(ctx, i+1, s.Name, s.Date, string(s.Type), s.Plan,
			s.Paid, s.Cost, attended, s.AfterComment, s.Comment, s.Balance); err != nil {
			return fmt.Errorf("insert session %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, exported_at, session_count, schema_version) VALUES (1, ?, ?, ?)`,
		e.now().UTC().Format(time.RFC3339), len(sessions), version); err != nil {
		return fmt.Errorf("insert snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentStorage).InfoContext(ctx, "Snapshot written",
		"path", path, applog.FieldSessionCount, len(sessions), "schema_version", version)
	return nil
}
