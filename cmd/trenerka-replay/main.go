package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"trenerka/internal/cli"
	"trenerka/internal/config"
	"trenerka/internal/journal/memory"
	applog "trenerka/internal/log"
	"trenerka/internal/replay"
	"trenerka/internal/report"
	ports "trenerka/internal/sheets"
	"trenerka/internal/sheets/xlsx"
	"trenerka/internal/services"
	"trenerka/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	var inPath string

	root := &cobra.Command{
		Use:           "trenerka-replay",
		Short:         "Replay recorded training form entries through the journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&inPath, "in", "", "YAML file with form entries")
	_ = root.MarkPersistentFlagRequired("in")

	root.AddCommand(newExportCmd(&inPath, logOut))
	root.AddCommand(newReportCmd(&inPath, logOut))
	root.AddCommand(newSnapshotCmd(&inPath, logOut))
	return root
}

// loadJournal replays the entries in path into a fresh in-memory journal.
func loadJournal(ctx context.Context, path string, logOut io.Writer) (*services.JournalService, error) {
	cfg := config.Load()
	logger := cli.SetupLogger(cfg, logOut).WithComponent(applog.ComponentReplay)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := replay.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	journal := services.NewJournalService(memory.New(),
		services.WithWorkbookWriter(xlsx.New()),
		services.WithSnapshotWriter(storage.NewSnapshotExporter()),
		services.WithLogger(logger),
		services.WithWeekOrder(cli.WeekOrder(cfg)),
	)
	added, err := replay.Run(ctx, journal, entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.InfoContext(ctx, "Entries replayed",
		"file", path, applog.FieldSessionCount, len(added))
	return journal, nil
}

func newExportCmd(inPath *string, logOut io.Writer) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the replayed journal to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			journal, err := loadJournal(ctx, *inPath, logOut)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := journal.ExportWorkbook(ctx, &buf); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", ports.FileName, "workbook path")
	return cmd
}

func newReportCmd(inPath *string, logOut io.Writer) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print weekly payments and the session list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			journal, err := loadJournal(ctx, *inPath, logOut)
			if err != nil {
				return err
			}

			summary, err := journal.WeeklyTotals(ctx)
			if err != nil {
				return err
			}
			sessions, err := journal.Sessions(ctx, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, report.WeeklyTable(summary))
			_, _ = fmt.Fprintln(out, report.SessionList(sessions))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "show only sessions whose name contains this text")
	return cmd
}

func newSnapshotCmd(inPath *string, logOut io.Writer) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the replayed journal to a new SQLite file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			journal, err := loadJournal(ctx, *inPath, logOut)
			if err != nil {
				return err
			}
			if err := journal.ExportSnapshot(ctx, dbPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s\n", dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to create")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
