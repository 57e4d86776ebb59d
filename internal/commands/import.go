package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/forgeflow-dev/forgeflow/internal/analysis"
	"github.com/forgeflow-dev/forgeflow/internal/config"
	"github.com/forgeflow-dev/forgeflow/internal/importer"
	"github.com/forgeflow-dev/forgeflow/internal/report"
	"github.com/forgeflow-dev/forgeflow/internal/runlog"
)

func newImportCommand(root *rootOptions) *cobra.Command {
	var repoDir, schedule, format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Process every ledger waiting in import/",
		Long: "Import analyzes each supported file in <repo>/import, writes a report per\n" +
			"file to the reports directory, moves the input to import/processed and\n" +
			"appends the run log. With --schedule it repeats on a cron schedule until\n" +
			"interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			renderer, err := report.ForName(format)
			if err != nil {
				return err
			}

			cfgPath := root.configPath
			if !cmd.Flags().Changed("config") {
				cfgPath = filepath.Join(absDir, config.FileName)
			}
			a, err := newApp(cmd.Context(), cfgPath, root.logLevel)
			if err != nil {
				return err
			}

			run := func(ctx context.Context) error {
				return runImport(ctx, cmd.OutOrStdout(), a, absDir, renderer)
			}
			if schedule == "" {
				return run(cmd.Context())
			}
			return runScheduled(cmd.Context(), a, schedule, run)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().StringVar(&schedule, "schedule", "", `cron schedule, e.g. "*/15 * * * *" or "@hourly"`)
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "report format: pdf, text or json")

	return cmd
}

func runImport(ctx context.Context, stdout io.Writer, a *app, repoRoot string, renderer report.Renderer) error {
	files, err := importer.Scan(repoRoot)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(stdout, "No files to import")
		return nil
	}

	reportsDir := a.cfg.Storage.ReportsDir
	if !filepath.IsAbs(reportsDir) {
		reportsDir = filepath.Join(repoRoot, reportsDir)
	}

	var (
		entries  []runlog.Entry
		failed   int
		firstErr error
	)
	for _, f := range files {
		res, err := a.service.Analyze(ctx, f.Path)
		if err != nil {
			failed++
			fmt.Fprintf(stdout, "  %s: %v\n", f.Name, err)
			if !analysis.IsUserError(err) && firstErr == nil {
				firstErr = err
			}
			continue
		}

		name := reportName(res.Source, renderer)
		err = writeReport(stdout, filepath.Join(reportsDir, name), renderer, res)
		if err == nil {
			err = importer.MarkProcessed(repoRoot, f.Name)
		}
		if err != nil {
			failed++
			fmt.Fprintf(stdout, "  %s: %v\n", f.Name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		entries = append(entries, runlog.Entry{
			Timestamp:     time.Now(),
			RunID:         res.RunID,
			Source:        res.Source,
			Format:        res.Format,
			Transactions:  len(res.Ledger),
			DroppedLines:  res.Dropped,
			InsightSource: string(res.Insight.Source),
			Report:        filepath.ToSlash(filepath.Join(filepath.Base(reportsDir), name)),
		})
		fmt.Fprintf(stdout, "  %s: %d transaction(s) -> %s\n", f.Name, len(res.Ledger), name)
	}

	if len(entries) > 0 {
		if err := runlog.Append(repoRoot, entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write run log: %v\n", err)
		}
	}

	fmt.Fprintf(stdout, "Processed %d file(s), %d failed\n", len(entries), failed)
	return firstErr
}

// runScheduled runs fn on the cron schedule until SIGINT/SIGTERM or ctx
// cancellation. Overlapping runs are skipped.
func runScheduled(ctx context.Context, a *app, schedule string, fn func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		if err := fn(ctx); err != nil {
			a.log.Error().Err(err).Msg("Scheduled import failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	a.log.Info().Str("schedule", schedule).Msg("Import scheduler started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	a.log.Info().Msg("Import scheduler stopped")
	return nil
}
