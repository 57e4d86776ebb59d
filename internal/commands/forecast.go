package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgeflow-dev/forgeflow/internal/analysis"
	"github.com/forgeflow-dev/forgeflow/internal/report"
)

// stdoutPath selects standard output for --out.
const stdoutPath = "-"

func newForecastCommand(root *rootOptions) *cobra.Command {
	var out, format, csvPath string

	cmd := &cobra.Command{
		Use:   "forecast <file>",
		Short: "Forecast the cash balance of one ledger and render a report",
		Long: "Forecast reads a CSV ledger, a text export or a receipt image, projects the\n" +
			"balance 90 days past the last transaction and renders the insights.\n" +
			"Text and JSON reports go to stdout unless --out is given; PDF reports are\n" +
			"written to the reports directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := report.ForName(format)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), root.configPath, root.logLevel)
			if err != nil {
				return err
			}

			res, err := a.service.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if res.Dropped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d line(s) without an amount were skipped\n", res.Dropped)
			}

			if out == "" {
				out = defaultReportPath(a.cfg.Storage.ReportsDir, res, renderer)
			}
			if err := writeReport(cmd.OutOrStdout(), out, renderer, res); err != nil {
				return err
			}
			if out != stdoutPath {
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			}

			if csvPath != "" {
				if err := writeForecastCSV(csvPath, res); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forecast written to %s\n", csvPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", `report path ("-" for stdout)`)
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "report format: pdf, text or json")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the forecast series as CSV")

	return cmd
}

// defaultReportPath sends text-like reports to stdout and PDFs to
// <reportsDir>/<input stem>.pdf.
func defaultReportPath(reportsDir string, res *analysis.Result, renderer report.Renderer) string {
	if _, ok := renderer.(report.PDF); !ok {
		return stdoutPath
	}
	return filepath.Join(reportsDir, reportName(res.Source, renderer))
}

func reportName(source string, renderer report.Renderer) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + renderer.Extension()
}

func writeReport(stdout io.Writer, path string, renderer report.Renderer, res *analysis.Result) error {
	rep := report.Report{Insight: res.Insight, Projection: res.Projection}
	if path == stdoutPath {
		return renderer.Render(stdout, rep)
	}
	return writeFile(path, func(w io.Writer) error { return renderer.Render(w, rep) })
}

func writeForecastCSV(path string, res *analysis.Result) error {
	return writeFile(path, func(w io.Writer) error {
		return report.WriteForecastCSV(w, res.Projection.Points)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
