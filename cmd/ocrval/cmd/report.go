package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nitya2202/ocr-string-validation-tool/internal/report"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report <results.json>",
	Short: "Re-render reports from a saved JSON results file",
	Long: `Renders a previously written JSON results file into another format.

The summary is recomputed from the stored results, so a report can be
re-rendered without re-running OCR.

Examples:
  ocrval report output/results-de-DE.json --format html --output report.html
  ocrval report output/results-de-DE.json --format csv`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runReportCommand,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("format", report.FormatHTML, "output format (json, csv, html)")
	reportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func runReportCommand(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0]) //nolint:gosec // G304: rendering a user-named results file is the point
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}
	defer func() { _ = file.Close() }()

	results, meta, err := report.ReadResults(file)
	if err != nil {
		return fmt.Errorf("failed to parse results file: %w", err)
	}
	summary := validation.Summarize(results)

	format, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output")

	if outputFile == "" {
		reporter, err := report.New(format, cmd.OutOrStdout(), meta)
		if err != nil {
			return err
		}
		return reporter.Write(results, summary)
	}

	if err := report.WriteFile(outputFile, format, meta, results, summary); err != nil {
		return err
	}
	slog.Info("Report written", "format", format, "path", outputFile)
	return nil
}
