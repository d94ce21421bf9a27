package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nitya2202/ocr-string-validation-tool/internal/config"
	"github.com/nitya2202/ocr-string-validation-tool/internal/dataset"
	"github.com/nitya2202/ocr-string-validation-tool/internal/extractor"
	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/report"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate expected strings against screenshots",
	Long: `Runs OCR validation over the configured test protocol.

For every protocol step the expected string of the active language is
looked up, the annotated region is cropped out of the step's screenshot,
OCR text is extracted from the crop and compared against the expected
string. The run writes reports in the configured formats and exits
non-zero when any step does not pass.

Examples:
  ocrval validate
  ocrval validate --language de-DE --threshold 0.9
  ocrval validate --step S12
  ocrval validate --format json --format html --workers 4`,
	SilenceUsage: true,
	RunE:         runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	// Matching flags
	validateCmd.Flags().String("strategy", "", "comparison strategy (exact, normalized, fuzzy)")
	validateCmd.Flags().Float64("threshold", 0, "minimum similarity for fuzzy matches (0.0-1.0)")

	// Extraction flags
	validateCmd.Flags().Bool("preprocess", false, "preprocess crops before OCR (grayscale, upscale, contrast)")
	validateCmd.Flags().String("backend", "", "OCR backend (tesseract, onnx)")

	// Run flags
	validateCmd.Flags().Int("workers", 0, "number of parallel validation workers")
	validateCmd.Flags().String("step", "", "validate a single protocol step by id")
	validateCmd.Flags().Bool("no-progress", false, "disable the console progress bar")
	validateCmd.Flags().Bool("no-fail", false, "exit successfully even when steps do not pass")

	// Report flags
	validateCmd.Flags().StringSlice("format", nil, "report formats to write (json, csv, html)")
	validateCmd.Flags().StringP("output", "o", "", "write the report to this file (requires a single format)")
}

// configForValidate applies the validate command's flag overrides onto the
// loaded configuration and revalidates it.
func configForValidate(cmd *cobra.Command) (*config.Config, error) {
	cfg := GetConfig()

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Validation.Strategy, _ = flags.GetString("strategy")
	}
	if flags.Changed("threshold") {
		cfg.Validation.FuzzyThreshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("preprocess") {
		cfg.Validation.Preprocess, _ = flags.GetBool("preprocess")
	}
	if flags.Changed("backend") {
		cfg.Extractor.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("workers") {
		cfg.Validation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("format") {
		cfg.Report.Formats, _ = flags.GetStringSlice("format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := configForValidate(cmd)
	if err != nil {
		return err
	}

	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile != "" && len(cfg.Report.Formats) != 1 {
		return fmt.Errorf("--output requires exactly one report format, got %d", len(cfg.Report.Formats))
	}

	ext, err := extractor.New(cfg.ToExtractorConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}
	defer func() { _ = ext.Close() }()

	m, err := cfg.Matcher()
	if err != nil {
		return err
	}

	loader := dataset.NewFileLoader(cfg.TestProtocolPath(), cfg.ExpectedStringsPath(), cfg.CoordinatesPath())

	builder := validation.NewBuilder().
		WithLoader(loader).
		WithExtractor(ext).
		WithMatcher(m).
		WithScreenshotDir(cfg.ScreenshotsDir()).
		WithRequest(cfg.ToRequest()).
		WithWorkers(cfg.Validation.Workers)

	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		builder = builder.WithObserver(validation.NewConsoleObserver(cmd.ErrOrStderr()))
	}
	if cfg.Verbose {
		builder = builder.WithObserver(validation.NewLogObserver(slog.Default(), slog.LevelDebug))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}

	results, err := runValidation(cmd, engine, loader)
	if err != nil {
		return err
	}

	summary := validation.Summarize(results)
	printSummary(cmd.OutOrStdout(), cfg.Language, summary)

	if err := writeReports(cfg, outputFile, results, summary); err != nil {
		return err
	}

	if noFail, _ := cmd.Flags().GetBool("no-fail"); !noFail && summary.Passed < summary.Total {
		return fmt.Errorf("%d of %d steps did not pass", summary.Total-summary.Passed, summary.Total)
	}
	return nil
}

// runValidation runs either the full protocol or, when --step is given, the
// single named step.
func runValidation(cmd *cobra.Command, engine *validation.Engine, loader dataset.Loader) ([]model.ValidationResult, error) {
	ctx := cmd.Context()

	stepID, _ := cmd.Flags().GetString("step")
	if stepID == "" {
		return engine.ValidateAll(ctx)
	}

	steps, err := loader.LoadTestProtocol(ctx)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		if step.StepID != stepID {
			continue
		}
		result, err := engine.ValidateStep(ctx, step)
		if err != nil {
			return nil, err
		}
		return []model.ValidationResult{result}, nil
	}
	return nil, fmt.Errorf("step %q not found in test protocol", stepID)
}

// printSummary writes the classification breakdown of a finished run.
func printSummary(w io.Writer, language string, summary model.ValidationSummary) {
	fmt.Fprintf(w, "\nValidation summary (%s)\n", language)
	fmt.Fprintf(w, "  Total steps:         %d\n", summary.Total)
	fmt.Fprintf(w, "  Passed:              %d\n", summary.Passed)
	fmt.Fprintf(w, "  Failed:              %d\n", summary.Failed)
	fmt.Fprintf(w, "  Errors:              %d\n", summary.Errors)
	fmt.Fprintf(w, "  Missing images:      %d\n", summary.MissingImages)
	fmt.Fprintf(w, "  Missing coordinates: %d\n", summary.MissingCoordinates)
	fmt.Fprintf(w, "  Pass rate:           %.1f%%\n", summary.PassRate)
	if summary.AvgConfidence > 0 {
		fmt.Fprintf(w, "  Avg confidence:      %.2f\n", summary.AvgConfidence)
	}
}

// writeReports renders the run into every configured format. When
// outputFile is set it overrides the derived path of the single format.
func writeReports(cfg *config.Config, outputFile string, results []model.ValidationResult, summary model.ValidationSummary) error {
	meta := report.Metadata{GeneratedAt: time.Now().UTC(), Language: cfg.Language}
	for _, format := range cfg.Report.Formats {
		path := cfg.ResultsPath(format)
		if outputFile != "" {
			path = outputFile
		}
		if err := report.WriteFile(path, format, meta, results, summary); err != nil {
			return fmt.Errorf("failed to write %s report: %w", format, err)
		}
		slog.Info("Report written", "format", format, "path", path)
	}
	return nil
}
