package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitya2202/ocr-string-validation-tool/internal/config"
	"github.com/nitya2202/ocr-string-validation-tool/internal/extractor"
	"github.com/nitya2202/ocr-string-validation-tool/internal/matcher"
	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/report"
	"github.com/nitya2202/ocr-string-validation-tool/internal/utils"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

func TestValidateCommand(t *testing.T) {
	assert.NotNil(t, validateCmd)
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Short)
	assert.NotEmpty(t, validateCmd.Long)
	assert.True(t, validateCmd.SilenceUsage)
}

func TestValidateCommandFlags(t *testing.T) {
	flags := validateCmd.Flags()

	expectedFlags := []string{
		"strategy", "threshold", "preprocess", "backend",
		"workers", "step", "no-progress", "no-fail",
		"format", "output",
	}
	for _, name := range expectedFlags {
		assert.NotNil(t, flags.Lookup(name), "Expected flag '%s' not found", name)
	}
}

func TestConfigForValidate_Overrides(t *testing.T) {
	flags := validateCmd.Flags()
	require.NoError(t, flags.Set("strategy", "exact"))
	require.NoError(t, flags.Set("threshold", "0.9"))
	require.NoError(t, flags.Set("workers", "3"))
	require.NoError(t, flags.Set("format", "json"))

	cfg, err := configForValidate(validateCmd)
	require.NoError(t, err)

	assert.Equal(t, "exact", cfg.Validation.Strategy)
	assert.InDelta(t, 0.9, cfg.Validation.FuzzyThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Validation.Workers)
	assert.Equal(t, []string{"json"}, cfg.Report.Formats)

	// The override must not leak into the shared configuration.
	assert.NotEqual(t, "exact", globalConfig.Validation.Strategy)
}

func TestConfigForValidate_InvalidThreshold(t *testing.T) {
	flags := validateCmd.Flags()
	require.NoError(t, flags.Set("threshold", "1.5"))
	defer func() {
		// pflag keeps Changed set, so restore the default value
		require.NoError(t, flags.Set("threshold", "0.8"))
	}()

	_, err := configForValidate(validateCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fuzzy_threshold")
}

// fakeLoader serves fixed in-memory datasets.
type fakeLoader struct {
	steps   []model.TestStep
	strings model.ExpectedStrings
	coords  model.CoordinateIndex
}

func (l *fakeLoader) LoadTestProtocol(ctx context.Context) ([]model.TestStep, error) {
	return l.steps, nil
}

func (l *fakeLoader) LoadExpectedStrings(ctx context.Context) (model.ExpectedStrings, error) {
	return l.strings, nil
}

func (l *fakeLoader) LoadCoordinates(ctx context.Context) (model.CoordinateIndex, error) {
	return l.coords, nil
}

// fakeExtractor returns a fixed recognition result.
type fakeExtractor struct {
	text       string
	confidence float64
}

func (e *fakeExtractor) Extract(ctx context.Context, img image.Image, req extractor.Request) (extractor.Result, error) {
	return extractor.Result{Text: e.text, Confidence: e.confidence}, nil
}

func (e *fakeExtractor) Close() error { return nil }

func TestRunValidation_SingleStep(t *testing.T) {
	screenshotDir := t.TempDir()
	require.NoError(t, utils.SaveImage(
		imaging.New(200, 100, color.White),
		filepath.Join(screenshotDir, "MainMenu.png"),
	))

	steps := []model.TestStep{
		{StepID: "S1", ScreenID: "MainMenu", ExpectedStringID: "title"},
		{StepID: "S2", ScreenID: "MainMenu", ExpectedStringID: "subtitle"},
	}
	loader := &fakeLoader{
		steps: steps,
		strings: model.ExpectedStrings{
			"title":    "Settings",
			"subtitle": "General",
		},
		coords: model.CoordinateIndex{
			steps[0].Key(): {Left: 10, Top: 10, Right: 150, Bottom: 60},
			steps[1].Key(): {Left: 10, Top: 60, Right: 150, Bottom: 90},
		},
	}

	m, err := matcher.Default(0.8)
	require.NoError(t, err)

	engine, err := validation.NewBuilder().
		WithLoader(loader).
		WithExtractor(&fakeExtractor{text: "Settings", confidence: 0.94}).
		WithMatcher(m).
		WithScreenshotDir(screenshotDir).
		Build()
	require.NoError(t, err)

	newStepCommand := func(stepID string) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().String("step", "", "")
		require.NoError(t, cmd.Flags().Set("step", stepID))
		cmd.SetContext(context.Background())
		return cmd
	}

	t.Run("step found", func(t *testing.T) {
		results, err := runValidation(newStepCommand("S1"), engine, loader)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "S1", results[0].Step.StepID)
		assert.Equal(t, model.MatchPass, results[0].Result)
	})

	t.Run("step not found", func(t *testing.T) {
		_, err := runValidation(newStepCommand("S99"), engine, loader)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found in test protocol")
	})
}

func TestPrintSummary(t *testing.T) {
	summary := model.ValidationSummary{
		Total:         4,
		Passed:        2,
		Failed:        1,
		MissingImages: 1,
		PassRate:      50.0,
		AvgConfidence: 0.91,
	}

	buf := new(bytes.Buffer)
	printSummary(buf, "de-DE", summary)

	output := buf.String()
	assert.Contains(t, output, "Validation summary (de-DE)")
	assert.Contains(t, output, "Total steps:         4")
	assert.Contains(t, output, "Passed:              2")
	assert.Contains(t, output, "Missing images:      1")
	assert.Contains(t, output, "Pass rate:           50.0%")
	assert.Contains(t, output, "Avg confidence:      0.91")
}

func TestWriteReports(t *testing.T) {
	conf := 0.93
	results := []model.ValidationResult{
		{
			Step:          model.TestStep{StepID: "S1", ScreenID: "MainMenu", ExpectedStringID: "title"},
			ExpectedText:  "Settings",
			ExtractedText: "Settings",
			Result:        model.MatchPass,
			Confidence:    &conf,
		},
	}
	summary := validation.Summarize(results)

	t.Run("configured formats", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Language = "de-DE"
		cfg.OutputDir = t.TempDir()
		cfg.Report.Formats = []string{report.FormatJSON, report.FormatCSV}

		require.NoError(t, writeReports(&cfg, "", results, summary))

		for _, format := range cfg.Report.Formats {
			_, err := os.Stat(cfg.ResultsPath(format))
			assert.NoError(t, err, "expected %s report", format)
		}
	})

	t.Run("output override", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.OutputDir = t.TempDir()
		cfg.Report.Formats = []string{report.FormatJSON}

		path := filepath.Join(t.TempDir(), "run.json")
		require.NoError(t, writeReports(&cfg, path, results, summary))

		file, err := os.Open(path)
		require.NoError(t, err)
		defer func() { _ = file.Close() }()

		readBack, _, err := report.ReadResults(file)
		require.NoError(t, err)
		require.Len(t, readBack, 1)
		assert.Equal(t, "S1", readBack[0].Step.StepID)
	})
}
