package support

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cucumber/godog"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/report"
	"github.com/nitya2202/ocr-string-validation-tool/internal/testutil"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

// aSampleDatasetForLanguage writes a complete dataset (protocol, expected
// strings, coordinates, rendered screenshots) into the scenario's data dir.
func (tc *TestContext) aSampleDatasetForLanguage(language string) error {
	fx := testutil.SampleFixture(language)
	if err := testutil.WriteDataset(tc.DataDir, fx); err != nil {
		return fmt.Errorf("writing sample dataset: %w", err)
	}
	if err := os.MkdirAll(tc.OutputDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tc.Language = language
	return nil
}

// theScreenshotsDirectoryIsEmpty removes every screenshot of the dataset
// while keeping the directory in place.
func (tc *TestContext) theScreenshotsDirectoryIsEmpty() error {
	dir := filepath.Join(tc.DataDir, "screenshots")
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing screenshots: %w", err)
	}
	return os.MkdirAll(dir, 0o750)
}

// theScreenshotIsRemoved deletes a single screenshot file.
func (tc *TestContext) theScreenshotIsRemoved(name string) error {
	return os.Remove(filepath.Join(tc.DataDir, "screenshots", name))
}

// theTestProtocolFileIsRemoved deletes the protocol table.
func (tc *TestContext) theTestProtocolFileIsRemoved() error {
	return os.Remove(filepath.Join(tc.DataDir, "test_protocol.csv"))
}

// theExpectedStringIsChangedTo rewrites one entry of the active language's
// expected strings table.
func (tc *TestContext) theExpectedStringIsChangedTo(stringID, text string) error {
	if tc.Language == "" {
		return errors.New("no dataset language set; write a sample dataset first")
	}
	path := filepath.Join(tc.DataDir, "expected_strings", tc.Language+".json")

	data, err := os.ReadFile(path) //nolint:gosec // G304: test dataset path under temp dir
	if err != nil {
		return fmt.Errorf("reading expected strings: %w", err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parsing expected strings: %w", err)
	}
	if _, ok := table[stringID]; !ok {
		return fmt.Errorf("string id %q not in expected strings table", stringID)
	}
	table[stringID] = text

	out, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// aSavedValidationRunForLanguage writes a results JSON file as a finished
// run would, so report scenarios do not need to execute OCR.
func (tc *TestContext) aSavedValidationRunForLanguage(language string) error {
	if err := os.MkdirAll(tc.OutputDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	results := []model.ValidationResult{
		{
			Step:          model.TestStep{StepID: "S01", ScreenID: "MainMenu", ExpectedStringID: "menu.title"},
			ExpectedText:  "Hauptmenü",
			ExtractedText: "Hauptmenü",
			Result:        model.MatchPass,
			Confidence:    floatPtr(0.96),
			DurationMS:    floatPtr(142.5),
		},
		{
			Step:          model.TestStep{StepID: "S02", ScreenID: "MainMenu", ExpectedStringID: "menu.settings"},
			ExpectedText:  "Einstellungen",
			ExtractedText: "Einstelungen",
			Result:        model.MatchFail,
			Confidence:    floatPtr(0.71),
			DurationMS:    floatPtr(138.0),
		},
	}
	summary := validation.Summarize(results)
	meta := report.Metadata{GeneratedAt: time.Now().UTC(), Language: language}

	path := filepath.Join(tc.OutputDir, "results-"+language+".json")
	if err := report.WriteFile(path, report.FormatJSON, meta, results, summary); err != nil {
		return fmt.Errorf("writing saved run: %w", err)
	}
	tc.Language = language
	return nil
}

func floatPtr(v float64) *float64 { return &v }

// RegisterDatasetSteps registers dataset setup and mutation steps.
func (tc *TestContext) RegisterDatasetSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a sample dataset for language "([^"]*)"$`, tc.aSampleDatasetForLanguage)
	sc.Step(`^the screenshots directory is empty$`, tc.theScreenshotsDirectoryIsEmpty)
	sc.Step(`^the screenshot "([^"]*)" is removed$`, tc.theScreenshotIsRemoved)
	sc.Step(`^the test protocol file is removed$`, tc.theTestProtocolFileIsRemoved)
	sc.Step(`^the expected string "([^"]*)" is changed to "([^"]*)"$`, tc.theExpectedStringIsChangedTo)
	sc.Step(`^a saved validation run for language "([^"]*)"$`, tc.aSavedValidationRunForLanguage)
}
