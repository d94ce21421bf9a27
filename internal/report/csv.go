package report

import (
	"encoding/csv"
	"io"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

var csvHeader = []string{
	"Step ID", "Screen ID", "Expected String", "OCR Output",
	"Match Result", "Confidence Score", "Processing Time (ms)", "Error Message",
}

// CSVReporter writes one row per validation result.
type CSVReporter struct {
	writer io.Writer
}

// NewCSV creates a CSV reporter writing to w.
func NewCSV(w io.Writer) *CSVReporter {
	return &CSVReporter{writer: w}
}

func (r *CSVReporter) Format() string { return FormatCSV }

func (r *CSVReporter) Write(results []model.ValidationResult, summary model.ValidationSummary) error {
	w := csv.NewWriter(r.writer)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		row := []string{
			result.Step.StepID,
			result.Step.ScreenID,
			result.ExpectedText,
			result.ExtractedText,
			string(result.Result),
			formatConfidence(result.Confidence),
			formatDuration(result.DurationMS),
			result.ErrorMessage,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
