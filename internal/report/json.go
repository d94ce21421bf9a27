package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// JSONReporter writes an indented JSON document with run metadata, the
// summary, and every result.
type JSONReporter struct {
	writer io.Writer
	meta   Metadata
}

// NewJSON creates a JSON reporter writing to w.
func NewJSON(w io.Writer, meta Metadata) *JSONReporter {
	return &JSONReporter{writer: w, meta: meta}
}

func (r *JSONReporter) Format() string { return FormatJSON }

type jsonReport struct {
	GeneratedAt string                   `json:"generated_at"`
	Language    string                   `json:"language,omitempty"`
	Summary     model.ValidationSummary  `json:"summary"`
	Results     []model.ValidationResult `json:"results"`
}

func (r *JSONReporter) Write(results []model.ValidationResult, summary model.ValidationSummary) error {
	generatedAt := r.meta.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	doc := jsonReport{
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Language:    r.meta.Language,
		Summary:     summary,
		Results:     results,
	}
	if doc.Results == nil {
		doc.Results = []model.ValidationResult{}
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// ReadResults parses a JSON report previously produced by a JSONReporter
// and returns its result list. Used to re-render reports offline.
func ReadResults(r io.Reader) ([]model.ValidationResult, Metadata, error) {
	var doc jsonReport
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, Metadata{}, err
	}
	meta := Metadata{Language: doc.Language}
	if ts, err := time.Parse(time.RFC3339, doc.GeneratedAt); err == nil {
		meta.GeneratedAt = ts
	}
	return doc.Results, meta, nil
}
