// Package report renders validation results as CSV, JSON, or HTML.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// Supported report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Metadata describes the run a report was generated from.
type Metadata struct {
	GeneratedAt time.Time
	Language    string
}

// Reporter writes validation results in one output format.
type Reporter interface {
	// Write renders the results and summary to the reporter's destination.
	Write(results []model.ValidationResult, summary model.ValidationSummary) error

	// Format returns the format identifier ("csv", "json", "html").
	Format() string
}

// Formats lists the supported report formats.
func Formats() []string {
	return []string{FormatCSV, FormatJSON, FormatHTML}
}

// New creates a reporter for the given format writing to w.
func New(format string, w io.Writer, meta Metadata) (Reporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return NewCSV(w), nil
	case FormatJSON:
		return NewJSON(w, meta), nil
	case FormatHTML:
		return NewHTML(w, meta), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s (available: %s)",
			format, strings.Join(Formats(), ", "))
	}
}

// Extension returns the file extension for a format, without the dot.
func Extension(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// WriteFile renders a report of the given format to path, creating parent
// directories as needed.
func WriteFile(path, format string, meta Metadata, results []model.ValidationResult, summary model.ValidationSummary) error {
	if path == "" {
		return fmt.Errorf("report path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // G304: report path comes from validated config/flags
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}

	reporter, err := New(format, f, meta)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := reporter.Write(results, summary); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s report: %w", reporter.Format(), err)
	}
	return f.Close()
}

func formatConfidence(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.3f", *v)
}

func formatDuration(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}
