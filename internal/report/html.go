package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// HTMLReporter writes a standalone HTML page with summary cards and a
// detailed result table.
type HTMLReporter struct {
	writer io.Writer
	meta   Metadata
}

// NewHTML creates an HTML reporter writing to w.
func NewHTML(w io.Writer, meta Metadata) *HTMLReporter {
	return &HTMLReporter{writer: w, meta: meta}
}

func (r *HTMLReporter) Format() string { return FormatHTML }

type htmlRow struct {
	StepID          string
	ScreenID        string
	Expected        string
	Extracted       string
	Result          string
	ResultClass     string
	Confidence      string
	ConfidenceClass string
	Duration        string
	Error           string
}

type htmlData struct {
	GeneratedAt   string
	Language      string
	Summary       model.ValidationSummary
	PassRate      string
	AvgConfidence string
	Rows          []htmlRow
}

func (r *HTMLReporter) Write(results []model.ValidationResult, summary model.ValidationSummary) error {
	generatedAt := r.meta.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	data := htmlData{
		GeneratedAt:   generatedAt.Format("2006-01-02 15:04:05"),
		Language:      r.meta.Language,
		Summary:       summary,
		PassRate:      fmt.Sprintf("%.1f", summary.PassRate),
		AvgConfidence: fmt.Sprintf("%.3f", summary.AvgConfidence),
		Rows:          make([]htmlRow, 0, len(results)),
	}
	for _, result := range results {
		row := htmlRow{
			StepID:          result.Step.StepID,
			ScreenID:        result.Step.ScreenID,
			Expected:        result.ExpectedText,
			Extracted:       result.ExtractedText,
			Result:          string(result.Result),
			ResultClass:     resultClass(result.Result),
			Confidence:      "N/A",
			ConfidenceClass: confidenceClass(result.Confidence),
			Duration:        "N/A",
			Error:           result.ErrorMessage,
		}
		if result.Confidence != nil {
			row.Confidence = fmt.Sprintf("%.3f", *result.Confidence)
		}
		if result.DurationMS != nil {
			row.Duration = fmt.Sprintf("%.1f", *result.DurationMS)
		}
		data.Rows = append(data.Rows, row)
	}

	return htmlTemplate.Execute(r.writer, data)
}

func resultClass(result model.MatchResult) string {
	switch result {
	case model.MatchPass:
		return "pass"
	case model.MatchFail:
		return "fail"
	case model.MatchError:
		return "error"
	default:
		return "missing"
	}
}

func confidenceClass(confidence *float64) string {
	switch {
	case confidence == nil:
		return ""
	case *confidence >= 0.8:
		return "high-confidence"
	case *confidence >= 0.5:
		return "medium-confidence"
	default:
		return "low-confidence"
	}
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>OCR String Validation Report</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
    .container {
      max-width: 1200px; margin: 0 auto; background-color: white;
      padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);
    }
    h1, h2 { color: #333; }
    .meta { color: #666; }
    .summary {
      display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
      gap: 15px; margin: 20px 0;
    }
    .stat-card {
      background: #f8f9fa; padding: 15px; border-radius: 5px;
      border-left: 4px solid #007bff;
    }
    .stat-value { font-size: 24px; font-weight: bold; color: #007bff; }
    .stat-label { color: #666; font-size: 14px; }
    table { width: 100%; border-collapse: collapse; margin: 20px 0; }
    th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ddd; }
    th { background-color: #f8f9fa; font-weight: bold; }
    .pass { background-color: #d4edda; color: #155724; }
    .fail { background-color: #f8d7da; color: #721c24; }
    .error { background-color: #fff3cd; color: #856404; }
    .missing { background-color: #e2e3e5; color: #383d41; }
    .confidence { font-weight: bold; }
    .high-confidence { color: #28a745; }
    .medium-confidence { color: #ffc107; }
    .low-confidence { color: #dc3545; }
  </style>
</head>
<body>
  <div class="container">
    <h1>OCR String Validation Report</h1>
    <p class="meta"><strong>Generated:</strong> {{.GeneratedAt}}{{if .Language}} &middot; <strong>Language:</strong> {{.Language}}{{end}}</p>

    <h2>Summary</h2>
    <div class="summary">
      <div class="stat-card"><div class="stat-value">{{.Summary.Total}}</div><div class="stat-label">Total Steps</div></div>
      <div class="stat-card"><div class="stat-value">{{.Summary.Passed}}</div><div class="stat-label">Passed</div></div>
      <div class="stat-card"><div class="stat-value">{{.Summary.Failed}}</div><div class="stat-label">Failed</div></div>
      <div class="stat-card"><div class="stat-value">{{.Summary.Errors}}</div><div class="stat-label">Errors</div></div>
      <div class="stat-card"><div class="stat-value">{{.PassRate}}%</div><div class="stat-label">Pass Rate</div></div>
      <div class="stat-card"><div class="stat-value">{{.AvgConfidence}}</div><div class="stat-label">Avg Confidence</div></div>
    </div>

    <h2>Detailed Results</h2>
    <table>
      <thead>
        <tr>
          <th>Step ID</th><th>Screen ID</th><th>Expected Text</th><th>OCR Output</th>
          <th>Result</th><th>Confidence</th><th>Time (ms)</th><th>Error</th>
        </tr>
      </thead>
      <tbody>
      {{- range .Rows}}
        <tr>
          <td>{{.StepID}}</td>
          <td>{{.ScreenID}}</td>
          <td>{{.Expected}}</td>
          <td>{{.Extracted}}</td>
          <td class="{{.ResultClass}}">{{.Result}}</td>
          <td class="confidence {{.ConfidenceClass}}">{{.Confidence}}</td>
          <td>{{.Duration}}</td>
          <td>{{.Error}}</td>
        </tr>
      {{- end}}
      </tbody>
    </table>
  </div>
</body>
</html>
`))
