package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func sampleResults() []model.ValidationResult {
	return []model.ValidationResult{
		{
			Step:          model.TestStep{StepID: "S1", ScreenID: "MainMenu", ExpectedStringID: "title"},
			ExpectedText:  "Settings",
			ExtractedText: "Settings",
			Result:        model.MatchPass,
			Confidence:    floatPtr(0.9321),
			DurationMS:    floatPtr(152.83),
		},
		{
			Step:         model.TestStep{StepID: "S2", ScreenID: "MainMenu", ExpectedStringID: "subtitle"},
			ExpectedText: "Audio, Video",
			Result:       model.MatchMissingImage,
			ErrorMessage: "Image not found: screenshots/MainMenu.png",
		},
	}
}

func sampleSummary() model.ValidationSummary {
	return model.ValidationSummary{
		Total:         2,
		Passed:        1,
		MissingImages: 1,
		PassRate:      50.0,
		AvgConfidence: 0.9321,
		AvgDurationMS: 152.83,
	}
}

func TestCSVReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSV(&buf).Write(sampleResults(), sampleSummary()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Step ID", "Screen ID", "Expected String", "OCR Output",
		"Match Result", "Confidence Score", "Processing Time (ms)", "Error Message",
	}, records[0])
	assert.Equal(t, []string{"S1", "MainMenu", "Settings", "Settings", "PASS", "0.932", "152.8", ""}, records[1])
	assert.Equal(t, []string{
		"S2", "MainMenu", "Audio, Video", "", "MISSING_IMAGE", "", "",
		"Image not found: screenshots/MainMenu.png",
	}, records[2])
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	meta := Metadata{
		GeneratedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Language:    "de-DE",
	}
	require.NoError(t, NewJSON(&buf, meta).Write(sampleResults(), sampleSummary()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2025-03-14T09:30:00Z", doc["generated_at"])
	assert.Equal(t, "de-DE", doc["language"])

	summary, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, summary["total_steps"])
	assert.EqualValues(t, 50.0, summary["pass_rate"])

	results, ok := doc["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PASS", first["match_result"])
}

func TestJSONReporterEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSON(&buf, Metadata{}).Write(nil, model.ValidationSummary{}))
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	meta := Metadata{GeneratedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), Language: "ja-JP"}
	require.NoError(t, NewJSON(&buf, meta).Write(sampleResults(), sampleSummary()))

	results, parsed, err := ReadResults(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleResults(), results)
	assert.Equal(t, "ja-JP", parsed.Language)
	assert.True(t, parsed.GeneratedAt.Equal(meta.GeneratedAt))
}

func TestHTMLReporter(t *testing.T) {
	var buf bytes.Buffer
	meta := Metadata{GeneratedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), Language: "fr-FR"}
	require.NoError(t, NewHTML(&buf, meta).Write(sampleResults(), sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "<title>OCR String Validation Report</title>")
	assert.Contains(t, out, "2025-03-14 09:30:00")
	assert.Contains(t, out, "fr-FR")
	assert.Contains(t, out, `<div class="stat-value">50.0%</div>`)
	assert.Contains(t, out, `<div class="stat-value">0.932</div>`)
	assert.Contains(t, out, `<td class="pass">PASS</td>`)
	assert.Contains(t, out, `<td class="missing">MISSING_IMAGE</td>`)
	assert.Contains(t, out, `high-confidence`)
}

func TestHTMLReporterEscapesText(t *testing.T) {
	results := []model.ValidationResult{{
		Step:          model.TestStep{StepID: "S1", ScreenID: "A", ExpectedStringID: "x"},
		ExpectedText:  `<script>alert("x")</script>`,
		ExtractedText: "a & b",
		Result:        model.MatchFail,
	}}

	var buf bytes.Buffer
	require.NoError(t, NewHTML(&buf, Metadata{}).Write(results, model.ValidationSummary{Total: 1, Failed: 1}))

	out := buf.String()
	assert.NotContains(t, out, `<script>alert`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "a &amp; b")
}

func TestNewFactory(t *testing.T) {
	var buf bytes.Buffer

	for _, format := range Formats() {
		reporter, err := New(format, &buf, Metadata{})
		require.NoError(t, err)
		assert.Equal(t, format, reporter.Format())
	}

	reporter, err := New(" CSV ", &buf, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, reporter.Format())

	_, err = New("xml", &buf, Metadata{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format: xml")
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "results-en.csv")

	err := WriteFile(path, FormatCSV, Metadata{}, sampleResults(), sampleSummary())
	require.NoError(t, err)

	data, err := os.ReadFile(path) //nolint:gosec // G304: test-controlled path
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Step ID,"))
}

func TestWriteFileRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	err := WriteFile(path, "bin", Metadata{}, nil, model.ValidationSummary{})
	require.Error(t, err)
}
