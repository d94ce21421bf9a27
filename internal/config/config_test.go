package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitya2202/ocr-string-validation-tool/internal/extractor"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "en-US", cfg.Language)
	assert.Equal(t, extractor.BackendTesseract, cfg.Extractor.Backend)
	assert.True(t, cfg.Validation.Preprocess)
	assert.Equal(t, []string{"csv"}, cfg.Report.Formats)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data directory",
		},
		{
			name:    "empty language",
			mutate:  func(c *Config) { c.Language = "" },
			wantErr: "language",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Validation.FuzzyThreshold = 1.5 },
			wantErr: "fuzzy_threshold",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Validation.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "unknown strategy",
			mutate:  func(c *Config) { c.Validation.Strategy = "phonetic" },
			wantErr: "invalid comparison strategy",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Extractor.Backend = "easyocr" },
			wantErr: "invalid extractor backend",
		},
		{
			name:    "psm out of range",
			mutate:  func(c *Config) { c.Extractor.PSM = 14 },
			wantErr: "page segmentation mode",
		},
		{
			name: "onnx backend without model",
			mutate: func(c *Config) {
				c.Extractor.Backend = extractor.BackendONNX
			},
			wantErr: "model_path",
		},
		{
			name:    "bad report format",
			mutate:  func(c *Config) { c.Report.Formats = []string{"pdf"} },
			wantErr: "invalid report format",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server port",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Server.TimeoutSec = 0 },
			wantErr: "server timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAcceptsKnownStrategies(t *testing.T) {
	for _, strategy := range []string{"", "exact", "normalized", "fuzzy", "contains", "regex"} {
		cfg := DefaultConfig()
		cfg.Validation.Strategy = strategy
		assert.NoError(t, cfg.Validate(), "strategy %q", strategy)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join("testdata", "run1")
	cfg.OutputDir = "out"
	cfg.Language = "de-DE"

	assert.Equal(t, filepath.Join("testdata", "run1", "test_protocol.csv"), cfg.TestProtocolPath())
	assert.Equal(t, filepath.Join("testdata", "run1", "expected_strings", "de-DE.json"), cfg.ExpectedStringsPath())
	assert.Equal(t, filepath.Join("testdata", "run1", "screenshots"), cfg.ScreenshotsDir())
	assert.Equal(t, filepath.Join("testdata", "run1", "string_coordinates.csv"), cfg.CoordinatesPath())
	assert.Equal(t, filepath.Join("out", "results-de-DE.html"), cfg.ResultsPath("html"))
}

func TestToRequestCarriesExtractionSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language = "ja-JP"
	cfg.Extractor.PSM = 7
	cfg.Extractor.Whitelist = "0123456789"
	cfg.Extractor.DPI = 150
	cfg.Validation.Preprocess = false

	req := cfg.ToRequest()
	assert.Equal(t, "ja-JP", req.Language)
	assert.Equal(t, 7, req.PSM)
	assert.Equal(t, "0123456789", req.Whitelist)
	assert.Equal(t, 150, req.DPI)
	assert.False(t, req.Preprocess)
}

func TestMatcherSelection(t *testing.T) {
	cfg := DefaultConfig()

	m, err := cfg.Matcher()
	require.NoError(t, err)
	assert.Equal(t, "composite", m.Name())

	cfg.Validation.Strategy = "exact"
	m, err = cfg.Matcher()
	require.NoError(t, err)
	assert.Equal(t, "exact", m.Name())

	cfg.Validation.Strategy = "nope"
	_, err = cfg.Matcher()
	require.Error(t, err)
}

func TestToExtractorConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extractor.Backend = extractor.BackendONNX
	cfg.Extractor.ONNX.ModelPath = "models/rec.onnx"
	cfg.Extractor.ONNX.CharsetPath = "models/charset.txt"
	cfg.Extractor.ONNX.NumThreads = 2

	out := cfg.ToExtractorConfig()
	assert.Equal(t, extractor.BackendONNX, out.Backend)
	assert.Equal(t, "models/rec.onnx", out.ONNX.ModelPath)
	assert.Equal(t, "models/charset.txt", out.ONNX.CharsetPath)
	assert.Equal(t, 2, out.ONNX.NumThreads)
}
