// Package config defines the application configuration schema and a
// viper-backed loader for files, environment variables, and defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nitya2202/ocr-string-validation-tool/internal/extractor"
	"github.com/nitya2202/ocr-string-validation-tool/internal/matcher"
	"github.com/nitya2202/ocr-string-validation-tool/internal/report"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

// Config represents the complete configuration for the validation tool.
// It covers all commands (validate, report, coords, screenshots, serve) and
// loads from configuration files, environment variables, and command-line
// flags.
type Config struct {
	// Global settings
	DataDir   string `mapstructure:"data_dir"   yaml:"data_dir"   json:"data_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Language  string `mapstructure:"language"   yaml:"language"   json:"language"`
	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"  json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	Verbose   bool   `mapstructure:"verbose"    yaml:"verbose"    json:"verbose"`

	// Validation engine settings
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation" json:"validation"`

	// Text extraction settings
	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor" json:"extractor"`

	// Report output settings
	Report ReportConfig `mapstructure:"report" yaml:"report" json:"report"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// ValidationConfig contains engine and comparison settings.
type ValidationConfig struct {
	Strategy       string  `mapstructure:"strategy"        yaml:"strategy"        json:"strategy"`
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold" json:"fuzzy_threshold"`
	Preprocess     bool    `mapstructure:"preprocess"      yaml:"preprocess"      json:"preprocess"`
	Workers        int     `mapstructure:"workers"         yaml:"workers"         json:"workers"`
}

// ExtractorConfig contains OCR backend settings.
type ExtractorConfig struct {
	Backend   string     `mapstructure:"backend"   yaml:"backend"   json:"backend"`
	PSM       int        `mapstructure:"psm"       yaml:"psm"       json:"psm"`
	Whitelist string     `mapstructure:"whitelist" yaml:"whitelist" json:"whitelist"`
	DPI       int        `mapstructure:"dpi"       yaml:"dpi"       json:"dpi"`
	ONNX      ONNXConfig `mapstructure:"onnx"      yaml:"onnx"      json:"onnx"`
}

// ONNXConfig contains settings for the ONNX recognition backend.
type ONNXConfig struct {
	ModelPath   string `mapstructure:"model_path"   yaml:"model_path"   json:"model_path"`
	CharsetPath string `mapstructure:"charset_path" yaml:"charset_path" json:"charset_path"`
	ImageHeight int    `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	NumThreads  int    `mapstructure:"num_threads"  yaml:"num_threads"  json:"num_threads"`
	LibraryPath string `mapstructure:"library_path" yaml:"library_path" json:"library_path"`
}

// ReportConfig contains report output settings.
type ReportConfig struct {
	Formats []string `mapstructure:"formats" yaml:"formats" json:"formats"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host             string `mapstructure:"host"              yaml:"host"              json:"host"`
	Port             int    `mapstructure:"port"              yaml:"port"              json:"port"`
	CORSOrigin       string `mapstructure:"cors_origin"       yaml:"cors_origin"       json:"cors_origin"`
	TimeoutSec       int    `mapstructure:"timeout_sec"       yaml:"timeout_sec"       json:"timeout_sec"`
	ShutdownTimeout  int    `mapstructure:"shutdown_timeout"  yaml:"shutdown_timeout"  json:"shutdown_timeout"`
	WebSocketEnabled bool   `mapstructure:"websocket_enabled" yaml:"websocket_enabled" json:"websocket_enabled"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:   "data",
		OutputDir: "output",
		Language:  "en-US",
		LogLevel:  "info",
		LogFormat: "text",
		Verbose:   false,
		Validation: ValidationConfig{
			FuzzyThreshold: validation.DefaultFuzzyThreshold,
			Preprocess:     true,
			Workers:        1,
		},
		Extractor: ExtractorConfig{
			Backend: extractor.BackendTesseract,
			PSM:     extractor.DefaultPSM,
			DPI:     extractor.DefaultDPI,
			ONNX: ONNXConfig{
				ImageHeight: 0,
				NumThreads:  0,
			},
		},
		Report: ReportConfig{
			Formats: []string{report.FormatCSV},
		},
		Server: ServerConfig{
			Host:             "localhost",
			Port:             8080,
			CORSOrigin:       "*",
			TimeoutSec:       300,
			ShutdownTimeout:  10,
			WebSocketEnabled: true,
		},
	}
}

// TestProtocolPath returns the path of the test protocol dataset.
func (c *Config) TestProtocolPath() string {
	return filepath.Join(c.DataDir, "test_protocol.csv")
}

// ExpectedStringsPath returns the path of the expected-strings dataset for
// the configured language.
func (c *Config) ExpectedStringsPath() string {
	return filepath.Join(c.DataDir, "expected_strings", c.Language+".json")
}

// ScreenshotsDir returns the directory containing screen captures.
func (c *Config) ScreenshotsDir() string {
	return filepath.Join(c.DataDir, "screenshots")
}

// CoordinatesPath returns the path of the string-coordinates dataset.
func (c *Config) CoordinatesPath() string {
	return filepath.Join(c.DataDir, "string_coordinates.csv")
}

// ResultsPath returns the report output path for the given format.
func (c *Config) ResultsPath(format string) string {
	name := fmt.Sprintf("results-%s.%s", c.Language, report.Extension(format))
	return filepath.Join(c.OutputDir, name)
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)",
			c.LogFormat, strings.Join(validLogFormats, ", "))
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.Language == "" {
		return fmt.Errorf("language must not be empty")
	}

	if err := validateThreshold(c.Validation.FuzzyThreshold, "validation.fuzzy_threshold"); err != nil {
		return err
	}
	if c.Validation.Workers <= 0 {
		return fmt.Errorf("invalid validation workers: %d (must be positive)", c.Validation.Workers)
	}
	if c.Validation.Strategy != "" {
		if _, err := matcher.ForName(c.Validation.Strategy, c.Validation.FuzzyThreshold); err != nil {
			return fmt.Errorf("invalid comparison strategy: %w", err)
		}
	}

	validBackends := []string{extractor.BackendTesseract, extractor.BackendONNX}
	if c.Extractor.Backend != "" && !contains(validBackends, c.Extractor.Backend) {
		return fmt.Errorf("invalid extractor backend: %s (must be one of: %s)",
			c.Extractor.Backend, strings.Join(validBackends, ", "))
	}
	if c.Extractor.PSM < 0 || c.Extractor.PSM > 13 {
		return fmt.Errorf("invalid page segmentation mode: %d (must be between 0 and 13)", c.Extractor.PSM)
	}
	if c.Extractor.DPI < 0 {
		return fmt.Errorf("invalid dpi: %d (must not be negative)", c.Extractor.DPI)
	}
	if c.Extractor.Backend == extractor.BackendONNX {
		if c.Extractor.ONNX.ModelPath == "" {
			return fmt.Errorf("extractor.onnx.model_path is required for the onnx backend")
		}
		if c.Extractor.ONNX.CharsetPath == "" {
			return fmt.Errorf("extractor.onnx.charset_path is required for the onnx backend")
		}
	}

	for _, format := range c.Report.Formats {
		if !contains(report.Formats(), strings.ToLower(format)) {
			return fmt.Errorf("invalid report format: %s (must be one of: %s)",
				format, strings.Join(report.Formats(), ", "))
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must be positive)", c.Server.ShutdownTimeout)
	}

	return nil
}

// ToExtractorConfig converts the extractor section to the extractor
// package's configuration format.
func (c *Config) ToExtractorConfig() extractor.Config {
	return extractor.Config{
		Backend: c.Extractor.Backend,
		ONNX: extractor.ONNXOptions{
			ModelPath:   c.Extractor.ONNX.ModelPath,
			CharsetPath: c.Extractor.ONNX.CharsetPath,
			ImageHeight: c.Extractor.ONNX.ImageHeight,
			NumThreads:  c.Extractor.ONNX.NumThreads,
			LibraryPath: c.Extractor.ONNX.LibraryPath,
		},
	}
}

// ToRequest converts the extractor section to a per-step extraction request.
func (c *Config) ToRequest() extractor.Request {
	return extractor.Request{
		Language:   c.Language,
		PSM:        c.Extractor.PSM,
		Whitelist:  c.Extractor.Whitelist,
		DPI:        c.Extractor.DPI,
		Preprocess: c.Validation.Preprocess,
	}
}

// Matcher builds the comparison strategy from the validation section. An
// empty strategy selects the default chain.
func (c *Config) Matcher() (matcher.Matcher, error) {
	if c.Validation.Strategy == "" {
		return matcher.Default(c.Validation.FuzzyThreshold)
	}
	return matcher.ForName(c.Validation.Strategy, c.Validation.FuzzyThreshold)
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validateThreshold validates that a value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
