package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name of configuration files, without extension.
	ConfigFileName = "ocrval"

	// EnvPrefix is the prefix of configuration environment variables.
	EnvPrefix = "OCRVAL"
)

// Loader resolves configuration from a YAML file, OCRVAL_* environment
// variables and built-in defaults, in that order of precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader backed by its own viper instance, so parallel
// loads and tests do not share state through the global one.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load resolves configuration from the standard search paths. No config
// file anywhere is fine; environment variables and defaults still apply.
func (l *Loader) Load() (*Config, error) {
	return l.load("")
}

// LoadFile resolves configuration from one explicit file, which must exist.
func (l *Loader) LoadFile(path string) (*Config, error) {
	return l.load(path)
}

func (l *Loader) load(file string) (*Config, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("no config file at %s: %w", file, err)
		}
		l.v.SetConfigFile(file)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		for _, dir := range SearchPaths() {
			l.v.AddConfigPath(dir)
		}
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// FileUsed reports which config file the last Load read, or "" when the
// configuration came from defaults and environment alone.
func (l *Loader) FileUsed() string {
	return l.v.ConfigFileUsed()
}

// ResolvedSettings returns the merged configuration as viper sees it,
// keyed by the config file key names.
func (l *Loader) ResolvedSettings() map[string]any {
	return l.v.AllSettings()
}

// SearchPaths lists the directories Load checks for an ocrval.yaml,
// in search order.
func SearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(xdg, "ocrval"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ocrval"))
	}

	return append(paths, "/etc/ocrval")
}

// WriteDefaultFile writes a config file populated with the default values,
// as a starting point for customization.
func WriteDefaultFile(path string) error {
	l := NewLoader()
	l.setDefaults()
	return l.v.WriteConfigAs(path)
}

// setDefaults registers every configuration key with its default, so that
// AllSettings and generated files show the full key set.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("data_dir", defaults.DataDir)
	l.v.SetDefault("output_dir", defaults.OutputDir)
	l.v.SetDefault("language", defaults.Language)
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("log_format", defaults.LogFormat)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("validation.strategy", defaults.Validation.Strategy)
	l.v.SetDefault("validation.fuzzy_threshold", defaults.Validation.FuzzyThreshold)
	l.v.SetDefault("validation.preprocess", defaults.Validation.Preprocess)
	l.v.SetDefault("validation.workers", defaults.Validation.Workers)

	l.v.SetDefault("extractor.backend", defaults.Extractor.Backend)
	l.v.SetDefault("extractor.psm", defaults.Extractor.PSM)
	l.v.SetDefault("extractor.whitelist", defaults.Extractor.Whitelist)
	l.v.SetDefault("extractor.dpi", defaults.Extractor.DPI)
	l.v.SetDefault("extractor.onnx.model_path", defaults.Extractor.ONNX.ModelPath)
	l.v.SetDefault("extractor.onnx.charset_path", defaults.Extractor.ONNX.CharsetPath)
	l.v.SetDefault("extractor.onnx.image_height", defaults.Extractor.ONNX.ImageHeight)
	l.v.SetDefault("extractor.onnx.num_threads", defaults.Extractor.ONNX.NumThreads)
	l.v.SetDefault("extractor.onnx.library_path", defaults.Extractor.ONNX.LibraryPath)

	l.v.SetDefault("report.formats", defaults.Report.Formats)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	l.v.SetDefault("server.websocket_enabled", defaults.Server.WebSocketEnabled)
}
