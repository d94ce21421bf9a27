package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nitya2202/ocr-string-validation-tool/internal/config"
	"github.com/nitya2202/ocr-string-validation-tool/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ocrval",
	Short: "OCR validation for localized UI screenshots",
	Long: `Checks that translated UI strings actually appear on captured screens.

ocrval reads a test protocol, the expected strings for the active language
and the annotated string coordinates, crops each annotated region out of
the matching screenshot, runs OCR on the crop and compares the recognized
text against the expected string. Every step is scored, classified and
written to JSON, CSV or HTML reports.

Examples:
  ocrval validate --language de-DE
  ocrval validate --step S12 --format json
  ocrval coords preview
  ocrval serve --port 8080`,
	Version: versionString(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func versionString() string {
	b := version.Info()
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.GitCommit, b.BuildDate)
}

func init() {
	// Initialize configuration loader
	cobra.OnInitialize(initConfig)

	// Global flags that apply to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is to search the standard locations, see 'ocrval config paths')")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory containing the test protocol, expected strings, coordinates and screenshots")
	rootCmd.PersistentFlags().String("output-dir", "", "directory reports are written to")
	rootCmd.PersistentFlags().StringP("language", "l", "", "language tag to validate (e.g. de-DE)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()

		// Determine log level from config
		var logLevel slog.Level

		// Check verbose flag first for backward compatibility
		if cfg.Verbose {
			logLevel = slog.LevelDebug
		} else {
			// Parse log-level from config
			switch cfg.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "info":
				logLevel = slog.LevelInfo
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		// Set up structured logging. Logs go to stderr so stdout stays
		// clean for report output.
		opts := &slog.HandlerOptions{Level: logLevel}
		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		// Use config file from the flag
		globalConfig, err = configLoader.LoadFile(cfgFile)
	} else {
		// Search for config in default locations
		globalConfig, err = configLoader.Load()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// applyPersistentFlags copies changed global flags onto a configuration.
// The loader owns its viper instance, so flag values are applied explicitly
// instead of through viper bindings.
func applyPersistentFlags(cfg *config.Config) {
	flags := rootCmd.PersistentFlags()
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("language") {
		cfg.Language, _ = flags.GetString("language")
	}
}

// GetConfig returns a copy of the global configuration with persistent flag
// overrides applied. Commands layer their own flag overrides onto the copy.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	cfg := *globalConfig
	applyPersistentFlags(&cfg)
	return &cfg
}

// GetConfigLoader returns the global configuration loader, loading the
// configuration first if no command has triggered that yet.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		initConfig()
	}
	return configLoader
}
