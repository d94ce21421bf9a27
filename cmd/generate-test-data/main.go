package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nitya2202/ocr-string-validation-tool/internal/testutil"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		dataDir   = flag.String("data", "data", "Root directory for the generated datasets")
		languages = flag.String("languages", "", "Comma-separated languages to generate (default: all sample languages)")
		verbose   = flag.Bool("v", false, "Verbose output")
		help      = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate sample validation datasets with synthetic screenshots.\n\n")
		fmt.Fprintf(os.Stderr, "Each language is written to <data>/<language>/ with the protocol,\n")
		fmt.Fprintf(os.Stderr, "expected strings, coordinate annotations, and rendered screenshots.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Generate all sample languages\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -languages de-DE         # Generate only German\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -data /tmp/demo          # Generate into /tmp/demo\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	selected := testutil.SampleLanguages()
	if *languages != "" {
		selected = splitLanguages(*languages)
	}
	if len(selected) == 0 {
		slog.Error("No languages selected")
		os.Exit(1)
	}

	slog.Info("Starting sample dataset generation...", "data", *dataDir, "languages", selected)

	for _, language := range selected {
		fx := testutil.SampleFixture(language)
		target := filepath.Join(*dataDir, language)

		if *verbose {
			slog.Info("Writing dataset",
				"language", language,
				"steps", len(fx.Steps),
				"screens", len(fx.Screens),
				"target", target)
		}

		if err := testutil.WriteDataset(target, fx); err != nil {
			slog.Error("Failed to write dataset", "language", language, "error", err)
			os.Exit(1)
		}

		slog.Info("✓ Generated dataset", "language", language, "path", target)
	}

	slog.Info("Sample dataset generation completed successfully!")
	fmt.Printf("\nValidate a generated dataset with:\n")
	fmt.Printf("  ocrval validate --data-dir %s --language %s\n",
		filepath.Join(*dataDir, selected[0]), selected[0])
}

func splitLanguages(raw string) []string {
	parts := strings.Split(raw, ",")
	languages := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			languages = append(languages, trimmed)
		}
	}
	return languages
}
