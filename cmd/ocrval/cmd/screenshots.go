package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nitya2202/ocr-string-validation-tool/internal/capture"
	"github.com/nitya2202/ocr-string-validation-tool/internal/utils"
)

// screenshotsCmd groups screenshot library helpers.
var screenshotsCmd = &cobra.Command{
	Use:   "screenshots",
	Short: "Manage the screenshot library",
	Long:  "Helpers for filling the screenshot directory the validation run reads from.",
}

// screenshotsImportCmd represents the screenshots import command.
var screenshotsImportCmd = &cobra.Command{
	Use:   "import <capture.pdf>",
	Short: "Import screen captures from a PDF document",
	Long: `Extracts the page images of a PDF capture into the screenshot directory.

Pages are written as PNG files named <prefix><page>.png. Rename them to
the screen ids of the test protocol before running a validation.

Examples:
  ocrval screenshots import walkthrough-de.pdf
  ocrval screenshots import walkthrough-de.pdf --pages 2-14 --prefix screen_`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runScreenshotsImportCommand,
}

// screenshotsListCmd represents the screenshots list command.
var screenshotsListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List the screenshot library",
	Long:         "Lists the screenshots a validation run would read, with their dimensions.",
	SilenceUsage: true,
	RunE:         runScreenshotsListCommand,
}

func init() {
	rootCmd.AddCommand(screenshotsCmd)
	screenshotsCmd.AddCommand(screenshotsImportCmd, screenshotsListCmd)

	screenshotsImportCmd.Flags().String("pages", "", "page selection, e.g. 1-5,8 (default all pages)")
	screenshotsImportCmd.Flags().String("prefix", "page_", "filename prefix for imported pages")
	screenshotsImportCmd.Flags().String("dest", "", "destination directory (default the configured screenshot directory)")
}

func runScreenshotsImportCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	destDir, _ := cmd.Flags().GetString("dest")
	if destDir == "" {
		destDir = cfg.ScreenshotsDir()
	}
	pages, _ := cmd.Flags().GetString("pages")
	prefix, _ := cmd.Flags().GetString("prefix")

	written, err := capture.ImportScreenshots(args[0], destDir, prefix, pages)
	if err != nil {
		return err
	}

	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", filepath.Base(path))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d page images into %s\n", len(written), destDir)
	return nil
}

func runScreenshotsListCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	dir := cfg.ScreenshotsDir()

	paths, err := utils.ListImages(dir)
	if err != nil {
		return fmt.Errorf("reading screenshot directory: %w", err)
	}
	if len(paths) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No screenshots in %s\n", dir)
		return nil
	}

	for _, path := range paths {
		meta, err := utils.InspectImage(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s: %v\n", filepath.Base(path), err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-32s %5dx%-5d %7.1f KiB\n",
			filepath.Base(path), meta.Width, meta.Height, float64(meta.SizeBytes)/1024)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d screenshots in %s\n", len(paths), dir)
	return nil
}
