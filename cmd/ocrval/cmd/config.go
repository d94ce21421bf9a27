package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nitya2202/ocr-string-validation-tool/internal/config"
)

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and generate configuration",
	Long:  "Helpers for the resolved configuration, its search paths and starter config files.",
}

// configShowCmd represents the config show command.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long: `Prints the configuration every other command runs with, merged from the
config file, OCRVAL_* environment variables and built-in defaults.

Examples:
  ocrval config show
  ocrval --config ./ci.yaml config show`,
	SilenceUsage: true,
	RunE:         runConfigShowCommand,
}

// configPathsCmd represents the config paths command.
var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the config file search paths",
	Run:   runConfigPathsCommand,
}

// configInitCmd represents the config init command.
var configInitCmd = &cobra.Command{
	Use:          "init",
	Short:        "Write a config file with the default values",
	SilenceUsage: true,
	RunE:         runConfigInitCommand,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathsCmd, configInitCmd)

	configInitCmd.Flags().StringP("output", "o", "ocrval.yaml", "path of the generated file")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func runConfigShowCommand(cmd *cobra.Command, args []string) error {
	loader := GetConfigLoader()

	if file := loader.FileUsed(); file != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", file)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "# no config file found, defaults and environment apply")
	}

	out, err := yaml.Marshal(loader.ResolvedSettings())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runConfigPathsCommand(cmd *cobra.Command, args []string) {
	for _, dir := range config.SearchPaths() {
		fmt.Fprintln(cmd.OutOrStdout(), dir)
	}
}

func runConfigInitCommand(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, pass --force to overwrite", path)
		}
	}
	if err := config.WriteDefaultFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
