package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nitya2202/ocr-string-validation-tool/internal/version"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		b := version.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "ocrval %s\n", b.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", b.GitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", b.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
