package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/doc-scanner-mcp/internal/vision"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of doc-scanner",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "doc-scanner %s\n", Version)
		fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		fmt.Fprintf(out, "  Backends:   %s\n", strings.Join(vision.Available(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
