package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/doc-scanner-mcp/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file holding the defaults",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringP("output", "o", "", "file to write (default: $XDG_CONFIG_HOME/doc-scanner/doc-scanner.yaml)")
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	if output == "" {
		output = config.DefaultTemplatePath()
	}
	if err := config.WriteTemplate(output, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
	return nil
}
