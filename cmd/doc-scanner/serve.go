package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/doc-scanner-mcp/internal/scanner"
	"github.com/ironsheep/doc-scanner-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document tools over MCP on stdin and stdout",
	Long: `serve speaks the Model Context Protocol (JSON-RPC 2.0, one message per
line) on stdin and stdout. Configure it in your MCP client as a stdio server.

The upload and history tools store files and records below --data-dir. When
that directory cannot be opened they are reported as unavailable and the
other tools keep working.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("user-id", "", "user recorded with uploads that name none")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Pipeline:    a.pipeline,
		Logger:      a.logger,
		Version:     Version,
		DefaultUser: a.cfg.UserID,
	}
	files, meta, err := a.openStores()
	if err != nil {
		a.logger.Warn("storage unavailable, upload tools disabled", "data_dir", a.cfg.DataDir, "error", err)
	} else {
		defer meta.Close()
		deps.Uploads = scanner.NewService(a.pipeline, files, meta, a.logger)
		deps.History = meta
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("doc-scanner MCP server starting",
		"version", Version,
		"commit", GitCommit,
		"backend", a.pipeline.Backend().Name())
	return server.New(deps).Run(ctx)
}
