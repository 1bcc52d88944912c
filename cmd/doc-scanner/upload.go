package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/doc-scanner-mcp/internal/scanner"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Rectify documents and store them in the scan history",
	Long: `upload stores each original below <data-dir>/uploads/original, its
cropped result below <data-dir>/uploads/cropped, and records the upload in
the scan history. Failed uploads are recorded too.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().String("user-id", "", "user the uploads belong to (default from config, \"local\")")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	files, meta, err := a.openStores()
	if err != nil {
		return err
	}
	defer meta.Close()

	svc := scanner.NewService(a.pipeline, files, meta, a.logger)
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			a.logger.Error("upload failed", "input", path, "error", err)
			failed++
			continue
		}
		res, err := svc.Upload(cmd.Context(), a.cfg.UserID, filepath.Base(path), data)
		if err != nil {
			a.logger.Error("upload failed", "input", path, "error", err)
			failed++
			continue
		}
		u := res.Upload
		cropped, err := files.Path(u.CroppedKey)
		if err != nil {
			cropped = u.CroppedKey
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", u.ID, u.Filename, cropped)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d upload(s) failed", failed, len(args))
	}
	return nil
}
