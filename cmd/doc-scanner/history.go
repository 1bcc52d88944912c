package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/doc-scanner-mcp/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded uploads, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("user-id", "", "only list this user's uploads")
	historyCmd.Flags().Int("limit", store.DefaultListLimit, "maximum number of uploads")
	historyCmd.Flags().Bool("json", false, "print JSON instead of a table")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	meta, err := store.OpenMetadataDB(a.cfg.DataDir)
	if err != nil {
		return err
	}
	defer meta.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	// Only an explicit --user-id filters; the configured default user does not.
	userID := ""
	if cmd.Flags().Changed("user-id") {
		userID = a.cfg.UserID
	}

	uploads, err := meta.List(cmd.Context(), userID, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(uploads)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tFILE\tSTATUS\tDETECTED\tSIZE\tCREATED")
	for _, u := range uploads {
		size := "-"
		if u.Status == store.StatusDone {
			size = fmt.Sprintf("%dx%d", u.Width, u.Height)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\t%s\n",
			u.ID, u.UserID, u.Filename, u.Status, u.Detected, size,
			u.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
