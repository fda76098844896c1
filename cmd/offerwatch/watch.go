package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/offerwatch/internal/app"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run headless and print notices",
	Long:  "Run the sync engine without the dashboard. Each notice and unread-badge change is printed as a line until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Watch(cmd.Context(), appOptions(), cmd.OutOrStdout())
	},
}
