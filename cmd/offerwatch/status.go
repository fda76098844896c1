package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/offerwatch/internal/app"
	"github.com/five82/offerwatch/internal/session"
	"github.com/five82/offerwatch/internal/unread"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and unread count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Bootstrap(cmd.Context(), appOptions())
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Server:  %s\n", env.Client.BaseURL())
		fmt.Fprintf(out, "Config:  %s\n", env.Config.Path)
		fmt.Fprintf(out, "Log:     %s\n", env.Config.LogFile)

		st := session.NewManager(env.Client, env.Logger).Refresh(cmd.Context())
		if !st.Authenticated {
			fmt.Fprintln(out, "Session: signed out")
			return nil
		}
		fmt.Fprintf(out, "Session: %s <%s> (%s)\n", st.Identity.DisplayName, st.Identity.Email, st.Identity.Role)
		if st.IsAdmin() {
			return nil
		}

		count, err := env.Client.UnreadCount(cmd.Context())
		if err != nil {
			return fmt.Errorf("unread count: %w", err)
		}
		fmt.Fprintf(out, "Badge:   %s\n", unread.BadgeLabel(count))
		return nil
	},
}
