package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/offerwatch/internal/app"
	"github.com/five82/offerwatch/internal/engine"
	"github.com/five82/offerwatch/internal/session"
	"github.com/five82/offerwatch/internal/submit"
)

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(confirmAllCmd)
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new offer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Bootstrap(cmd.Context(), appOptions())
		if err != nil {
			return err
		}
		defer env.Close()

		st := session.NewManager(env.Client, env.Logger).Refresh(cmd.Context())
		if !st.Authenticated {
			return errors.New(engine.MsgLoginRequired)
		}
		if st.IsAdmin() {
			return errors.New(engine.MsgAdminCannotCreate)
		}

		draft := submit.NewDraft()
		if err := submit.Form(draft).RunWithContext(cmd.Context()); err != nil {
			return err
		}
		req, err := draft.Request()
		if err != nil {
			return err
		}
		offer, err := env.Client.CreateOffer(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("%s: %w", engine.MsgCreateFailed, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d)\n", engine.MsgCreated, offer.ID)
		return nil
	},
}

var confirmAllCmd = &cobra.Command{
	Use:   "confirm-all",
	Short: "Mark every offer you submitted as confirmed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Bootstrap(cmd.Context(), appOptions())
		if err != nil {
			return err
		}
		defer env.Close()

		st := session.NewManager(env.Client, env.Logger).Refresh(cmd.Context())
		if !st.Authenticated {
			return errors.New(engine.MsgLoginRequired)
		}
		if st.IsAdmin() {
			return errors.New("confirm-all is for offer submitters")
		}
		n, err := env.Client.ConfirmAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", engine.MsgConfirmFailed, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", engine.MsgConfirmed, n)
		return nil
	},
}
