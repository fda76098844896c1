package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/five82/offerwatch/internal/app"
	"github.com/five82/offerwatch/internal/config"
	"github.com/five82/offerwatch/internal/credential"
	"github.com/five82/offerwatch/internal/engine"
	"github.com/five82/offerwatch/internal/session"
)

var loginCookie string

func init() {
	loginCmd.Flags().StringVar(&loginCookie, "cookie", "", "session cookie value (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session cookie in the OS keyring",
	Long:  "Store the session cookie of a browser login in the OS keyring, scoped to base_url, and check it against the server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		value := strings.TrimSpace(loginCookie)
		if value == "" {
			prompt := huh.NewInput().
				Title(cfg.SessionCookieName + " for " + cfg.BaseURL).
				EchoMode(huh.EchoModePassword).
				Value(&value)
			if err := huh.NewForm(huh.NewGroup(prompt)).RunWithContext(cmd.Context()); err != nil {
				return err
			}
		}

		store, err := credential.Open()
		if err != nil {
			return err
		}
		if err := store.SetSessionCookie(cfg.BaseURL, value); err != nil {
			return err
		}

		env, err := app.Bootstrap(cmd.Context(), appOptions())
		if err != nil {
			return err
		}
		defer env.Close()

		st := session.NewManager(env.Client, env.Logger).Refresh(cmd.Context())
		if !st.Authenticated {
			return errors.New("cookie stored, but the server did not accept it")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s> (%s)\n", st.Identity.DisplayName, st.Identity.Email, st.Identity.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the server session and forget the stored cookie",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Bootstrap(cmd.Context(), appOptions())
		if err != nil {
			return err
		}
		defer env.Close()

		st := session.NewManager(env.Client, env.Logger).Logout(cmd.Context())

		store, err := credential.Open()
		if err == nil {
			err = store.DeleteSessionCookie(env.Config.BaseURL)
		}
		if err != nil {
			env.Logger.Warn("keyring cleanup failed", slog.String("error", err.Error()))
		}

		if st.Authenticated {
			return fmt.Errorf("server still reports a session for %s", st.Identity.Email)
		}
		fmt.Fprintln(cmd.OutOrStdout(), engine.MsgLoggedOut)
		return nil
	},
}
