package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/offerwatch/internal/app"
)

var version = "dev"

var (
	configPath  string
	pollSeconds int
)

var rootCmd = &cobra.Command{
	Use:           "offerwatch",
	Short:         "Terminal client for the job-offer service",
	Long:          "offerwatch keeps your offers in sync with the server and tells you when staff have read them.\nRun without a subcommand for the full-screen dashboard.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), appOptions())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "override config path (optional)")
	rootCmd.PersistentFlags().IntVar(&pollSeconds, "poll", 0, "refresh interval in seconds (optional, defaults to poll_interval)")
}

func appOptions() app.Options {
	opts := app.Options{ConfigPath: configPath, Version: version}
	if pollSeconds > 0 {
		opts.PollEvery = time.Duration(pollSeconds) * time.Second
	}
	return opts
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "offerwatch: %v\n", err)
		return 1
	}
	return 0
}
