package main

import (
	"intracookie/internal/capture"
	"intracookie/internal/config"

	"github.com/spf13/cobra"
)

func newAttachCmd() *cobra.Command {
	var (
		flags  runFlags
		remote string
	)
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Read the cookie from a browser that is already running",
		Long: `attach connects to a Chromium-based browser started with
--remote-debugging-port and reads the session cookie from it.
The browser is not launched and not closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger, closeLog := newLogger(cfg.LogPath, flags.verbose)
			defer closeLog()

			recordPath, err := config.RunRecordPath()
			if err != nil {
				recordPath = ""
			}
			runner := &capture.Runner{Config: cfg, Logger: logger, RecordPath: recordPath}
			return runner.RunAttached(cmd.Context(), remote)
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().StringVar(&remote, "remote", capture.DefaultRemoteURL, "remote debugging endpoint")
	return cmd
}
