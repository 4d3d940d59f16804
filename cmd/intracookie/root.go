package main

import (
	"time"

	"intracookie/internal/capture"
	"intracookie/internal/config"

	"github.com/spf13/cobra"
)

type runFlags struct {
	timeout time.Duration
	output  string
	logFile string
	url     string
	trace   bool
	verify  bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "intracookie",
		Short: "Capture the 42 intra session cookie for LogtimeWidget",
		Long: `intracookie opens a browser on the 42 intra, waits for you to log in,
and saves the _intra_42_session_production cookie where LogtimeWidget reads it.

Run without arguments to capture:
  intracookie                       # launch a browser and wait for login
  intracookie attach                # read from a browser started with --remote-debugging-port=9222
  intracookie status                # show the result of the last run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger, closeLog := newLogger(cfg.LogPath, flags.verbose)
			defer closeLog()
			logger.WithField("output", cfg.OutputPath).Info("Script started")

			recordPath, err := config.RunRecordPath()
			if err != nil {
				logger.WithError(err).Debug("run record disabled")
				recordPath = ""
			}
			runner := &capture.Runner{Config: cfg, Logger: logger, RecordPath: recordPath}
			err = runner.Run(cmd.Context())
			logger.Info("Script finished")
			return err
		},
	}

	addRunFlags(cmd, &flags)
	cmd.AddCommand(newAttachCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	f := cmd.Flags()
	f.DurationVar(&flags.timeout, "timeout", 0, "how long to wait for login (default from config, 10m)")
	f.StringVar(&flags.output, "output", "", "file that receives the cookie value")
	f.StringVar(&flags.logFile, "log-file", "", "log file path")
	f.StringVar(&flags.url, "url", "", "login page to open")
	f.BoolVar(&flags.trace, "trace", false, "log browser network traffic for the intra domain")
	f.BoolVar(&flags.verify, "verify", false, "check the captured cookie against the profile page")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command, flags runFlags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	return applyFlags(cmd, cfg, flags), nil
}

func applyFlags(cmd *cobra.Command, cfg config.Config, flags runFlags) config.Config {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("timeout") && flags.timeout > 0 {
		cfg.TimeoutSeconds = int((flags.timeout + time.Second - 1) / time.Second)
	}
	if changed("output") && flags.output != "" {
		cfg.OutputPath = flags.output
	}
	if changed("log-file") {
		cfg.LogPath = flags.logFile
	}
	if changed("url") && flags.url != "" {
		cfg.LoginURL = flags.url
	}
	if changed("trace") {
		cfg.Trace = flags.trace
	}
	if changed("verify") {
		cfg.Verify = flags.verify
	}
	return cfg
}
