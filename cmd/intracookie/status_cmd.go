package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"intracookie/internal/config"
	"intracookie/internal/format"
	"intracookie/internal/store"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last capture and the cookie file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, format.KeyValue("Output", cfg.OutputPath))
			if info, err := os.Stat(cfg.OutputPath); err == nil {
				fmt.Fprintln(w, format.KeyValue("Written", format.Timestamp(info.ModTime())))
				fmt.Fprintln(w, format.KeyValue("Size", fmt.Sprintf("%d bytes", info.Size())))
			} else {
				fmt.Fprintln(w, format.KeyValue("Written", "-"))
			}

			path, err := config.RunRecordPath()
			if err != nil {
				return err
			}
			record, err := store.LoadRunRecord(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintln(w, "No capture has been run yet.")
					return nil
				}
				return err
			}
			result := "failed"
			if record.Success {
				result = "ok"
			}
			fmt.Fprintln(w, format.KeyValue("Last run", format.Timestamp(record.StartedAt)))
			fmt.Fprintln(w, format.KeyValue("Result", result))
			fmt.Fprintln(w, format.KeyValue("Duration", format.Duration(record.Duration())))
			if record.Browser != "" {
				fmt.Fprintln(w, format.KeyValue("Browser", record.Browser))
			}
			if record.Login != "" {
				fmt.Fprintln(w, format.KeyValue("Login", record.Login))
			}
			if record.Error != "" {
				fmt.Fprintln(w, format.KeyValue("Error", record.Error))
			}
			return nil
		},
	}
}
