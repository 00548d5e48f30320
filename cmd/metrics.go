package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otelkit/docscan/internal/monitoring"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Collect a metrics snapshot and evaluate alert thresholds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initJournal(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := monitoring.NewCollector(st, nil).Collect(ctx)
		if err != nil {
			return err
		}

		alerter := monitoring.NewAlerter(cfg.Monitoring)
		alerts := alerter.Evaluate(snap)

		send, _ := cmd.Flags().GetBool("send")
		if send && len(alerts) > 0 {
			sent := alerter.SendAlerts(ctx, alerts)
			fmt.Fprintf(os.Stderr, "Sent %d of %d alert(s).\n", sent, len(alerts))
		}

		out := struct {
			Snapshot any `json:"snapshot"`
			Alerts   any `json:"alerts,omitempty"`
		}{Snapshot: snap, Alerts: alerts}
		return printJSON(out)
	},
}

func init() {
	metricsCmd.Flags().Bool("send", false, "deliver triggered alerts to the configured webhook")
	rootCmd.AddCommand(metricsCmd)
}
