package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/otelkit/docscan/internal/registry"
	"github.com/otelkit/docscan/internal/scan"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the extraction provider catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc := scan.New(cfg)
		formatProviders(os.Stdout, svc)
		return nil
	},
}

func formatProviders(out io.Writer, svc *scan.Service) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tFAMILY\tMODEL\tQUALITY\tCOST/SCAN\tTIMEOUT")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-----\t-------\t---------\t-------")

	for _, d := range svc.ListProviders() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t$%.4f\t%s\n",
			d.ID, d.Name, d.Family, d.Model, d.QualityTier,
			svc.EstimateScanCost(d.ID), d.Timeout.Round(time.Second),
		)
	}
	_ = w.Flush()
}

// -- providers stats --

var providerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show live provider health",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc := scan.New(cfg)

		stats := svc.ProviderStats()
		if len(stats) == 0 {
			fmt.Fprintln(os.Stderr, "No provider calls recorded in this process.")
			return nil
		}
		formatProviderStats(os.Stdout, stats)
		return nil
	},
}

func formatProviderStats(out io.Writer, stats map[string]registry.Health) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROVIDER\tSTATUS\tCALLS\tSUCCESS%\tCONSEC_FAIL\tAVG_LATENCY")
	_, _ = fmt.Fprintln(w, "--------\t------\t-----\t--------\t-----------\t-----------")

	for id, h := range stats {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%d\t%s\n",
			id, h.Status, h.TotalCalls, h.SuccessRate,
			h.ConsecutiveFailures, h.AvgResponseTime.Round(time.Millisecond),
		)
	}
	_ = w.Flush()
}

func init() {
	providersCmd.AddCommand(providerStatsCmd)
	rootCmd.AddCommand(providersCmd)
}
