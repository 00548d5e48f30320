package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/otelkit/docscan/internal/model"
	"github.com/otelkit/docscan/internal/store"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the scan journal",
	Long:  "Commands for listing and viewing journaled scan outcomes.",
}

// -- journal list --

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled scans",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initJournal(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		provider, _ := cmd.Flags().GetString("provider")
		limit, _ := cmd.Flags().GetInt("limit")
		failedOnly, _ := cmd.Flags().GetBool("failed")
		reviewOnly, _ := cmd.Flags().GetBool("review")

		filter := store.ScanFilter{Provider: provider, Limit: limit}
		if failedOnly {
			f := false
			filter.Success = &f
		}
		if reviewOnly {
			r := true
			filter.ReviewNeeded = &r
		}

		scans, err := st.ListScans(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "journal list")
		}
		if len(scans) == 0 {
			fmt.Fprintln(os.Stderr, "No scans found.")
			return nil
		}

		formatScanList(os.Stdout, scans)
		return nil
	},
}

// -- journal show --

var journalShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Show full details of a journaled scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initJournal(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetScan(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "journal show")
		}
		return printJSON(rec)
	},
}

// -- journal stats --

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate scan statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initJournal(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		totals, err := st.Totals(ctx)
		if err != nil {
			return eris.Wrap(err, "journal stats")
		}

		formatTotals(os.Stdout, totals)
		return nil
	},
}

func init() {
	journalListCmd.Flags().String("provider", "", "filter by winning provider id")
	journalListCmd.Flags().Int("limit", 50, "max number of scans to display")
	journalListCmd.Flags().Bool("failed", false, "show only failed scans")
	journalListCmd.Flags().Bool("review", false, "show only scans flagged for manual review")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalStatsCmd)
	rootCmd.AddCommand(journalCmd)
}

// formatScanList writes a tabular list of scans to w.
func formatScanList(out io.Writer, scans []model.ScanRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPROVIDER\tOK\tFALLBACK\tQUALITY\tCONFIDENCE\tREVIEW\tCOST\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t--\t--------\t-------\t----------\t------\t----\t-------")

	for _, r := range scans {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%d\t%.1f\t%v\t$%.4f\t%s\n",
			truncateID(r.ID), r.Provider, r.Success, r.FallbackUsed,
			r.QualityScore, r.Confidence, r.ReviewNeeded, r.CostUSD,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatTotals writes aggregate journal stats to w.
func formatTotals(out io.Writer, t *store.Totals) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total scans:\t%d\n", t.Scans)
	_, _ = fmt.Fprintf(w, "Successes:\t%d\n", t.Successes)
	_, _ = fmt.Fprintf(w, "Failures:\t%d\n", t.Scans-t.Successes)
	_, _ = fmt.Fprintf(w, "Fallbacks used:\t%d\n", t.Fallbacks)
	_, _ = fmt.Fprintf(w, "Review needed:\t%d\n", t.ReviewNeeded)
	_, _ = fmt.Fprintf(w, "Total spend:\t$%.4f\n", t.TotalCostUSD)
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
