package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/otelkit/docscan/internal/mrz"
)

var mrzCmd = &cobra.Command{
	Use:   "mrz [file]",
	Short: "Parse machine-readable-zone text from a file or stdin",
	Long:  "Scans free text for embedded TD1/TD3 MRZ lines, parses the fields and validates the check digits. Reads from stdin when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			text []byte
			err  error
		)
		if len(args) == 1 {
			text, err = os.ReadFile(args[0])
			if err != nil {
				return eris.Wrapf(err, "mrz: read %s", args[0])
			}
		} else {
			text, err = io.ReadAll(os.Stdin)
			if err != nil {
				return eris.Wrap(err, "mrz: read stdin")
			}
		}

		rec := mrz.DetectAndParse(string(text))
		if rec == nil {
			fmt.Fprintln(os.Stderr, "No parsable MRZ found.")
			os.Exit(1)
		}
		return printJSON(rec)
	},
}

func init() {
	rootCmd.AddCommand(mrzCmd)
}
