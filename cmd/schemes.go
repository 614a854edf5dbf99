package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gmauleon.org/snowdissect/pkg/scheme"
)

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List the known snowflake schemes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTS BITS\tTOTAL BITS\tEPOCH OFFSET\tENCODING")
		for _, p := range registry.All() {
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", p.Name, p.TimestampBits, orDash(p.TotalBits), p.EpochOffset, orGuess(p.Encoding))
		}
		fmt.Fprintf(w, "%s\t--ts-bits\t-\t--offset\tguess\n", scheme.Manual)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(schemesCmd)
}

func orDash(bits int) string {
	if bits == 0 {
		return "input"
	}
	return fmt.Sprint(bits)
}

func orGuess(encoding string) string {
	if encoding == "" {
		return "guess"
	}
	return encoding
}
