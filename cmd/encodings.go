package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gmauleon.org/snowdissect/pkg/timestamp"
)

var encodingsCmd = &cobra.Command{
	Use:   "encodings",
	Short: "Show the timestamp encodings in the order they are guessed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRIORITY\tENCODING\tSLUG\tRANGE\tUNITS/S")
		for i, r := range timestamp.Rules() {
			window := "anything else"
			if r.Bounded() {
				window = fmt.Sprintf("%d - %d", r.Low, r.High)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", i+1, r.Encoding, r.Slug, window, r.UnitsPerSecond)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(encodingsCmd)
}
