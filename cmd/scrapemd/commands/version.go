package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/scrapemd/internal/output"
	"github.com/jmylchreest/scrapemd/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			w := output.NewJSONWriter(cmd.OutOrStdout(), false, "")
			if err := w.Write(version.Get()); err != nil {
				return err
			}
			return w.Flush()
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		return err
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(versionCmd)
}
