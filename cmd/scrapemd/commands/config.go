package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/scrapemd/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration a conversion would run with, after applying
defaults, the config file, SCRAPEMD_* environment variables and flags.

The output is a valid .scrapemd.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		initLogger()

		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}

		w, err := output.NewWriter(cmd.OutOrStdout(), output.FormatYAML)
		if err != nil {
			return err
		}
		if err := w.Write(s); err != nil {
			return err
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
