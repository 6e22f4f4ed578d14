// Package commands implements the CLI commands for scrapemd.
package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "scrapemd <source> [output-file]",
	Short: "Convert web pages to chat-sized Markdown or image manifests",
	Long: `Scrapemd renders a web page (or reads a local HTML file), strips it down
to its text, converts it to Markdown and splits the result into parts small
enough for a chat message or an LLM context window.

With --images it downloads every image on the page instead and writes the
results as batched JSON manifests.

One JSON object describing the result is printed on stdout. Progress and
diagnostics go to stderr.

Examples:
  # Convert a page to output.md (or output_part1.md, output_part2.md, ...)
  scrapemd "https://example.com/article"

  # Convert a local file to a named output
  scrapemd page.html notes.md

  # Download the page's images and write notes_images_batch1.json, ...
  scrapemd "https://example.com/gallery" notes.md --images

  # Skip the headless browser for pages that need no JavaScript
  scrapemd "https://example.com" --fetch-mode static

  # Only start the browser when the page turns out to need it
  scrapemd "https://example.com" --fetch-mode auto`,
	Args:    sourceArgs,
	Version: version.String(),
	RunE:    runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.scrapemd.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")
	rootCmd.PersistentFlags().Bool("exit-code", false, "exit non-zero when a failure result is printed")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
	_ = viper.BindPFlag("exit_code", rootCmd.PersistentFlags().Lookup("exit-code"))

	rootCmd.SetFlagErrorFunc(usageFailure)
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".scrapemd")
		viper.SetConfigType("yaml")
	}

	// SCRAPEMD_MAX_CHUNK_SIZE and friends
	viper.SetEnvPrefix("SCRAPEMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// initLogger configures logging from the global flags.
func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
	if f := viper.ConfigFileUsed(); f != "" {
		logger.Debug("using config file", "path", f)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
