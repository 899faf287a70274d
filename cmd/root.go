// Package cmd defines and implements the CLI commands for the ycrawler
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ycrawler",
		Short: "Archives Hacker News stories and their comment links to disk.",
		Long: `ycrawler periodically polls the news.ycombinator.com front page,
discovers new story threads, and archives each thread's article page,
comments page, and every outbound comment link into a folder per story.
Already archived stories are skipped on later cycles.`,
		SilenceUsage: true,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches the working directory)")
	cmd.PersistentFlags().StringP("output-dir", "o", ".", "where to put archived data")
	cmd.PersistentFlags().IntP("interval", "i", 30, "interval to check the main page in seconds")
	cmd.PersistentFlags().StringP("log-file", "l", "ycrawler.log", "file to append logs to")
	cmd.PersistentFlags().BoolP("debug", "d", false, "turn on debug mode")

	bindings := map[string]string{
		"crawler.output_dir":       "output-dir",
		"crawler.interval_seconds": "interval",
		"logging.file":             "log-file",
		"logging.development":      "debug",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point; it owns the process exit code for
// uncaught top-level failures.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
