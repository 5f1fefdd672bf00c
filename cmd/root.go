// Package cmd implements the command-line interface for vigia: crawl
// sessions, target investigations, the HTTP surface, and the scheduled
// watcher.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/vigialabs/vigia/cmd/common"
	cmdcrawl "github.com/vigialabs/vigia/cmd/crawl"
	"github.com/vigialabs/vigia/cmd/httpd"
	"github.com/vigialabs/vigia/cmd/investigate"
	"github.com/vigialabs/vigia/cmd/watch"
)

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "vigia",
		Short: "Target investigation pipeline",
		Long: `Crawls web sources about a named target, classifies keyword
relevance, and scores extracted text fragments for semantic risk against
a labeled reference corpus.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	opts := func() cmdcommon.Options {
		return cmdcommon.Options{ConfigFile: cfgFile, Debug: debug}
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("vigia version 1.0.0")
		},
	})

	rootCmd.AddCommand(cmdcrawl.Command(opts))
	rootCmd.AddCommand(investigate.Command(opts))
	rootCmd.AddCommand(httpd.Command(opts))
	rootCmd.AddCommand(watch.Command(opts))
}
