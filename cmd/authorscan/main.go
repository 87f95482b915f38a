// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the authorscan CLI. The root command
// runs a PubMed query and reports articles with at least one author at a
// pharmaceutical or biotech company, with a corresponding-author email
// where one can be found.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/authorscan/internal/logging"
	"github.com/pdiddy/authorscan/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs a scan for the query given as arguments.
var rootCmd = &cobra.Command{
	Use:   "authorscan [query]",
	Short: "Find PubMed articles with pharma or biotech authors",
	Long: `authorscan searches PubMed, keeps the articles where at least one author is
affiliated with a pharmaceutical or biotech company, and reports those authors,
their company affiliations, and a corresponding-author email.

Emails are looked up in the PubMed record first, then Crossref, then Europe PMC
(and optionally the article's landing page). The query is passed to PubMed
verbatim, so the full PubMed search syntax is available:

  authorscan 'cancer immunotherapy AND 2023[dp]' -f results.csv`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		slog.SetDefault(logging.New(os.Stderr, debug, viper.GetString("log_level")))

		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		for _, name := range secrets.Apply(s, viper.SetDefault) {
			slog.Warn("ignoring unknown secret", "name", name)
		}
		if len(s) > 0 {
			slog.Debug("loaded secrets", "count", len(s))
		}
		return nil
	},
	RunE: runScan,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./authorscan.yaml or ~/.config/authorscan/authorscan.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")

	rootCmd.Flags().StringP("file", "f", "", "write the report to this file instead of the console")
	rootCmd.Flags().String("format", "", "report format: csv, table, json, yaml (default: csv for files, table for the console)")
	rootCmd.Flags().Int("max-results", 0, "stop after this many search results (0 for all)")

	_ = viper.BindPFlag("report.format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("pubmed.max_results", rootCmd.Flags().Lookup("max-results"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("authorscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "authorscan"))
		}
	}

	setDefaults(viper.GetViper())
	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "warning: reading config:", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
