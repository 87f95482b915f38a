package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/authorscan/internal/pubmed"
	"github.com/pdiddy/authorscan/internal/report"
	"github.com/pdiddy/authorscan/internal/resolve"
	"github.com/pdiddy/authorscan/internal/scan"
	"github.com/pdiddy/authorscan/pkg/types"
)

func runScan(cmd *cobra.Command, args []string) error {
	query := pubmed.CleanQuery(strings.Join(args, " "))
	if query == "" {
		return cmd.Help()
	}

	cfg, err := loadScanConfig(viper.GetViper())
	if err != nil {
		return err
	}
	file, _ := cmd.Flags().GetString("file")
	if cfg.Report.Format == "" {
		cfg.Report.Format = types.FormatTable
		if file != "" {
			cfg.Report.Format = types.FormatCSV
		}
	}

	client := &http.Client{Timeout: cfg.PubMed.Timeout}
	fetcher := pubmed.NewClient(client, cfg.PubMed, nil)
	if cfg.PubMed.APIKey == "" {
		slog.Info("no NCBI API key configured; requests limited to 3 per second")
	}
	scanner := &scan.Scanner{
		Fetcher:  fetcher,
		Resolver: resolve.New(client, cfg.Resolver, nil),
	}

	slog.Info("searching PubMed", "query", query)
	result, err := scanner.Run(cmd.Context(), query)
	if err != nil {
		return err
	}

	if file == "" {
		return report.Write(result.Rows, cmd.OutOrStdout(), cfg.Report)
	}
	if err := writeReportFile(file, result.Rows, cfg.Report); err != nil {
		return err
	}
	slog.Info("report written", "path", file, "rows", len(result.Rows))
	return nil
}

// writeReportFile renders rows to a temporary file next to path and renames
// it into place, so an interrupted run never leaves a partial report.
func writeReportFile(path string, rows []types.ReportRow, cfg types.ReportConfig) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".authorscan-*.tmp")
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := report.Write(rows, tmp, cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("moving report into place: %w", err)
	}
	return nil
}
