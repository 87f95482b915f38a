package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/authorscan/internal/pubmed"
	"github.com/pdiddy/authorscan/internal/report"
	"github.com/pdiddy/authorscan/pkg/types"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultUserAgent       = "authorscan/0.1"
	defaultCitationDelay   = 1 * time.Second
	defaultAggregatorDelay = 1 * time.Second
)

// setDefaults registers the default for every configuration key.
// pubmed.request_delay has no default here: it depends on whether an API
// key is configured and is filled in by pubmed.NewClient.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("http.timeout", defaultTimeout)
	v.SetDefault("http.user_agent", defaultUserAgent)

	v.SetDefault("pubmed.api_key", "")
	v.SetDefault("pubmed.email", "")
	v.SetDefault("pubmed.tool", "authorscan")
	v.SetDefault("pubmed.page_size", 100)
	v.SetDefault("pubmed.batch_size", 100)
	v.SetDefault("pubmed.max_results", 0)

	v.SetDefault("resolver.mailto", "")
	v.SetDefault("resolver.citation_delay", defaultCitationDelay)
	v.SetDefault("resolver.aggregator_delay", defaultAggregatorDelay)
	v.SetDefault("resolver.enable_citation_index", true)
	v.SetDefault("resolver.enable_aggregator", true)
	v.SetDefault("resolver.scrape_landing_pages", false)

	v.SetDefault("report.separator", report.DefaultSeparator)
}

// bindEnv maps AUTHORSCAN_SECTION_KEY variables onto section.key and
// accepts the conventional NCBI_API_KEY for the E-utilities key.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("AUTHORSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("pubmed.api_key", "AUTHORSCAN_PUBMED_API_KEY", "NCBI_API_KEY")
}

// loadScanConfig reads the scan configuration from v.
func loadScanConfig(v *viper.Viper) (types.ScanConfig, error) {
	httpCfg := types.HTTPConfig{
		Timeout:   v.GetDuration("http.timeout"),
		UserAgent: v.GetString("http.user_agent"),
	}
	cfg := types.ScanConfig{
		PubMed: types.PubMedConfig{
			HTTPConfig:   httpCfg,
			APIKey:       v.GetString("pubmed.api_key"),
			Email:        v.GetString("pubmed.email"),
			Tool:         v.GetString("pubmed.tool"),
			RequestDelay: v.GetDuration("pubmed.request_delay"),
			PageSize:     v.GetInt("pubmed.page_size"),
			BatchSize:    v.GetInt("pubmed.batch_size"),
			MaxResults:   v.GetInt("pubmed.max_results"),
		},
		Resolver: types.ResolverConfig{
			HTTPConfig:          httpCfg,
			Mailto:              v.GetString("resolver.mailto"),
			CitationDelay:       v.GetDuration("resolver.citation_delay"),
			AggregatorDelay:     v.GetDuration("resolver.aggregator_delay"),
			EnableCitationIndex: v.GetBool("resolver.enable_citation_index"),
			EnableAggregator:    v.GetBool("resolver.enable_aggregator"),
			ScrapeLandingPages:  v.GetBool("resolver.scrape_landing_pages"),
		},
		Report: types.ReportConfig{
			Format:    types.OutputFormat(strings.ToLower(v.GetString("report.format"))),
			Separator: v.GetString("report.separator"),
		},
	}

	if cfg.PubMed.Timeout <= 0 {
		return cfg, fmt.Errorf("http.timeout must be positive, got %s", cfg.PubMed.Timeout)
	}
	if cfg.PubMed.MaxResults < 0 {
		return cfg, fmt.Errorf("pubmed.max_results must not be negative, got %d", cfg.PubMed.MaxResults)
	}
	floor := pubmed.DefaultRequestDelay
	if cfg.PubMed.APIKey != "" {
		floor = pubmed.DefaultRequestDelayWithKey
	}
	if cfg.PubMed.RequestDelay > 0 && cfg.PubMed.RequestDelay < floor {
		return cfg, fmt.Errorf("pubmed.request_delay %s is below the NCBI limit of %s", cfg.PubMed.RequestDelay, floor)
	}
	if cfg.Report.Format != "" && !cfg.Report.Format.Valid() {
		return cfg, fmt.Errorf("unknown output format %q (want csv, table, json, or yaml)", cfg.Report.Format)
	}
	return cfg, nil
}
