package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/authorscan/pkg/types"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

func TestLoadScanConfigDefaults(t *testing.T) {
	v := newTestViper(t)
	cfg, err := loadScanConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.PubMed.Timeout)
	assert.Equal(t, "authorscan/0.1", cfg.PubMed.UserAgent)
	assert.Equal(t, cfg.PubMed.HTTPConfig, cfg.Resolver.HTTPConfig)
	assert.Equal(t, "authorscan", cfg.PubMed.Tool)
	assert.Equal(t, 100, cfg.PubMed.PageSize)
	assert.Equal(t, 100, cfg.PubMed.BatchSize)
	assert.Zero(t, cfg.PubMed.MaxResults)
	assert.Zero(t, cfg.PubMed.RequestDelay)
	assert.Equal(t, time.Second, cfg.Resolver.CitationDelay)
	assert.Equal(t, time.Second, cfg.Resolver.AggregatorDelay)
	assert.True(t, cfg.Resolver.EnableCitationIndex)
	assert.True(t, cfg.Resolver.EnableAggregator)
	assert.False(t, cfg.Resolver.ScrapeLandingPages)
	assert.Equal(t, types.OutputFormat(""), cfg.Report.Format)
	assert.Equal(t, "; ", cfg.Report.Separator)
}

func TestLoadScanConfigFromYAMLAndEnv(t *testing.T) {
	t.Setenv("NCBI_API_KEY", "from-ncbi-env")
	t.Setenv("AUTHORSCAN_RESOLVER_MAILTO", "ops@example.org")

	v := newTestViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
http:
  timeout: 10s
pubmed:
  request_delay: 500ms
  max_results: 250
resolver:
  enable_aggregator: false
  scrape_landing_pages: true
report:
  format: JSON
`)))

	cfg, err := loadScanConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.PubMed.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.PubMed.RequestDelay)
	assert.Equal(t, 250, cfg.PubMed.MaxResults)
	assert.Equal(t, "from-ncbi-env", cfg.PubMed.APIKey)
	assert.Equal(t, "ops@example.org", cfg.Resolver.Mailto)
	assert.False(t, cfg.Resolver.EnableAggregator)
	assert.True(t, cfg.Resolver.ScrapeLandingPages)
	assert.Equal(t, types.FormatJSON, cfg.Report.Format)
}

func TestLoadScanConfigPrefixedKeyWins(t *testing.T) {
	t.Setenv("NCBI_API_KEY", "generic")
	t.Setenv("AUTHORSCAN_PUBMED_API_KEY", "prefixed")

	cfg, err := loadScanConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.PubMed.APIKey)
}

func TestLoadScanConfigRequestDelayFloorDependsOnKey(t *testing.T) {
	t.Setenv("NCBI_API_KEY", "")
	t.Setenv("AUTHORSCAN_PUBMED_API_KEY", "")

	v := newTestViper(t)
	v.Set("pubmed.request_delay", "200ms")
	_, err := loadScanConfig(v)
	assert.ErrorContains(t, err, "below the NCBI limit of 340ms")

	v.Set("pubmed.api_key", "k")
	cfg, err := loadScanConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, cfg.PubMed.RequestDelay)

	v.Set("pubmed.request_delay", "50ms")
	_, err = loadScanConfig(v)
	assert.ErrorContains(t, err, "below the NCBI limit of 100ms")
}

func TestLoadScanConfigInvalid(t *testing.T) {
	tests := []struct {
		key    string
		value  any
		errMsg string
	}{
		{"report.format", "xml", `unknown output format "xml"`},
		{"http.timeout", "0s", "http.timeout must be positive"},
		{"pubmed.max_results", -1, "must not be negative"},
		{"pubmed.request_delay", "50ms", "below the NCBI limit"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newTestViper(t)
			v.Set(tt.key, tt.value)
			_, err := loadScanConfig(v)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestWriteVerdicts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVerdicts(&buf, []string{
		"Acme Pharma Inc., Boston",
		"University of Example",
		"Department of Oncology, Genentech Inc.",
		"Riverside Bakery",
	}, false))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], `commercial ("pharma")`), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "academic "), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], `commercial+academic ("inc")`), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "neither "), lines[3])
}

func TestWriteVerdictsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVerdicts(&buf, []string{"Beta Biotech GmbH"}, true))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Beta Biotech GmbH", got[0]["affiliation"])
	assert.Equal(t, true, got[0]["is_commercial"])
	assert.Equal(t, "biotech", got[0]["matched_company_term"])
}
