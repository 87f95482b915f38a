package types

import "time"

// HTTPConfig holds shared HTTP settings used by every component that makes
// network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout. A timeout counts as a
	// failed call, never as a fatal error, outside the search phase.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "authorscan/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the E-utilities fetcher.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional NCBI API key. With a key NCBI allows
	// 10 requests per second instead of 3.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email and Tool identify the caller to NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Tool  string `json:"tool" yaml:"tool"`

	// RequestDelay is the minimum delay between E-utilities calls
	// (default 340ms, 100ms with an API key).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// PageSize is the ESearch retmax per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// BatchSize is the number of ids per EFetch request (default 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxResults caps the number of ids collected from ESearch; 0 means all.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ResolverConfig holds settings for the email resolution chain.
type ResolverConfig struct {
	HTTPConfig `yaml:",inline"`

	// Mailto is sent to Crossref and OpenAlex for polite-pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// CitationDelay is the minimum delay between Crossref calls (default 1s).
	CitationDelay time.Duration `json:"citation_delay" yaml:"citation_delay"`

	// AggregatorDelay is the minimum delay between Europe PMC / OpenAlex
	// calls (default 1s).
	AggregatorDelay time.Duration `json:"aggregator_delay" yaml:"aggregator_delay"`

	EnableCitationIndex bool `json:"enable_citation_index" yaml:"enable_citation_index"`
	EnableAggregator    bool `json:"enable_aggregator" yaml:"enable_aggregator"`

	// ScrapeLandingPages enables the OpenAlex landing-page lookup at the
	// end of the aggregator tier.
	ScrapeLandingPages bool `json:"scrape_landing_pages" yaml:"scrape_landing_pages"`
}

// OutputFormat selects how report rows are rendered.
type OutputFormat string

const (
	FormatCSV   OutputFormat = "csv"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// Valid reports whether f names a supported format.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatCSV, FormatTable, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// ReportConfig holds settings for report rendering.
type ReportConfig struct {
	Format OutputFormat `json:"format" yaml:"format"`

	// Separator joins multi-value cells (authors, affiliations) in CSV
	// and table output (default "; ").
	Separator string `json:"separator" yaml:"separator"`
}

// ScanConfig groups the configuration of a full scan run.
type ScanConfig struct {
	PubMed   PubMedConfig   `json:"pubmed" yaml:"pubmed"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver"`
	Report   ReportConfig   `json:"report" yaml:"report"`
}
