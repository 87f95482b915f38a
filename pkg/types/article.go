// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the authorscan pipeline:
// fetched articles, affiliation verdicts, resolved emails, and report rows.
package types

// Article holds the metadata of one PubMed record. It is built by the
// fetcher from a single <PubmedArticle> element and is not modified after.
type Article struct {
	// ID is the PubMed identifier (PMID).
	ID string `json:"id" yaml:"id"`

	// Title is the article title with inline markup flattened to text.
	Title string `json:"title" yaml:"title"`

	// PublicationDate is "Year-Month-Day" with as much precision as the
	// record carries (e.g. "2023", "2023-Mar", "2023-Mar-14").
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// Authors lists the article authors in record order.
	Authors []Author `json:"authors" yaml:"authors"`

	// DOI is the bare DOI (e.g. "10.1000/xyz123"), empty when absent.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PMCID is the PubMed Central identifier (e.g. "PMC1234567"), empty when absent.
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
}

// HasDOI reports whether the article carries a DOI.
func (a Article) HasDOI() bool {
	return a.DOI != ""
}

// Author is one entry of an article's author list.
type Author struct {
	// Name is "LastName, Initials" or the best available fallback.
	Name string `json:"name" yaml:"name"`

	// Affiliations holds the free-text affiliation strings recorded for
	// the author, in record order. Empty when the record has none.
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`

	// Email is an address recorded directly on the author (PubMed
	// Identifier Source="email" or ElectronicAddress), empty when absent.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// AffiliationVerdict is the classifier's decision for one affiliation
// string. IsAcademic and IsCommercial are independent; both may be set.
type AffiliationVerdict struct {
	IsAcademic   bool `json:"is_academic" yaml:"is_academic"`
	IsCommercial bool `json:"is_commercial" yaml:"is_commercial"`

	// MatchedCompanyTerm is the first company term that matched, in term
	// list order. Empty when IsCommercial is false.
	MatchedCompanyTerm string `json:"matched_company_term,omitempty" yaml:"matched_company_term,omitempty"`
}

// EmailTier identifies which resolution tier produced an email.
type EmailTier int

const (
	TierNone EmailTier = iota
	TierArticleMetadata
	TierCitationIndex
	TierOpenAccessAggregator
)

func (t EmailTier) String() string {
	switch t {
	case TierArticleMetadata:
		return "article_metadata"
	case TierCitationIndex:
		return "citation_index"
	case TierOpenAccessAggregator:
		return "open_access_aggregator"
	default:
		return "none"
	}
}

// MarshalText encodes the tier by name so JSON and YAML output stay readable.
func (t EmailTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ResolvedEmail is a corresponding-author email and where it came from.
type ResolvedEmail struct {
	Address string    `json:"address" yaml:"address"`
	Tier    EmailTier `json:"tier" yaml:"tier"`

	// Source names the concrete service (e.g. "pubmed", "crossref", "europepmc").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}
