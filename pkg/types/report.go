// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReportRow is one line of the output report. A row exists only for an
// article with at least one author whose affiliation is commercial.
type ReportRow struct {
	PubmedID        string `json:"pubmed_id" yaml:"pubmed_id"`
	Title           string `json:"title" yaml:"title"`
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// NonAcademicAuthors lists authors with a commercial affiliation, in author order.
	NonAcademicAuthors []string `json:"non_academic_authors" yaml:"non_academic_authors"`

	// CompanyAffiliations lists the commercial affiliation strings,
	// deduplicated in first-seen order.
	CompanyAffiliations []string `json:"company_affiliations" yaml:"company_affiliations"`

	// CorrespondingEmail is empty when no tier produced an address.
	CorrespondingEmail string `json:"corresponding_email" yaml:"corresponding_email"`

	// EmailTier records which tier produced CorrespondingEmail.
	EmailTier EmailTier `json:"email_tier" yaml:"email_tier"`
}
