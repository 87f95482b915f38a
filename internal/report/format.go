// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/authorscan/pkg/types"
)

// DefaultSeparator joins multi-value cells.
const DefaultSeparator = "; "

// CSVHeader is the fixed header row of the CSV report.
var CSVHeader = []string{
	"PubmedID",
	"Title",
	"Publication Date",
	"Non-academic Author(s)",
	"Company Affiliation(s)",
	"Corresponding Author Email",
}

// Write renders rows in cfg.Format. An empty format selects the table.
func Write(rows []types.ReportRow, w io.Writer, cfg types.ReportConfig) error {
	sep := cfg.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	switch cfg.Format {
	case types.FormatCSV:
		return WriteCSV(rows, w, sep)
	case types.FormatTable, "":
		FormatTable(rows, w, sep)
		return nil
	case types.FormatJSON:
		return FormatJSON(rows, w)
	case types.FormatYAML:
		return FormatYAML(rows, w)
	default:
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}
}

// WriteCSV writes the header and one record per row. Multi-value cells are
// joined with sep.
func WriteCSV(rows []types.ReportRow, w io.Writer, sep string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.PubmedID,
			r.Title,
			r.PublicationDate,
			strings.Join(r.NonAcademicAuthors, sep),
			strings.Join(r.CompanyAffiliations, sep),
			r.CorrespondingEmail,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", r.PubmedID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatTable writes rows as a human-readable table to w.
func FormatTable(rows []types.ReportRow, w io.Writer, sep string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No matching articles found.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-50s  %-10s  %-25s  %-35s  %s\n",
		"PMID", "Title", "Date", "Non-academic Authors", "Company Affiliations", "Email")
	fmt.Fprintln(w, strings.Repeat("-", 160))

	withEmail := 0
	for _, r := range rows {
		email := r.CorrespondingEmail
		if email != "" {
			withEmail++
			email += " (" + r.EmailTier.String() + ")"
		}
		fmt.Fprintf(w, "%-10s  %-50s  %-10s  %-25s  %-35s  %s\n",
			r.PubmedID,
			truncate(r.Title, 50),
			r.PublicationDate,
			truncate(strings.Join(r.NonAcademicAuthors, sep), 25),
			truncate(strings.Join(r.CompanyAffiliations, sep), 35),
			email)
	}

	fmt.Fprintf(w, "\n%d articles, %d with email\n", len(rows), withEmail)
}

// FormatJSON writes rows as indented JSON to w.
func FormatJSON(rows []types.ReportRow, w io.Writer) error {
	if rows == nil {
		rows = []types.ReportRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// FormatYAML writes rows as a YAML sequence to w.
func FormatYAML(rows []types.ReportRow, w io.Writer) error {
	if rows == nil {
		rows = []types.ReportRow{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}
	return enc.Close()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
